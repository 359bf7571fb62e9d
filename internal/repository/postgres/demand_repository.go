package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/repository"
)

type demandRepository struct {
	db *DB
}

// NewDemandRepository returns readers over the order-line and
// replenishment-order fact tables owned by the storage layer.
func NewDemandRepository(db *DB) interface {
	repository.DemandReader
	repository.OrderReader
} {
	return &demandRepository{db: db}
}

func (r *demandRepository) DailyDemand(ctx context.Context, tenantID, productID, locationID string, from, to time.Time) ([]domain.DemandPoint, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	query := `
        SELECT sale_date AS date,
               SUM(quantity - returned_qty) AS quantity
        FROM demand_facts
        WHERE tenant_id = $1
          AND product_id = $2
          AND sale_date BETWEEN $3 AND $4
    `
	args := []interface{}{tenantID, productID, from, to}
	if locationID != "" {
		query += " AND location_id = $5"
		args = append(args, locationID)
	}
	query += " GROUP BY sale_date ORDER BY sale_date"

	var points []domain.DemandPoint
	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		return nil, fmt.Errorf("error getting daily demand: %w", err)
	}
	return points, nil
}

func (r *demandRepository) ProductsWithDemand(ctx context.Context, tenantID string, since time.Time) ([]string, error) {
	query := `
        SELECT DISTINCT product_id
        FROM demand_facts
        WHERE tenant_id = $1 AND sale_date >= $2
        ORDER BY product_id
    `

	var products []string
	if err := r.db.SelectContext(ctx, &products, query, tenantID, since); err != nil {
		return nil, fmt.Errorf("error listing products with demand: %w", err)
	}
	return products, nil
}

func (r *demandRepository) OrderHistory(ctx context.Context, tenantID, productID string, from, to time.Time) ([]domain.DemandPoint, error) {
	query := `
        SELECT order_date AS date,
               SUM(quantity) AS quantity
        FROM replenishment_orders
        WHERE tenant_id = $1
          AND product_id = $2
          AND order_date BETWEEN $3 AND $4
        GROUP BY order_date
        ORDER BY order_date
    `

	var points []domain.DemandPoint
	if err := r.db.SelectContext(ctx, &points, query, tenantID, productID, from, to); err != nil {
		return nil, fmt.Errorf("error getting order history: %w", err)
	}
	return points, nil
}
