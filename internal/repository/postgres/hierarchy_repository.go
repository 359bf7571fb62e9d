package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/repository"
)

type hierarchyRepository struct {
	db *DB
}

func NewHierarchyRepository(db *DB) repository.HierarchyReader {
	return &hierarchyRepository{db: db}
}

func (r *hierarchyRepository) LocationHierarchy(ctx context.Context, tenantID string) ([]domain.EchelonNode, error) {
	query := `
        SELECT location_id,
               COALESCE(parent_location_id, '') AS parent_location_id,
               lead_time_days,
               service_level
        FROM locations
        WHERE tenant_id = $1
        ORDER BY location_id
    `

	var nodes []domain.EchelonNode
	if err := r.db.SelectContext(ctx, &nodes, query, tenantID); err != nil {
		return nil, fmt.Errorf("error getting location hierarchy: %w", err)
	}
	return nodes, nil
}

func (r *hierarchyRepository) OnHandStock(ctx context.Context, tenantID, locationID, productID string) (float64, error) {
	query := `
        SELECT on_hand
        FROM stock_levels
        WHERE tenant_id = $1 AND location_id = $2 AND product_id = $3
    `

	var onHand float64
	err := r.db.GetContext(ctx, &onHand, query, tenantID, locationID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error getting on-hand stock: %w", err)
	}
	return onHand, nil
}
