package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/repository"
)

type forecastRepository struct {
	db *DB
}

func NewForecastRepository(db *DB) repository.ForecastStore {
	return &forecastRepository{db: db}
}

func (r *forecastRepository) PastForecasts(ctx context.Context, tenantID string, since time.Time) ([]domain.PastForecast, error) {
	query := `
        SELECT product_id, method, forecasted_qty, period_date
        FROM forecast_history
        WHERE tenant_id = $1 AND period_date >= $2
        ORDER BY product_id, period_date
    `

	var forecasts []domain.PastForecast
	if err := r.db.SelectContext(ctx, &forecasts, query, tenantID, since); err != nil {
		return nil, fmt.Errorf("error getting past forecasts: %w", err)
	}
	return forecasts, nil
}

func (r *forecastRepository) AccuracyHistory(ctx context.Context, tenantID, productID string) (map[domain.ForecastMethod]float64, error) {
	query := `
        SELECT method, AVG(pct_error) AS mape
        FROM forecast_accuracy
        WHERE tenant_id = $1 AND product_id = $2
        GROUP BY method
    `

	rows, err := r.db.QueryxContext(ctx, query, tenantID, productID)
	if err != nil {
		return nil, fmt.Errorf("error getting accuracy history: %w", err)
	}
	defer rows.Close()

	history := make(map[domain.ForecastMethod]float64)
	for rows.Next() {
		var method string
		var mape float64
		if err := rows.Scan(&method, &mape); err != nil {
			return nil, fmt.Errorf("error scanning accuracy history: %w", err)
		}
		history[domain.ForecastMethod(method)] = mape
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accuracy history: %w", err)
	}
	return history, nil
}

// SaveAccuracyRecord upserts on (tenant, product, method, period) so
// re-running an evaluation batch never creates duplicates.
func (r *forecastRepository) SaveAccuracyRecord(ctx context.Context, record domain.AccuracyRecord) error {
	query := `
        INSERT INTO forecast_accuracy (
            tenant_id, product_id, method, forecasted_qty, actual_qty,
            period_date, abs_error, pct_error, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        ON CONFLICT (tenant_id, product_id, method, period_date)
        DO UPDATE SET
            forecasted_qty = EXCLUDED.forecasted_qty,
            actual_qty = EXCLUDED.actual_qty,
            abs_error = EXCLUDED.abs_error,
            pct_error = EXCLUDED.pct_error,
            updated_at = NOW()
    `

	_, err := r.db.ExecContext(ctx, query,
		record.TenantID, record.ProductID, string(record.Method),
		record.ForecastedQty, record.ActualQty, record.PeriodDate,
		record.AbsError, record.PctError,
	)
	if err != nil {
		return fmt.Errorf("error saving accuracy record: %w", err)
	}
	return nil
}

type suggestionRepository struct {
	db *DB
}

func NewSuggestionRepository(db *DB) repository.SuggestionSink {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) SaveSuggestion(ctx context.Context, rec domain.SafetyStockRecommendation) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
            INSERT INTO safety_stock_suggestions (
                tenant_id, location_id, product_id, mean_daily_demand,
                demand_std_dev, safety_stock, reorder_point,
                recommended_order_qty, order_value, generated_at, updated_at
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
            ON CONFLICT (tenant_id, location_id, product_id)
            DO UPDATE SET
                mean_daily_demand = EXCLUDED.mean_daily_demand,
                demand_std_dev = EXCLUDED.demand_std_dev,
                safety_stock = EXCLUDED.safety_stock,
                reorder_point = EXCLUDED.reorder_point,
                recommended_order_qty = EXCLUDED.recommended_order_qty,
                order_value = EXCLUDED.order_value,
                generated_at = EXCLUDED.generated_at,
                updated_at = NOW()
        `

		_, err := tx.ExecContext(ctx, query,
			rec.TenantID, rec.LocationID, rec.ProductID, rec.MeanDailyDemand,
			rec.DemandStdDev, rec.SafetyStock, rec.ReorderPoint,
			rec.RecommendedOrderQty, rec.OrderValue.String(), rec.GeneratedAt,
		)
		if err != nil {
			return fmt.Errorf("error saving suggestion: %w", err)
		}
		return nil
	})
}
