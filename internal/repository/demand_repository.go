// backend-go/internal/repository/demand_repository.go
package repository

import (
	"context"
	"time"

	"github.com/demandloop/backend-go/internal/domain"
)

// DemandReader provides customer-facing daily sales facts, net of
// cancellations and returns. Days without sales are absent from the result;
// the aggregator is responsible for zero-filling.
type DemandReader interface {
	DailyDemand(ctx context.Context, tenantID, productID, locationID string, from, to time.Time) ([]domain.DemandPoint, error)
	ProductsWithDemand(ctx context.Context, tenantID string, since time.Time) ([]string, error)
}

// OrderReader provides the upstream replenishment-order series (purchase and
// transfer orders placed by the tenant), distinct from customer demand.
type OrderReader interface {
	OrderHistory(ctx context.Context, tenantID, productID string, from, to time.Time) ([]domain.DemandPoint, error)
}

// HierarchyReader provides the tenant's location tree configuration.
type HierarchyReader interface {
	LocationHierarchy(ctx context.Context, tenantID string) ([]domain.EchelonNode, error)
	OnHandStock(ctx context.Context, tenantID, locationID, productID string) (float64, error)
}

// ForecastStore reads previously persisted forecasts and writes accuracy
// records back. Accuracy writes are idempotent per
// (productID, method, periodDate).
type ForecastStore interface {
	PastForecasts(ctx context.Context, tenantID string, since time.Time) ([]domain.PastForecast, error)
	AccuracyHistory(ctx context.Context, tenantID, productID string) (map[domain.ForecastMethod]float64, error)
	SaveAccuracyRecord(ctx context.Context, record domain.AccuracyRecord) error
}

// SuggestionSink receives derived safety-stock recommendations. Writes are
// fire-and-forget: failures are logged by the caller, never propagated.
type SuggestionSink interface {
	SaveSuggestion(ctx context.Context, rec domain.SafetyStockRecommendation) error
}
