package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// SnapshotExporter writes point-in-time CSV exports of computed
// recommendations to object storage, one object per tenant and day.
type SnapshotExporter struct {
	store ObjectStorage
	now   func() time.Time
}

func NewSnapshotExporter(store ObjectStorage) *SnapshotExporter {
	return &SnapshotExporter{store: store, now: time.Now}
}

// ExportRecommendations uploads the recommendation set as CSV and returns
// the object key.
func (e *SnapshotExporter) ExportRecommendations(ctx context.Context, tenantID string, recs []domain.SafetyStockRecommendation) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"location_id", "product_id", "mean_daily_demand", "demand_std_dev", "safety_stock", "reorder_point", "recommended_order_qty", "order_value"}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed writing snapshot header: %w", err)
	}

	for _, rec := range recs {
		row := []string{
			rec.LocationID,
			rec.ProductID,
			formatFloat(rec.MeanDailyDemand),
			formatFloat(rec.DemandStdDev),
			formatFloat(rec.SafetyStock),
			formatFloat(rec.ReorderPoint),
			formatFloat(rec.RecommendedOrderQty),
			rec.OrderValue.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed writing snapshot row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed flushing snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s/recommendations_%s.csv", tenantID, e.now().UTC().Format("2006-01-02"))
	if err := e.store.UploadObject(ctx, key, buf.Bytes(), "text/csv"); err != nil {
		return "", err
	}

	log.Info().Str("tenant_id", tenantID).Str("key", key).Int("rows", len(recs)).
		Msg("recommendation snapshot exported")
	return key, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
