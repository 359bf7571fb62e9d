// backend-go/internal/analytics/bullwhip.go
package analytics

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMinOrderDays is the minimum number of distinct replenishment
	// order days a product needs before it is ranked. Products below it are
	// excluded, not zero-filled, to avoid false amplification positives.
	DefaultMinOrderDays = 3

	// AmplificationThreshold is the bullwhip index above which a product is
	// counted as amplifying demand variance upstream.
	AmplificationThreshold = 1.0
)

// OrderSmoothingAnalyzer measures the bullwhip effect per product: the
// ratio of replenishment-order variance to customer-demand variance over
// the same window.
type OrderSmoothingAnalyzer struct {
	aggregator   *TimeSeriesAggregator
	demand       repository.DemandReader
	orders       repository.OrderReader
	minOrderDays int
	concurrency  int
	now          func() time.Time
}

func NewOrderSmoothingAnalyzer(aggregator *TimeSeriesAggregator, demand repository.DemandReader, orders repository.OrderReader, minOrderDays, concurrency int) *OrderSmoothingAnalyzer {
	if minOrderDays < 1 {
		minOrderDays = DefaultMinOrderDays
	}
	if concurrency < 1 {
		concurrency = DefaultEvalConcurrency
	}
	return &OrderSmoothingAnalyzer{
		aggregator:   aggregator,
		demand:       demand,
		orders:       orders,
		minOrderDays: minOrderDays,
		concurrency:  concurrency,
		now:          time.Now,
	}
}

// Report computes bullwhip metrics for every product with demand in the
// window, sorted descending by index, truncated to limit. Per-product
// failures are skipped; skipped counts the products excluded for missing
// order history or failures.
func (a *OrderSmoothingAnalyzer) Report(ctx context.Context, auth domain.AuthContext, lookbackDays, limit int) ([]domain.BullwhipMetric, int, error) {
	if lookbackDays < 1 {
		lookbackDays = 30
	}

	today := truncateDay(a.now())
	since := today.AddDate(0, 0, -lookbackDays)

	products, err := a.demand.ProductsWithDemand(ctx, auth.TenantID, since)
	if err != nil {
		return nil, 0, &domain.UpstreamDataError{Op: "product listing", Err: err}
	}

	var (
		mu      sync.Mutex
		metrics []domain.BullwhipMetric
		skipped int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, productID := range products {
		g.Go(func() error {
			metric, merr := a.productMetric(gctx, auth, productID, lookbackDays, since, today)

			mu.Lock()
			defer mu.Unlock()
			if merr != nil {
				if !errors.Is(merr, domain.ErrInsufficientData) {
					log.Warn().Err(merr).Str("product_id", productID).Msg("bullwhip: product skipped")
				}
				skipped++
				return nil
			}
			metrics = append(metrics, metric)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	// Parallel completion order is arbitrary; the report contract is
	// descending by index with a stable tie-break on product ID.
	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].BullwhipIndex != metrics[j].BullwhipIndex {
			return metrics[i].BullwhipIndex > metrics[j].BullwhipIndex
		}
		return metrics[i].ProductID < metrics[j].ProductID
	})

	if limit > 0 && len(metrics) > limit {
		metrics = metrics[:limit]
	}
	return metrics, skipped, nil
}

// Dashboard returns one page of the ranked report plus summary statistics
// over the full ranked set.
func (a *OrderSmoothingAnalyzer) Dashboard(ctx context.Context, auth domain.AuthContext, lookbackDays, page, pageSize int) (domain.BullwhipDashboard, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	metrics, skipped, err := a.Report(ctx, auth, lookbackDays, 0)
	if err != nil {
		return domain.BullwhipDashboard{}, err
	}

	meanIndex := 0.0
	amplified := 0
	for _, m := range metrics {
		meanIndex += m.BullwhipIndex
		if m.BullwhipIndex > AmplificationThreshold {
			amplified++
		}
	}
	if len(metrics) > 0 {
		meanIndex /= float64(len(metrics))
	}

	total := len(metrics)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return domain.BullwhipDashboard{
		Metrics:        metrics[start:end],
		Total:          total,
		Page:           page,
		PageSize:       pageSize,
		MeanIndex:      meanIndex,
		AmplifiedCount: amplified,
		SkippedCount:   skipped,
	}, nil
}

func (a *OrderSmoothingAnalyzer) productMetric(ctx context.Context, auth domain.AuthContext, productID string, lookbackDays int, since, today time.Time) (domain.BullwhipMetric, error) {
	series, err := a.aggregator.BuildSeries(ctx, auth, productID, lookbackDays, "")
	if err != nil {
		return domain.BullwhipMetric{}, err
	}

	orders, err := a.orders.OrderHistory(ctx, auth.TenantID, productID, since, today)
	if err != nil {
		return domain.BullwhipMetric{}, &domain.UpstreamDataError{Op: "order history fetch", Err: err}
	}

	orderDays := make(map[time.Time]float64, len(orders))
	for _, o := range orders {
		orderDays[truncateDay(o.Date)] += o.Quantity
	}
	if len(orderDays) < a.minOrderDays {
		return domain.BullwhipMetric{}, domain.ErrInsufficientData
	}

	// Zero-fill the order series over the same window so both variances are
	// computed on the same calendar basis.
	orderSeries := make([]float64, 0, lookbackDays+1)
	for day := since; !day.After(today); day = day.AddDate(0, 0, 1) {
		orderSeries = append(orderSeries, orderDays[day])
	}

	demandVar := Variance(series.Quantities())
	orderVar := Variance(orderSeries)

	return domain.BullwhipMetric{
		ProductID:      productID,
		DemandVariance: demandVar,
		OrderVariance:  orderVar,
		BullwhipIndex:  bullwhipIndex(orderVar, demandVar),
		LookbackDays:   lookbackDays,
	}, nil
}

// bullwhipIndex guards the zero-demand-variance edge: both variances zero
// means a perfectly flat product (index 0); orders varying against flat
// demand has no finite ratio and maps to the documented sentinel.
func bullwhipIndex(orderVar, demandVar float64) float64 {
	if demandVar == 0 {
		if orderVar == 0 {
			return 0
		}
		return domain.BullwhipIndexUndefined
	}
	idx := orderVar / demandVar
	if idx > domain.BullwhipIndexUndefined {
		return domain.BullwhipIndexUndefined
	}
	return idx
}
