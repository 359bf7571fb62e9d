// backend-go/internal/analytics/accuracy.go
package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultEvalConcurrency bounds the per-product fan-out so a batch does
	// not overwhelm the data store.
	DefaultEvalConcurrency = 8

	// DefaultEvalLookback is how far back past forecasts are considered.
	DefaultEvalLookback = 90 * 24 * time.Hour
)

// AccuracyEvaluator is the feedback loop of the forecast engine: once a
// forecasted period has elapsed, it records how wrong each method was so
// future method selection can prefer the winner.
type AccuracyEvaluator struct {
	demand      repository.DemandReader
	store       repository.ForecastStore
	concurrency int
	now         func() time.Time
}

func NewAccuracyEvaluator(demand repository.DemandReader, store repository.ForecastStore, concurrency int) *AccuracyEvaluator {
	if concurrency < 1 {
		concurrency = DefaultEvalConcurrency
	}
	return &AccuracyEvaluator{demand: demand, store: store, concurrency: concurrency, now: time.Now}
}

// Evaluate walks every past forecast of the tenant whose period has elapsed,
// computes the realized demand and persists an AccuracyRecord per
// (product, method, period). Persisting is an upsert, so re-running the
// batch without new actuals creates no duplicates. Product failures are
// isolated: they are counted and reported, never abort the batch.
func (e *AccuracyEvaluator) Evaluate(ctx context.Context, auth domain.AuthContext) (domain.EvaluationSummary, error) {
	today := truncateDay(e.now())
	since := today.Add(-DefaultEvalLookback)

	pending, err := e.store.PastForecasts(ctx, auth.TenantID, since)
	if err != nil {
		return domain.EvaluationSummary{}, &domain.UpstreamDataError{Op: "past forecast fetch", Err: err}
	}

	byProduct := make(map[string][]domain.PastForecast)
	for _, f := range pending {
		if f.PeriodDate.After(today) {
			continue // horizon not elapsed yet
		}
		byProduct[f.ProductID] = append(byProduct[f.ProductID], f)
	}

	var (
		mu        sync.Mutex
		evaluated int
		failed    []string
	)
	pctSums := make(map[domain.ForecastMethod]float64)
	pctCounts := make(map[domain.ForecastMethod]int)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for productID, forecasts := range byProduct {
		g.Go(func() error {
			records, perr := e.evaluateProduct(gctx, auth, productID, forecasts, today)

			mu.Lock()
			defer mu.Unlock()
			if perr != nil {
				log.Warn().Err(perr).Str("tenant_id", auth.TenantID).Str("product_id", productID).
					Msg("accuracy: product evaluation failed, skipping")
				failed = append(failed, productID)
				return nil
			}
			for _, rec := range records {
				evaluated++
				pctSums[rec.Method] += rec.PctError
				pctCounts[rec.Method]++
			}
			return nil
		})
	}

	// Group functions never return errors; ctx cancellation is the only
	// way Wait can fail.
	if err := g.Wait(); err != nil {
		return domain.EvaluationSummary{}, err
	}

	accuracy := make(map[domain.ForecastMethod]float64, len(pctSums))
	for method, sum := range pctSums {
		accuracy[method] = sum / float64(pctCounts[method])
	}
	sort.Strings(failed)

	return domain.EvaluationSummary{
		Evaluated:        evaluated,
		Failed:           len(failed),
		FailedProducts:   failed,
		AccuracyByMethod: accuracy,
	}, nil
}

func (e *AccuracyEvaluator) evaluateProduct(ctx context.Context, auth domain.AuthContext, productID string, forecasts []domain.PastForecast, today time.Time) ([]domain.AccuracyRecord, error) {
	from := forecasts[0].PeriodDate
	for _, f := range forecasts[1:] {
		if f.PeriodDate.Before(from) {
			from = f.PeriodDate
		}
	}

	raw, err := e.demand.DailyDemand(ctx, auth.TenantID, productID, "", truncateDay(from), today)
	if err != nil {
		return nil, &domain.UpstreamDataError{Op: "actual demand fetch", Err: err}
	}

	actualByDay := make(map[time.Time]float64, len(raw))
	for _, p := range raw {
		actualByDay[truncateDay(p.Date)] += p.Quantity
	}

	records := make([]domain.AccuracyRecord, 0, len(forecasts))
	for _, f := range forecasts {
		actual := actualByDay[truncateDay(f.PeriodDate)]

		absErr := f.ForecastedQty - actual
		if absErr < 0 {
			absErr = -absErr
		}
		// Same zero-denominator policy as MAPE: a zero-actual period counts
		// as 100% error for the record, and method averages exclude nothing
		// here because the record is already a single period.
		pctErr := 1.0
		if actual != 0 {
			pctErr = absErr / actual
		} else if f.ForecastedQty == 0 {
			pctErr = 0
		}

		rec := domain.AccuracyRecord{
			TenantID:      auth.TenantID,
			ProductID:     productID,
			Method:        f.Method,
			ForecastedQty: f.ForecastedQty,
			ActualQty:     actual,
			PeriodDate:    truncateDay(f.PeriodDate),
			AbsError:      absErr,
			PctError:      pctErr,
		}

		if err := e.store.SaveAccuracyRecord(ctx, rec); err != nil {
			return nil, &domain.ComputationError{ProductID: productID, Err: err}
		}
		records = append(records, rec)
	}

	return records, nil
}
