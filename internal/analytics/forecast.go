// backend-go/internal/analytics/forecast.go
package analytics

import (
	"context"
	"time"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultMovingAvgWindow is the trailing window for the moving-average
	// method.
	DefaultMovingAvgWindow = 14

	// DefaultSmoothingAlpha is the exponential smoothing constant.
	DefaultSmoothingAlpha = 0.3
)

// ForecastEngine computes forecasts with several competing methods and
// selects the best one per product from historical accuracy.
type ForecastEngine struct {
	store  repository.ForecastStore
	window int
	alpha  float64
	now    func() time.Time
}

func NewForecastEngine(store repository.ForecastStore, window int, alpha float64) *ForecastEngine {
	if window < 2 {
		window = DefaultMovingAvgWindow
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultSmoothingAlpha
	}
	return &ForecastEngine{store: store, window: window, alpha: alpha, now: time.Now}
}

// Forecast evaluates every applicable method against the series and returns
// one result per method. The seasonal method only runs when a profile with
// IsSeasonal is supplied. The best method is flagged via Selected: lowest
// historical MAPE when accuracy history exists, exponential smoothing
// otherwise.
func (e *ForecastEngine) Forecast(ctx context.Context, auth domain.AuthContext, series domain.DemandSeries, horizonDays int, profile *domain.SeasonalityProfile) []domain.ForecastResult {
	if horizonDays < 1 {
		horizonDays = 1
	}

	values := series.Quantities()
	generatedAt := e.now()

	results := []domain.ForecastResult{
		e.movingAverage(series.ProductID, values, horizonDays, generatedAt),
		e.expSmoothing(series.ProductID, values, horizonDays, generatedAt),
		e.linearTrend(series.ProductID, values, horizonDays, generatedAt),
	}
	if profile != nil && profile.IsSeasonal {
		results = append(results, e.seasonal(series.ProductID, values, horizonDays, profile, generatedAt))
	}

	e.markSelected(ctx, auth, series.ProductID, results)
	return results
}

func (e *ForecastEngine) markSelected(ctx context.Context, auth domain.AuthContext, productID string, results []domain.ForecastResult) {
	history, err := e.store.AccuracyHistory(ctx, auth.TenantID, productID)
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("forecast: accuracy history unavailable, defaulting method selection")
		history = nil
	}

	best := -1
	if len(history) > 0 {
		bestMAPE := 0.0
		for i, r := range results {
			mape, ok := history[r.Method]
			if !ok {
				continue
			}
			if best == -1 || mape < bestMAPE {
				best = i
				bestMAPE = mape
			}
		}
	}
	if best == -1 {
		for i, r := range results {
			if r.Method == domain.MethodExpSmoothing {
				best = i
				break
			}
		}
	}
	if best >= 0 {
		results[best].Selected = true
	}
}

func (e *ForecastEngine) movingAverage(productID string, values []float64, horizon int, at time.Time) domain.ForecastResult {
	window := e.window
	if window > len(values) {
		window = len(values)
	}

	level := 0.0
	if window > 0 {
		level = Mean(values[len(values)-window:])
	}

	// In-sample one-step errors for the trailing-window forecaster.
	var forecasts, actuals []float64
	for i := e.window; i < len(values); i++ {
		forecasts = append(forecasts, Mean(values[i-e.window:i]))
		actuals = append(actuals, values[i])
	}

	return domain.ForecastResult{
		ProductID:     productID,
		Method:        domain.MethodMovingAvg,
		HorizonPoints: flatHorizon(level, horizon),
		MAPE:          MAPE(forecasts, actuals),
		GeneratedAt:   at,
	}
}

func (e *ForecastEngine) expSmoothing(productID string, values []float64, horizon int, at time.Time) domain.ForecastResult {
	if len(values) == 0 {
		return domain.ForecastResult{
			ProductID:     productID,
			Method:        domain.MethodExpSmoothing,
			HorizonPoints: flatHorizon(0, horizon),
			MAPE:          1,
			GeneratedAt:   at,
		}
	}

	level := values[0]
	var forecasts, actuals []float64
	for _, v := range values[1:] {
		forecasts = append(forecasts, level)
		actuals = append(actuals, v)
		level = e.alpha*v + (1-e.alpha)*level
	}

	return domain.ForecastResult{
		ProductID:     productID,
		Method:        domain.MethodExpSmoothing,
		HorizonPoints: flatHorizon(level, horizon),
		MAPE:          MAPE(forecasts, actuals),
		GeneratedAt:   at,
	}
}

func (e *ForecastEngine) linearTrend(productID string, values []float64, horizon int, at time.Time) domain.ForecastResult {
	slope, intercept := leastSquares(values)
	n := len(values)

	points := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		v := intercept + slope*float64(n+h)
		if v < 0 {
			v = 0
		}
		points[h] = v
	}

	var forecasts, actuals []float64
	for i, v := range values {
		forecasts = append(forecasts, intercept+slope*float64(i))
		actuals = append(actuals, v)
	}

	return domain.ForecastResult{
		ProductID:     productID,
		Method:        domain.MethodLinearTrend,
		HorizonPoints: points,
		MAPE:          MAPE(forecasts, actuals),
		GeneratedAt:   at,
	}
}

func (e *ForecastEngine) seasonal(productID string, values []float64, horizon int, profile *domain.SeasonalityProfile, at time.Time) domain.ForecastResult {
	period := profile.Period

	// Deseasonalize, fit the trend, then reapply the index per horizon day.
	deseasonalized := make([]float64, len(values))
	for i, v := range values {
		idx := profile.Indices[i%period]
		if idx <= 0 {
			idx = 1
		}
		deseasonalized[i] = v / idx
	}

	slope, intercept := leastSquares(deseasonalized)
	n := len(values)

	points := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		trend := intercept + slope*float64(n+h)
		v := trend * profile.Indices[(n+h)%period]
		if v < 0 {
			v = 0
		}
		points[h] = v
	}

	var forecasts, actuals []float64
	for i, v := range values {
		forecasts = append(forecasts, (intercept+slope*float64(i))*profile.Indices[i%period])
		actuals = append(actuals, v)
	}

	return domain.ForecastResult{
		ProductID:     productID,
		Method:        domain.MethodSeasonal,
		HorizonPoints: points,
		MAPE:          MAPE(forecasts, actuals),
		GeneratedAt:   at,
	}
}

// MAPE is the mean absolute percentage error over paired forecasts and
// actuals. Zero-denominator policy: periods whose actual is 0 are excluded
// from the denominator; if every actual is 0 the error is reported as 1.0
// (100%). The same policy applies everywhere MAPE is computed.
func MAPE(forecasts, actuals []float64) float64 {
	n := len(forecasts)
	if len(actuals) < n {
		n = len(actuals)
	}

	sum := 0.0
	counted := 0
	for i := 0; i < n; i++ {
		if actuals[i] == 0 {
			continue
		}
		pct := (forecasts[i] - actuals[i]) / actuals[i]
		if pct < 0 {
			pct = -pct
		}
		sum += pct
		counted++
	}

	if counted == 0 {
		return 1
	}
	return sum / float64(counted)
}

func flatHorizon(level float64, horizon int) []float64 {
	if level < 0 {
		level = 0
	}
	points := make([]float64, horizon)
	for i := range points {
		points[i] = level
	}
	return points
}

func leastSquares(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return 0, values[0]
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
