package analytics

import (
	"context"
	"testing"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRecordsElapsedForecasts(t *testing.T) {
	store := newFakeForecastStore()
	store.past = []domain.PastForecast{
		{ProductID: "P1", Method: domain.MethodMovingAvg, ForecastedQty: 12, PeriodDate: day(-5)},
		{ProductID: "P1", Method: domain.MethodExpSmoothing, ForecastedQty: 9, PeriodDate: day(-5)},
		{ProductID: "P1", Method: domain.MethodMovingAvg, ForecastedQty: 10, PeriodDate: day(5)}, // not elapsed
	}
	reader := &fakeDemandReader{
		demand: map[string][]domain.DemandPoint{
			demandKey("P1", ""): {{Date: day(-5), Quantity: 10}},
		},
	}

	evaluator := NewAccuracyEvaluator(reader, store, 2)
	evaluator.now = fixedNow(0)

	summary, err := evaluator.Evaluate(context.Background(), testAuth())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Evaluated)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, store.savedCount())

	assert.InDelta(t, 0.2, summary.AccuracyByMethod[domain.MethodMovingAvg], 1e-9)
	assert.InDelta(t, 0.1, summary.AccuracyByMethod[domain.MethodExpSmoothing], 1e-9)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	store := newFakeForecastStore()
	store.past = []domain.PastForecast{
		{ProductID: "P1", Method: domain.MethodMovingAvg, ForecastedQty: 12, PeriodDate: day(-3)},
		{ProductID: "P2", Method: domain.MethodLinearTrend, ForecastedQty: 7, PeriodDate: day(-3)},
	}
	reader := &fakeDemandReader{
		demand: map[string][]domain.DemandPoint{
			demandKey("P1", ""): {{Date: day(-3), Quantity: 10}},
			demandKey("P2", ""): {{Date: day(-3), Quantity: 7}},
		},
	}

	evaluator := NewAccuracyEvaluator(reader, store, 2)
	evaluator.now = fixedNow(0)

	_, err := evaluator.Evaluate(context.Background(), testAuth())
	require.NoError(t, err)
	firstCount := store.savedCount()

	summary, err := evaluator.Evaluate(context.Background(), testAuth())
	require.NoError(t, err)

	assert.Equal(t, firstCount, store.savedCount(), "re-running without new actuals must not duplicate records")
	assert.Equal(t, 2, summary.Evaluated)
}

func TestEvaluateIsolatesProductFailures(t *testing.T) {
	store := newFakeForecastStore()
	store.failProducts = map[string]bool{"P2": true}
	store.past = []domain.PastForecast{
		{ProductID: "P1", Method: domain.MethodMovingAvg, ForecastedQty: 12, PeriodDate: day(-3)},
		{ProductID: "P2", Method: domain.MethodMovingAvg, ForecastedQty: 5, PeriodDate: day(-3)},
		{ProductID: "P3", Method: domain.MethodMovingAvg, ForecastedQty: 8, PeriodDate: day(-3)},
	}
	reader := &fakeDemandReader{
		demand: map[string][]domain.DemandPoint{
			demandKey("P1", ""): {{Date: day(-3), Quantity: 10}},
			demandKey("P2", ""): {{Date: day(-3), Quantity: 5}},
			demandKey("P3", ""): {{Date: day(-3), Quantity: 8}},
		},
	}

	evaluator := NewAccuracyEvaluator(reader, store, 2)
	evaluator.now = fixedNow(0)

	summary, err := evaluator.Evaluate(context.Background(), testAuth())
	require.NoError(t, err, "one failing product must not abort the batch")

	assert.Equal(t, 2, summary.Evaluated)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"P2"}, summary.FailedProducts)
}

func TestEvaluateZeroActualPolicy(t *testing.T) {
	store := newFakeForecastStore()
	store.past = []domain.PastForecast{
		{ProductID: "P1", Method: domain.MethodMovingAvg, ForecastedQty: 5, PeriodDate: day(-2)},
		{ProductID: "P1", Method: domain.MethodExpSmoothing, ForecastedQty: 0, PeriodDate: day(-2)},
	}
	reader := &fakeDemandReader{demand: map[string][]domain.DemandPoint{}}

	evaluator := NewAccuracyEvaluator(reader, store, 1)
	evaluator.now = fixedNow(0)

	summary, err := evaluator.Evaluate(context.Background(), testAuth())
	require.NoError(t, err)

	// Forecasting demand where none materialized is a full miss; forecasting
	// zero against zero is a perfect hit.
	assert.Equal(t, 1.0, summary.AccuracyByMethod[domain.MethodMovingAvg])
	assert.Equal(t, 0.0, summary.AccuracyByMethod[domain.MethodExpSmoothing])
}
