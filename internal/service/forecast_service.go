// backend-go/internal/service/forecast_service.go
package service

import (
	"context"

	"github.com/demandloop/backend-go/internal/analytics"
	"github.com/demandloop/backend-go/internal/domain"
)

// ForecastService fronts the demand analytics pipeline: series building,
// seasonality detection, forecasting and accuracy evaluation.
type ForecastService struct {
	aggregator *analytics.TimeSeriesAggregator
	detector   *analytics.SeasonalityDetector
	engine     *analytics.ForecastEngine
	evaluator  *analytics.AccuracyEvaluator
}

func NewForecastService(aggregator *analytics.TimeSeriesAggregator, detector *analytics.SeasonalityDetector, engine *analytics.ForecastEngine, evaluator *analytics.AccuracyEvaluator) *ForecastService {
	return &ForecastService{
		aggregator: aggregator,
		detector:   detector,
		engine:     engine,
		evaluator:  evaluator,
	}
}

func (s *ForecastService) GetDemandSeries(ctx context.Context, auth domain.AuthContext, productID string, lookbackDays int, locationID string) (domain.DemandSeries, error) {
	return s.aggregator.BuildSeries(ctx, auth, productID, lookbackDays, locationID)
}

func (s *ForecastService) GetSeasonality(ctx context.Context, auth domain.AuthContext, productID string, lookbackDays int) (*domain.SeasonalityProfile, error) {
	series, err := s.aggregator.BuildSeries(ctx, auth, productID, lookbackDays, "")
	if err != nil {
		return nil, err
	}
	return s.detector.Detect(series), nil
}

// GetForecast builds the series, detects seasonality and runs every
// applicable forecasting method. The seasonal method is included only when
// the product's demand is classified as seasonal.
func (s *ForecastService) GetForecast(ctx context.Context, auth domain.AuthContext, productID string, lookbackDays, horizonDays int) ([]domain.ForecastResult, error) {
	series, err := s.aggregator.BuildSeries(ctx, auth, productID, lookbackDays, "")
	if err != nil {
		return nil, err
	}

	profile := s.detector.Detect(series)
	return s.engine.Forecast(ctx, auth, series, horizonDays, profile), nil
}

func (s *ForecastService) EvaluateAccuracy(ctx context.Context, auth domain.AuthContext) (domain.EvaluationSummary, error) {
	return s.evaluator.Evaluate(ctx, auth)
}
