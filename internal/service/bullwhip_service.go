package service

import (
	"context"

	"github.com/demandloop/backend-go/internal/analytics"
	"github.com/demandloop/backend-go/internal/cache"
	"github.com/demandloop/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

type BullwhipService struct {
	analyzer *analytics.OrderSmoothingAnalyzer
	cache    cache.BullwhipDashboardCache
}

func NewBullwhipService(analyzer *analytics.OrderSmoothingAnalyzer, cacheImpl cache.BullwhipDashboardCache) *BullwhipService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopBullwhipCache()
	}
	return &BullwhipService{analyzer: analyzer, cache: cacheImpl}
}

func (s *BullwhipService) GetReport(ctx context.Context, auth domain.AuthContext, lookbackDays, limit int) ([]domain.BullwhipMetric, int, error) {
	return s.analyzer.Report(ctx, auth, lookbackDays, limit)
}

func (s *BullwhipService) GetDashboard(ctx context.Context, auth domain.AuthContext, filter domain.ReportFilter) (*domain.BullwhipDashboard, error) {
	if dashboard, ok, err := s.cache.GetDashboard(ctx, auth.TenantID, filter); err == nil && ok {
		return dashboard, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("bullwhip: cache get dashboard failed")
	}

	dashboard, err := s.analyzer.Dashboard(ctx, auth, filter.LookbackDays, filter.Page, filter.PageSize)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetDashboard(ctx, auth.TenantID, filter, &dashboard); err != nil {
		log.Warn().Err(err).Msg("bullwhip: cache set dashboard failed")
	}

	return &dashboard, nil
}

func (s *BullwhipService) InvalidateCache(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return s.cache.InvalidateAll(ctx)
	}
	return s.cache.InvalidateTenant(ctx, tenantID)
}
