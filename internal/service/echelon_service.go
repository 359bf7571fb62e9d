package service

import (
	"context"

	"github.com/demandloop/backend-go/internal/analytics"
	"github.com/demandloop/backend-go/internal/cache"
	"github.com/demandloop/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

type EchelonService struct {
	optimizer *analytics.MultiEchelonOptimizer
	cache     cache.EchelonDashboardCache
}

func NewEchelonService(optimizer *analytics.MultiEchelonOptimizer, cacheImpl cache.EchelonDashboardCache) *EchelonService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopEchelonCache()
	}
	return &EchelonService{optimizer: optimizer, cache: cacheImpl}
}

func (s *EchelonService) GetDashboard(ctx context.Context, auth domain.AuthContext, filter domain.ReportFilter) (*domain.EchelonDashboard, error) {
	if dashboard, ok, err := s.cache.GetDashboard(ctx, auth.TenantID, filter); err == nil && ok {
		return dashboard, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("echelon: cache get dashboard failed")
	}

	dashboard, err := s.optimizer.Dashboard(ctx, auth, filter.LookbackDays, filter.ServiceLevel)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetDashboard(ctx, auth.TenantID, filter, &dashboard); err != nil {
		log.Warn().Err(err).Msg("echelon: cache set dashboard failed")
	}

	return &dashboard, nil
}

// GetAlerts is never cached: alerting on stale on-hand figures defeats the
// point of the endpoint.
func (s *EchelonService) GetAlerts(ctx context.Context, auth domain.AuthContext) ([]domain.StockAlert, error) {
	return s.optimizer.Alerts(ctx, auth)
}

func (s *EchelonService) InvalidateCache(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return s.cache.InvalidateAll(ctx)
	}
	return s.cache.InvalidateTenant(ctx, tenantID)
}
