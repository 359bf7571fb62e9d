package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/demandloop/backend-go/internal/config"
	"github.com/demandloop/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	echelonDashboardKeyPrefix = "echelon:dashboard"
	echelonScanBatchSize      = 100
)

type EchelonDashboardCache interface {
	GetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter) (*domain.EchelonDashboard, bool, error)
	SetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter, dashboard *domain.EchelonDashboard) error
	InvalidateTenant(ctx context.Context, tenantID string) error
	InvalidateAll(ctx context.Context) error
}

type redisEchelonCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopEchelonCache struct{}

func NewEchelonCache(cfg config.CacheConfig) (EchelonDashboardCache, error) {
	if !cfg.Enabled {
		return &noopEchelonCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisEchelonCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopEchelonCache() EchelonDashboardCache {
	return &noopEchelonCache{}
}

func (c *redisEchelonCache) GetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter) (*domain.EchelonDashboard, bool, error) {
	key := buildEchelonDashboardKey(tenantID, filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var dashboard domain.EchelonDashboard
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil, false, fmt.Errorf("decode echelon dashboard cache: %w", err)
	}

	return &dashboard, true, nil
}

func (c *redisEchelonCache) SetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter, dashboard *domain.EchelonDashboard) error {
	key := buildEchelonDashboardKey(tenantID, filter)
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("encode echelon dashboard cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisEchelonCache) InvalidateTenant(ctx context.Context, tenantID string) error {
	prefix := fmt.Sprintf("%s:%s:", echelonDashboardKeyPrefix, tenantID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, echelonScanBatchSize)
}

func (c *redisEchelonCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, echelonDashboardKeyPrefix, echelonScanBatchSize)
}

func (n *noopEchelonCache) GetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter) (*domain.EchelonDashboard, bool, error) {
	return nil, false, nil
}

func (n *noopEchelonCache) SetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter, dashboard *domain.EchelonDashboard) error {
	return nil
}

func (n *noopEchelonCache) InvalidateTenant(ctx context.Context, tenantID string) error {
	return nil
}

func (n *noopEchelonCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildEchelonDashboardKey(tenantID string, filter domain.ReportFilter) string {
	return fmt.Sprintf("%s:%s:%s", echelonDashboardKeyPrefix, tenantID, reportFilterHash(filter))
}
