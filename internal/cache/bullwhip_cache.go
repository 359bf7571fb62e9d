package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/demandloop/backend-go/internal/config"
	"github.com/demandloop/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	bullwhipDashboardKeyPrefix = "bullwhip:dashboard"
	bullwhipScanBatchSize      = 100
)

type BullwhipDashboardCache interface {
	GetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter) (*domain.BullwhipDashboard, bool, error)
	SetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter, dashboard *domain.BullwhipDashboard) error
	InvalidateTenant(ctx context.Context, tenantID string) error
	InvalidateAll(ctx context.Context) error
}

type redisBullwhipCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopBullwhipCache struct{}

func NewBullwhipCache(cfg config.CacheConfig) (BullwhipDashboardCache, error) {
	if !cfg.Enabled {
		return &noopBullwhipCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisBullwhipCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopBullwhipCache() BullwhipDashboardCache {
	return &noopBullwhipCache{}
}

func (c *redisBullwhipCache) GetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter) (*domain.BullwhipDashboard, bool, error) {
	key := buildBullwhipDashboardKey(tenantID, filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var dashboard domain.BullwhipDashboard
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil, false, fmt.Errorf("decode bullwhip dashboard cache: %w", err)
	}

	return &dashboard, true, nil
}

func (c *redisBullwhipCache) SetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter, dashboard *domain.BullwhipDashboard) error {
	key := buildBullwhipDashboardKey(tenantID, filter)
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("encode bullwhip dashboard cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisBullwhipCache) InvalidateTenant(ctx context.Context, tenantID string) error {
	prefix := fmt.Sprintf("%s:%s:", bullwhipDashboardKeyPrefix, tenantID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, bullwhipScanBatchSize)
}

func (c *redisBullwhipCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, bullwhipDashboardKeyPrefix, bullwhipScanBatchSize)
}

func (n *noopBullwhipCache) GetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter) (*domain.BullwhipDashboard, bool, error) {
	return nil, false, nil
}

func (n *noopBullwhipCache) SetDashboard(ctx context.Context, tenantID string, filter domain.ReportFilter, dashboard *domain.BullwhipDashboard) error {
	return nil
}

func (n *noopBullwhipCache) InvalidateTenant(ctx context.Context, tenantID string) error {
	return nil
}

func (n *noopBullwhipCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildBullwhipDashboardKey(tenantID string, filter domain.ReportFilter) string {
	return fmt.Sprintf("%s:%s:%s", bullwhipDashboardKeyPrefix, tenantID, reportFilterHash(filter))
}

// reportFilterHash normalizes the filter into sorted key=value parts so
// equivalent filters always land on the same cache entry.
func reportFilterHash(filter domain.ReportFilter) string {
	parts := []string{}

	if filter.LookbackDays > 0 {
		parts = append(parts, fmt.Sprintf("lookback_days=%d", filter.LookbackDays))
	}
	if filter.ServiceLevel > 0 {
		parts = append(parts, fmt.Sprintf("service_level=%.4f", filter.ServiceLevel))
	}
	if filter.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", filter.Page))
	}
	if filter.PageSize > 0 {
		parts = append(parts, fmt.Sprintf("page_size=%d", filter.PageSize))
	}
	if filter.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", filter.Limit))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
