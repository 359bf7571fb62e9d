package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFilterHashIsStable(t *testing.T) {
	filter := domain.ReportFilter{LookbackDays: 30, Page: 2, PageSize: 50}

	assert.Equal(t, reportFilterHash(filter), reportFilterHash(filter))
	assert.Equal(t, "default", reportFilterHash(domain.ReportFilter{}))
}

func TestReportFilterHashSeparatesFilters(t *testing.T) {
	a := reportFilterHash(domain.ReportFilter{LookbackDays: 30})
	b := reportFilterHash(domain.ReportFilter{LookbackDays: 60})
	c := reportFilterHash(domain.ReportFilter{LookbackDays: 30, ServiceLevel: 0.95})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, b, c)
}

func TestDashboardKeysAreTenantScoped(t *testing.T) {
	filter := domain.ReportFilter{LookbackDays: 30}

	keyA := buildBullwhipDashboardKey("tenant-a", filter)
	keyB := buildBullwhipDashboardKey("tenant-b", filter)
	assert.NotEqual(t, keyA, keyB)
	assert.True(t, strings.HasPrefix(keyA, "bullwhip:dashboard:tenant-a:"))

	echelonKey := buildEchelonDashboardKey("tenant-a", filter)
	assert.True(t, strings.HasPrefix(echelonKey, "echelon:dashboard:tenant-a:"))
}

func TestNoopCachesAlwaysMiss(t *testing.T) {
	ctx := context.Background()
	filter := domain.ReportFilter{LookbackDays: 30}

	bw := NewNoopBullwhipCache()
	require.NoError(t, bw.SetDashboard(ctx, "t-1", filter, &domain.BullwhipDashboard{Total: 5}))
	_, ok, err := bw.GetDashboard(ctx, "t-1", filter)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, bw.InvalidateAll(ctx))

	ech := NewNoopEchelonCache()
	require.NoError(t, ech.SetDashboard(ctx, "t-1", filter, &domain.EchelonDashboard{}))
	_, ok, err = ech.GetDashboard(ctx, "t-1", filter)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, ech.InvalidateTenant(ctx, "t-1"))
}
