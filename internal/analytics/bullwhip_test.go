package analytics

import (
	"context"
	"testing"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBullwhipFixture() (*OrderSmoothingAnalyzer, *fakeDemandReader, *fakeOrderReader) {
	demand := &fakeDemandReader{demand: map[string][]domain.DemandPoint{}}
	orders := &fakeOrderReader{orders: map[string][]domain.DemandPoint{}}

	aggregator := NewTimeSeriesAggregator(demand, 1)
	aggregator.now = fixedNow(6)

	analyzer := NewOrderSmoothingAnalyzer(aggregator, demand, orders, 3, 2)
	analyzer.now = fixedNow(6)
	return analyzer, demand, orders
}

func TestReportRanksAmplifiedProductsFirst(t *testing.T) {
	analyzer, demand, orders := newBullwhipFixture()
	demand.products = []string{"AMP", "FLAT"}

	// FLAT: constant demand and constant orders, zero variance on both sides.
	key, points := constantSeries("FLAT", "", 7, 5)
	demand.demand[key] = points
	_, orderPoints := constantSeries("FLAT", "", 7, 5)
	orders.orders["FLAT"] = orderPoints

	// AMP: mild demand wobble against batched orders.
	demand.demand[demandKey("AMP", "")] = []domain.DemandPoint{
		{Date: day(0), Quantity: 4}, {Date: day(1), Quantity: 6},
		{Date: day(2), Quantity: 4}, {Date: day(3), Quantity: 6},
		{Date: day(4), Quantity: 4}, {Date: day(5), Quantity: 6},
		{Date: day(6), Quantity: 4},
	}
	orders.orders["AMP"] = []domain.DemandPoint{
		{Date: day(1), Quantity: 20},
		{Date: day(3), Quantity: 20},
		{Date: day(5), Quantity: 20},
	}

	metrics, skipped, err := analyzer.Report(context.Background(), testAuth(), 6, 0)
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, 0, skipped)

	assert.Equal(t, "AMP", metrics[0].ProductID)
	assert.Greater(t, metrics[0].BullwhipIndex, AmplificationThreshold)

	assert.Equal(t, "FLAT", metrics[1].ProductID)
	assert.Equal(t, 0.0, metrics[1].BullwhipIndex, "flat demand and flat orders carry no amplification")

	for _, m := range metrics {
		assert.GreaterOrEqual(t, m.BullwhipIndex, 0.0)
		assert.LessOrEqual(t, m.BullwhipIndex, domain.BullwhipIndexUndefined)
	}
}

func TestReportSkipsProductsWithThinOrderHistory(t *testing.T) {
	analyzer, demand, orders := newBullwhipFixture()
	demand.products = []string{"THIN"}

	key, points := constantSeries("THIN", "", 7, 5)
	demand.demand[key] = points
	orders.orders["THIN"] = []domain.DemandPoint{
		{Date: day(2), Quantity: 10},
		{Date: day(4), Quantity: 10},
	}

	metrics, skipped, err := analyzer.Report(context.Background(), testAuth(), 6, 0)
	require.NoError(t, err)
	assert.Empty(t, metrics)
	assert.Equal(t, 1, skipped)
}

func TestReportUndefinedIndexSentinel(t *testing.T) {
	analyzer, demand, orders := newBullwhipFixture()
	demand.products = []string{"P1"}

	// Flat demand but varying orders: the ratio has no finite value.
	key, points := constantSeries("P1", "", 7, 5)
	demand.demand[key] = points
	orders.orders["P1"] = []domain.DemandPoint{
		{Date: day(1), Quantity: 5},
		{Date: day(3), Quantity: 30},
		{Date: day(5), Quantity: 2},
	}

	metrics, _, err := analyzer.Report(context.Background(), testAuth(), 6, 0)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, domain.BullwhipIndexUndefined, metrics[0].BullwhipIndex)
}

func TestReportLimitTruncates(t *testing.T) {
	analyzer, demand, orders := newBullwhipFixture()
	demand.products = []string{"A", "B", "C"}
	for _, id := range demand.products {
		key, points := constantSeries(id, "", 7, 5)
		demand.demand[key] = points
		_, orderPoints := constantSeries(id, "", 7, 5)
		orders.orders[id] = orderPoints
	}

	metrics, _, err := analyzer.Report(context.Background(), testAuth(), 6, 2)
	require.NoError(t, err)
	assert.Len(t, metrics, 2)
	// Equal indices fall back to product ID order.
	assert.Equal(t, "A", metrics[0].ProductID)
	assert.Equal(t, "B", metrics[1].ProductID)
}

func TestDashboardPaginatesAndSummarizes(t *testing.T) {
	analyzer, demand, orders := newBullwhipFixture()
	demand.products = []string{"AMP", "FLAT", "THIN"}

	key, points := constantSeries("FLAT", "", 7, 5)
	demand.demand[key] = points
	_, flatOrders := constantSeries("FLAT", "", 7, 5)
	orders.orders["FLAT"] = flatOrders

	demand.demand[demandKey("AMP", "")] = []domain.DemandPoint{
		{Date: day(0), Quantity: 4}, {Date: day(1), Quantity: 6},
		{Date: day(2), Quantity: 4}, {Date: day(3), Quantity: 6},
		{Date: day(4), Quantity: 4}, {Date: day(5), Quantity: 6},
		{Date: day(6), Quantity: 4},
	}
	orders.orders["AMP"] = []domain.DemandPoint{
		{Date: day(1), Quantity: 20},
		{Date: day(3), Quantity: 20},
		{Date: day(5), Quantity: 20},
	}

	thinKey, thinPoints := constantSeries("THIN", "", 7, 5)
	demand.demand[thinKey] = thinPoints

	dashboard, err := analyzer.Dashboard(context.Background(), testAuth(), 6, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, dashboard.Total)
	require.Len(t, dashboard.Metrics, 1)
	assert.Equal(t, "AMP", dashboard.Metrics[0].ProductID)
	assert.Equal(t, 1, dashboard.AmplifiedCount)
	assert.Equal(t, 1, dashboard.SkippedCount)
	assert.Greater(t, dashboard.MeanIndex, 0.0)

	// Page past the end returns an empty page, not an error.
	lastPage, err := analyzer.Dashboard(context.Background(), testAuth(), 6, 9, 1)
	require.NoError(t, err)
	assert.Empty(t, lastPage.Metrics)
	assert.Equal(t, 2, lastPage.Total)
}
