package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/demandloop/backend-go/internal/domain"
)

// testDay anchors every test on a fixed calendar so series windows are
// deterministic.
var testDay = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return testDay.AddDate(0, 0, offset)
}

func fixedNow(offset int) func() time.Time {
	return func() time.Time { return day(offset) }
}

func demandKey(productID, locationID string) string {
	return productID + "|" + locationID
}

type fakeDemandReader struct {
	demand   map[string][]domain.DemandPoint
	products []string
	err      error
}

func (f *fakeDemandReader) DailyDemand(ctx context.Context, tenantID, productID, locationID string, from, to time.Time) ([]domain.DemandPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.demand[demandKey(productID, locationID)], nil
}

func (f *fakeDemandReader) ProductsWithDemand(ctx context.Context, tenantID string, since time.Time) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

type fakeOrderReader struct {
	orders map[string][]domain.DemandPoint
	err    error
}

func (f *fakeOrderReader) OrderHistory(ctx context.Context, tenantID, productID string, from, to time.Time) ([]domain.DemandPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders[productID], nil
}

type fakeHierarchyReader struct {
	nodes  []domain.EchelonNode
	onHand map[string]float64
	err    error
}

func (f *fakeHierarchyReader) LocationHierarchy(ctx context.Context, tenantID string) ([]domain.EchelonNode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.nodes, nil
}

func (f *fakeHierarchyReader) OnHandStock(ctx context.Context, tenantID, locationID, productID string) (float64, error) {
	return f.onHand[locationID+"|"+productID], nil
}

type fakeForecastStore struct {
	mu           sync.Mutex
	past         []domain.PastForecast
	history      map[string]map[domain.ForecastMethod]float64
	saved        map[string]domain.AccuracyRecord
	failProducts map[string]bool
}

func newFakeForecastStore() *fakeForecastStore {
	return &fakeForecastStore{
		history: make(map[string]map[domain.ForecastMethod]float64),
		saved:   make(map[string]domain.AccuracyRecord),
	}
}

func (f *fakeForecastStore) PastForecasts(ctx context.Context, tenantID string, since time.Time) ([]domain.PastForecast, error) {
	return f.past, nil
}

func (f *fakeForecastStore) AccuracyHistory(ctx context.Context, tenantID, productID string) (map[domain.ForecastMethod]float64, error) {
	return f.history[productID], nil
}

func (f *fakeForecastStore) SaveAccuracyRecord(ctx context.Context, record domain.AccuracyRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProducts[record.ProductID] {
		return errors.New("write rejected")
	}
	key := fmt.Sprintf("%s|%s|%s|%s", record.TenantID, record.ProductID, record.Method, record.PeriodDate.Format("2006-01-02"))
	f.saved[key] = record
	return nil
}

func (f *fakeForecastStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fakeSuggestionSink struct {
	mu   sync.Mutex
	recs []domain.SafetyStockRecommendation
	err  error
}

func (f *fakeSuggestionSink) SaveSuggestion(ctx context.Context, rec domain.SafetyStockRecommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, rec)
	return nil
}

func testAuth() domain.AuthContext {
	return domain.AuthContext{TenantID: "t-1", UserID: "u-1", Role: domain.RoleAnalyst}
}

func constantSeries(productID, locationID string, days int, qty float64) (string, []domain.DemandPoint) {
	points := make([]domain.DemandPoint, 0, days)
	for i := 0; i < days; i++ {
		points = append(points, domain.DemandPoint{Date: day(i), Quantity: qty})
	}
	return demandKey(productID, locationID), points
}
