// backend-go/internal/analytics/series.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/repository"
)

// TimeSeriesAggregator builds gap-free daily demand series from raw
// order-line facts.
type TimeSeriesAggregator struct {
	demand      repository.DemandReader
	minSaleDays int
	now         func() time.Time
}

// NewTimeSeriesAggregator creates an aggregator. minSaleDays is the minimum
// number of distinct sale-days a product must have before a series is
// considered usable; values below 1 default to 1.
func NewTimeSeriesAggregator(demand repository.DemandReader, minSaleDays int) *TimeSeriesAggregator {
	if minSaleDays < 1 {
		minSaleDays = 1
	}
	return &TimeSeriesAggregator{
		demand:      demand,
		minSaleDays: minSaleDays,
		now:         time.Now,
	}
}

// BuildSeries returns the zero-filled daily demand series for a product over
// [today - lookbackDays, today]. locationID may be empty for tenant-wide
// demand. Returns domain.ErrInsufficientData when the product has fewer than
// the configured minimum of distinct sale-days.
func (a *TimeSeriesAggregator) BuildSeries(ctx context.Context, auth domain.AuthContext, productID string, lookbackDays int, locationID string) (domain.DemandSeries, error) {
	if lookbackDays < 1 {
		lookbackDays = 30
	}

	end := truncateDay(a.now())
	start := end.AddDate(0, 0, -lookbackDays)

	raw, err := a.demand.DailyDemand(ctx, auth.TenantID, productID, locationID, start, end)
	if err != nil {
		return domain.DemandSeries{}, &domain.UpstreamDataError{Op: "daily demand fetch", Err: err}
	}

	byDay := make(map[time.Time]float64, len(raw))
	saleDays := 0
	for _, p := range raw {
		day := truncateDay(p.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		if _, seen := byDay[day]; !seen && p.Quantity != 0 {
			saleDays++
		}
		byDay[day] += p.Quantity
	}

	if saleDays < a.minSaleDays {
		return domain.DemandSeries{}, fmt.Errorf("product %s has %d sale-days, need %d: %w",
			productID, saleDays, a.minSaleDays, domain.ErrInsufficientData)
	}

	points := make([]domain.DemandPoint, 0, lookbackDays+1)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		qty := byDay[day]
		if qty < 0 {
			// Returns can outweigh sales on a day; net demand floors at zero.
			qty = 0
		}
		points = append(points, domain.DemandPoint{Date: day, Quantity: qty})
	}

	return domain.DemandSeries{
		TenantID:   auth.TenantID,
		ProductID:  productID,
		LocationID: locationID,
		Start:      start,
		End:        end,
		Points:     points,
		SaleDays:   saleDays,
	}, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
