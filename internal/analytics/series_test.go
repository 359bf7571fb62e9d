package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeriesZeroFillsGaps(t *testing.T) {
	reader := &fakeDemandReader{
		demand: map[string][]domain.DemandPoint{
			demandKey("P1", ""): {
				{Date: day(3), Quantity: 5},
				{Date: day(7), Quantity: 2},
			},
		},
	}
	agg := NewTimeSeriesAggregator(reader, 1)
	agg.now = fixedNow(10)

	series, err := agg.BuildSeries(context.Background(), testAuth(), "P1", 10, "")
	require.NoError(t, err)

	require.Len(t, series.Points, 11)
	assert.Equal(t, day(0), series.Start)
	assert.Equal(t, day(10), series.End)
	assert.Equal(t, 2, series.SaleDays)

	for i, p := range series.Points {
		assert.Equal(t, day(i), p.Date, "dates must be consecutive")
	}
	assert.Equal(t, 5.0, series.Points[3].Quantity)
	assert.Equal(t, 2.0, series.Points[7].Quantity)
	assert.Equal(t, 0.0, series.Points[4].Quantity)
}

func TestBuildSeriesFloorsNegativeNetDemand(t *testing.T) {
	reader := &fakeDemandReader{
		demand: map[string][]domain.DemandPoint{
			demandKey("P1", ""): {
				{Date: day(2), Quantity: -4}, // returns outweighed sales
				{Date: day(5), Quantity: 3},
			},
		},
	}
	agg := NewTimeSeriesAggregator(reader, 1)
	agg.now = fixedNow(7)

	series, err := agg.BuildSeries(context.Background(), testAuth(), "P1", 7, "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, series.Points[2].Quantity)
	assert.Equal(t, 3.0, series.Points[5].Quantity)
}

func TestBuildSeriesInsufficientData(t *testing.T) {
	reader := &fakeDemandReader{
		demand: map[string][]domain.DemandPoint{
			demandKey("P1", ""): {
				{Date: day(1), Quantity: 5},
				{Date: day(2), Quantity: 5},
			},
		},
	}
	agg := NewTimeSeriesAggregator(reader, 3)
	agg.now = fixedNow(10)

	_, err := agg.BuildSeries(context.Background(), testAuth(), "P1", 10, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestBuildSeriesWrapsUpstreamFailure(t *testing.T) {
	reader := &fakeDemandReader{err: errors.New("connection refused")}
	agg := NewTimeSeriesAggregator(reader, 1)
	agg.now = fixedNow(10)

	_, err := agg.BuildSeries(context.Background(), testAuth(), "P1", 10, "")
	var upstream *domain.UpstreamDataError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "daily demand fetch", upstream.Op)
}

func TestBuildSeriesIgnoresPointsOutsideWindow(t *testing.T) {
	reader := &fakeDemandReader{
		demand: map[string][]domain.DemandPoint{
			demandKey("P1", ""): {
				{Date: day(-5), Quantity: 100},
				{Date: day(1), Quantity: 4},
			},
		},
	}
	agg := NewTimeSeriesAggregator(reader, 1)
	agg.now = fixedNow(5)

	series, err := agg.BuildSeries(context.Background(), testAuth(), "P1", 5, "")
	require.NoError(t, err)
	require.Len(t, series.Points, 6)
	assert.Equal(t, 4.0, series.Points[1].Quantity)
	assert.Equal(t, 1, series.SaleDays)
}
