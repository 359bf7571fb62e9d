package analytics

import (
	"testing"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesFromValues(values []float64) domain.DemandSeries {
	points := make([]domain.DemandPoint, len(values))
	for i, v := range values {
		points[i] = domain.DemandPoint{Date: day(i), Quantity: v}
	}
	return domain.DemandSeries{
		TenantID:  "t-1",
		ProductID: "P1",
		Start:     day(0),
		End:       day(len(values) - 1),
		Points:    points,
	}
}

func weeklyPattern(weeks int, pattern []float64) []float64 {
	values := make([]float64, 0, weeks*len(pattern))
	for w := 0; w < weeks; w++ {
		values = append(values, pattern...)
	}
	return values
}

func TestDetectReturnsNilForShortSeries(t *testing.T) {
	detector := NewSeasonalityDetector(7)

	values := make([]float64, 27)
	assert.Nil(t, detector.Detect(seriesFromValues(values)))

	// 4 full periods is the floor for period 7 and beats the 30-point minimum.
	assert.Nil(t, detector.Detect(seriesFromValues(weeklyPattern(3, []float64{1, 2, 3, 4, 5, 6, 7}))))
}

func TestDetectWeeklySeasonality(t *testing.T) {
	detector := NewSeasonalityDetector(7)

	// Weekend-heavy pattern repeated exactly: residual variance should be
	// zero and strength 1.
	values := weeklyPattern(8, []float64{10, 10, 10, 10, 10, 30, 30})
	profile := detector.Detect(seriesFromValues(values))
	require.NotNil(t, profile)

	assert.True(t, profile.IsSeasonal)
	assert.Equal(t, 7, profile.Period)
	assert.InDelta(t, 1.0, profile.Strength, 1e-9)

	assert.InDelta(t, 1.0, Mean(profile.Indices), 1e-9, "indices must be normalized to mean 1")
	assert.Greater(t, profile.Indices[5], profile.Indices[0])
}

func TestDetectFlatSeriesIsNotSeasonal(t *testing.T) {
	detector := NewSeasonalityDetector(7)

	values := weeklyPattern(8, []float64{12, 12, 12, 12, 12, 12, 12})
	profile := detector.Detect(seriesFromValues(values))
	require.NotNil(t, profile)

	assert.False(t, profile.IsSeasonal)
	assert.Equal(t, 0.0, profile.Strength)
	assert.InDelta(t, 1.0, Mean(profile.Indices), 1e-9)
}

func TestDetectAllZeroSeries(t *testing.T) {
	detector := NewSeasonalityDetector(7)

	profile := detector.Detect(seriesFromValues(make([]float64, 56)))
	require.NotNil(t, profile)

	assert.False(t, profile.IsSeasonal)
	assert.Equal(t, 0.0, profile.Strength)
	for _, idx := range profile.Indices {
		assert.Equal(t, 1.0, idx)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	detector := NewSeasonalityDetector(7)
	values := weeklyPattern(8, []float64{4, 7, 5, 6, 8, 15, 14})

	first := detector.Detect(seriesFromValues(values))
	second := detector.Detect(seriesFromValues(values))
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first, second)
}
