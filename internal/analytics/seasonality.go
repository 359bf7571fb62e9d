// backend-go/internal/analytics/seasonality.go
package analytics

import "github.com/demandloop/backend-go/internal/domain"

const (
	// DefaultSeasonalPeriod is day-of-week seasonality.
	DefaultSeasonalPeriod = 7

	seasonalMinPoints        = 30
	seasonalStrengthCutoff   = 0.3
	seasonalMinPeriodRepeats = 4
)

// SeasonalityDetector classifies a demand series as seasonal or not and
// extracts a multiplicative index profile.
type SeasonalityDetector struct {
	period int
}

func NewSeasonalityDetector(period int) *SeasonalityDetector {
	if period < 2 {
		period = DefaultSeasonalPeriod
	}
	return &SeasonalityDetector{period: period}
}

// Detect returns the seasonality profile for a series, or nil when the
// series is too short to judge. A nil result is an expected outcome, not an
// error. Same series in, same profile out.
func (d *SeasonalityDetector) Detect(series domain.DemandSeries) *domain.SeasonalityProfile {
	values := series.Quantities()

	minPoints := seasonalMinPoints
	if need := seasonalMinPeriodRepeats * d.period; need > minPoints {
		minPoints = need
	}
	if len(values) < minPoints {
		return nil
	}

	overall := Mean(values)
	if overall == 0 {
		// A flat-zero series carries no seasonal signal.
		return &domain.SeasonalityProfile{
			IsSeasonal: false,
			Period:     d.period,
			Indices:    flatIndices(d.period),
			Strength:   0,
		}
	}

	// Period-position averages relative to the overall mean.
	sums := make([]float64, d.period)
	counts := make([]int, d.period)
	for i, v := range values {
		pos := i % d.period
		sums[pos] += v
		counts[pos]++
	}

	indices := make([]float64, d.period)
	for pos := range indices {
		if counts[pos] == 0 {
			indices[pos] = 1
			continue
		}
		indices[pos] = (sums[pos] / float64(counts[pos])) / overall
	}

	// Normalize so the indices average exactly 1.0.
	indexMean := Mean(indices)
	if indexMean > 0 {
		for pos := range indices {
			indices[pos] /= indexMean
		}
	} else {
		indices = flatIndices(d.period)
	}

	// Strength: share of variance explained by the seasonal component.
	totalVar := Variance(values)
	strength := 0.0
	if totalVar > 0 {
		residuals := make([]float64, len(values))
		for i, v := range values {
			residuals[i] = v - overall*indices[i%d.period]
		}
		residualVar := Variance(residuals)
		strength = 1 - residualVar/totalVar
		if strength < 0 {
			strength = 0
		}
		if strength > 1 {
			strength = 1
		}
	}

	return &domain.SeasonalityProfile{
		IsSeasonal: strength > seasonalStrengthCutoff,
		Period:     d.period,
		Indices:    indices,
		Strength:   strength,
	}
}

func flatIndices(period int) []float64 {
	indices := make([]float64, period)
	for i := range indices {
		indices[i] = 1
	}
	return indices
}
