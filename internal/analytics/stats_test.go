package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 5.0, Mean([]float64{2, 4, 9}))
}

func TestVarianceIsSampleVariance(t *testing.T) {
	// Known set: mean 5, sum of squared deviations 32, n-1 = 7.
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 32.0/7.0, Variance(values), 1e-12)

	assert.Equal(t, 0.0, Variance(nil))
	assert.Equal(t, 0.0, Variance([]float64{42}))
	assert.Equal(t, 0.0, Variance([]float64{3, 3, 3, 3}))
}

func TestNormalQuantile(t *testing.T) {
	assert.InDelta(t, 1.6449, NormalQuantile(0.95), 1e-3)
	assert.InDelta(t, 2.3263, NormalQuantile(0.99), 1e-3)
	assert.InDelta(t, 0.0, NormalQuantile(0.5), 1e-9)
}

func TestNormalQuantileClampsServiceLevel(t *testing.T) {
	assert.Equal(t, NormalQuantile(0.5), NormalQuantile(0.1))
	assert.Equal(t, NormalQuantile(0.9999), NormalQuantile(1.0))

	// Monotone over the supported range.
	assert.Less(t, NormalQuantile(0.9), NormalQuantile(0.95))
	assert.Less(t, NormalQuantile(0.95), NormalQuantile(0.99))
}
