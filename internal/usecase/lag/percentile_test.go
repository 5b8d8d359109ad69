package lag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileEmpty(t *testing.T) {
	for _, p := range []float64{0, 50, 95, 100} {
		assert.Equal(t, 0.0, Percentile(nil, p))
		assert.Equal(t, 0.0, Percentile([]float64{}, p))
	}
}

func TestPercentileNearestRank(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

	assert.Equal(t, 1.0, Percentile(values, 95))
	assert.Equal(t, 0.5, Percentile(values, 50))
	assert.Equal(t, 1.0, Percentile(values, 100))
	assert.Equal(t, 0.1, Percentile(values, 0))
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	assert.Equal(t, 3.0, Percentile(values, 100))
	assert.Equal(t, 1.0, Percentile(values, 0))
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestPercentileSingleValue(t *testing.T) {
	assert.Equal(t, 7.0, Percentile([]float64{7}, 50))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 95))
}
