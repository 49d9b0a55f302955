package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	data := []int64{40, 10, 30, 20}

	assert.Equal(t, 10.0, Percentile(data, 0))
	assert.Equal(t, 40.0, Percentile(data, 100))
	assert.InDelta(t, 25.0, Percentile(data, 50), 1e-9)
	assert.InDelta(t, 38.5, Percentile(data, 95), 1e-9)
	assert.Equal(t, []int64{40, 10, 30, 20}, data, "input must not be reordered")
}

func TestPercentile_EdgeCases(t *testing.T) {
	assert.Zero(t, Percentile([]float64{}, 50))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 95))
	assert.Equal(t, 3.0, Percentile([]int{1, 2, 3}, 150), "p is clamped to 100")
}

func TestMean(t *testing.T) {
	assert.Zero(t, Mean([]int{}))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-9)
}
