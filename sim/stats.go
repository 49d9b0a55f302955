package sim

import (
	"math"
	"slices"
)

// Number is any sample type the statistics helpers accept.
type Number interface {
	int | int64 | float64
}

// Percentile returns the p-th percentile of data (p in [0, 100]) with linear
// interpolation between closest ranks. data need not be sorted and is not
// modified. Returns 0 for empty input.
func Percentile[T Number](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(data)
	slices.Sort(sorted)

	p = min(max(p, 0), 100)
	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if lowerIdx == upperIdx {
		return float64(sorted[lowerIdx])
	}
	lowerVal := float64(sorted[lowerIdx])
	upperVal := float64(sorted[upperIdx])
	return lowerVal + (upperVal-lowerVal)*(rank-float64(lowerIdx))
}

// Mean returns the arithmetic mean of numbers, or 0 for empty input.
func Mean[T Number](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}
	return sum / float64(len(numbers))
}
