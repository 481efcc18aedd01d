package monitor

import (
	"math"
	"sort"
)

// mean returns the arithmetic mean of vals; 0 for an empty slice.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// median returns the median of vals without mutating the input;
// 0 for an empty slice.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// populationStdDev returns the population standard deviation of vals.
// Small windows are fine here; callers guard the denominator with an
// epsilon when dividing.
func populationStdDev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	mu := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}
