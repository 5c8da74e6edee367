package neat

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

func clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(value, hi))
}

// Mean is the arithmetic mean of values, 0 for none.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Stdev is the sample standard deviation of values, 0 for fewer than two.
func Stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Median is the middle of values, averaging the two middle ones for an even
// count. It is NaN for none and leaves values untouched.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stat.Mean(sorted[(n-1)/2:n/2+1], nil)
}
