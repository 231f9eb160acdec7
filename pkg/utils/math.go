package utils

import "math"

// NumericSummary describes a column of numbers.
type NumericSummary struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// Summarize returns count, mean, min and max of xs. The zero value is returned for an empty slice.
func Summarize(xs []float64) NumericSummary {
	if len(xs) == 0 {
		return NumericSummary{}
	}
	s := NumericSummary{Count: len(xs), Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, x := range xs {
		sum += x
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
	}
	s.Mean = sum / float64(len(xs))
	return s
}
