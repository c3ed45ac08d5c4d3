package calculator

import "math"

// DailyReturns computes day-over-day percentage changes. The result has the
// same length as the input with the first element fixed at 0, so indices
// stay aligned with the bar they belong to.
func DailyReturns(closes []float64) []float64 {
	if len(closes) == 0 {
		return nil
	}
	returns := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			returns[i] = (closes[i] - closes[i-1]) / closes[i-1]
		}
	}
	return returns
}

// SampleStd computes the sample standard deviation (n-1 denominator).
// Returns 0 when fewer than two values are given.
func SampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
