package calculator

import "errors"

// SMA computes the simple moving average of the trailing `period` values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// Mean computes the arithmetic mean. Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// RollingMean computes a trailing-window mean ending at each index, using up
// to `window` values. Indices with fewer than `minPeriods` values available
// are marked false in the returned mask.
func RollingMean(values []float64, window, minPeriods int) (means []float64, valid []bool) {
	means = make([]float64, len(values))
	valid = make([]bool, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		count := i + 1
		if count > window {
			sum -= values[i-window]
			count = window
		}
		if count >= minPeriods {
			means[i] = sum / float64(count)
			valid[i] = true
		}
	}
	return means, valid
}
