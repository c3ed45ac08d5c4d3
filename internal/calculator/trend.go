package calculator

// LinearRegression fits y = slope*x + intercept by least squares over
// x = 0, 1, ..., len(ys)-1. Returns (0, mean) for fewer than two points.
func LinearRegression(ys []float64) (slope, intercept float64) {
	n := len(ys)
	if n < 2 {
		return 0, Mean(ys)
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0, Mean(ys)
	}
	slope = (fn*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / fn
	return slope, intercept
}
