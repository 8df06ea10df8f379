package windowing

import "math"

// Triangle reaching zero at both ends of the (denominator+1)-point support.
func bartlett(size int, denominator float64) []float64 {
	half := denominator / 2
	coefficients := make([]float64, size)
	for i := 0; i < size; i++ {
		coefficients[i] = 1.0 - math.Abs((float64(i)-half)/half)
	}
	return coefficients
}
