package windowing

import "math"

func hamming(size int, denominator float64) []float64 {
	coefficients := make([]float64, size)
	for i := 0; i < size; i++ {
		coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
	}
	return coefficients
}
