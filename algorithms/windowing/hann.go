package windowing

import "math"

func hann(size int, denominator float64) []float64 {
	coefficients := make([]float64, size)
	for i := 0; i < size; i++ {
		coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}
	return coefficients
}
