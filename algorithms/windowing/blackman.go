package windowing

import "math"

// Classic Blackman (a0=0.42, a1=0.5, a2=0.08), not the exact-Blackman variant.
func blackman(size int, denominator float64) []float64 {
	const a0, a1, a2 = 0.42, 0.5, 0.08

	coefficients := make([]float64, size)
	for i := 0; i < size; i++ {
		arg := 2 * math.Pi * float64(i) / denominator
		coefficients[i] = a0 - a1*math.Cos(arg) + a2*math.Cos(2*arg)
	}
	return coefficients
}
