package spectral

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// powerFloor keeps log() away from empty bins
const powerFloor = 1e-20

// Flatness returns the Wiener entropy of power: geometric mean over arithmetic
// mean, in [0, 1]. Values near 0 mean a few bins dominate; values near 1 mean
// the spectrum is noise-like.
func Flatness(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}

	arith := stat.Mean(power, nil)
	if arith <= powerFloor {
		return 0
	}

	logs := make([]float64, len(power))
	for i, p := range power {
		logs[i] = math.Log(math.Max(p, powerFloor))
	}
	flatness := math.Exp(stat.Mean(logs, nil)) / arith
	return math.Min(flatness, 1)
}

// BandPower returns the power values of the bins strictly inside (low, high)
func (p *PSD) BandPower(low, high float64) []float64 {
	idx := p.BandIndices(low, high)
	power := make([]float64, len(idx))
	for i, bin := range idx {
		power[i] = p.Power[bin]
	}
	return power
}

// BandFlatness is Flatness over the bins strictly inside (low, high)
func (p *PSD) BandFlatness(low, high float64) float64 {
	return Flatness(p.BandPower(low, high))
}

// Prominence returns the ratio of the band maximum to the band median. A clean
// rhythm gives large values; a ratio near 1 means the peak is not distinct.
// The median is floored so the ratio stays finite.
func (p *PSD) Prominence(low, high float64) float64 {
	power := p.BandPower(low, high)
	if len(power) == 0 {
		return 0
	}
	slices.Sort(power)
	median := math.Max(stat.Quantile(0.5, stat.Empirical, power, nil), powerFloor)
	return floats.Max(power) / median
}
