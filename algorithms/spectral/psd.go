package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/fsprobe/algorithms/filters"
	"github.com/RyanBlaney/fsprobe/algorithms/windowing"
)

// PSD is a one-sided power spectral density estimate. Freqs are in the units
// of SampleRate; with SampleRate 1.0 they are cycles/sample.
type PSD struct {
	Freqs         []float64 `json:"freqs"`
	Power         []float64 `json:"power"`
	SampleRate    float64   `json:"sample_rate"`
	SegmentLength int       `json:"segment_length"`
	Overlap       int       `json:"overlap"`
	Segments      int       `json:"segments"`
	Method        Method    `json:"method"`

	// Conditioning actually applied to each segment
	Window  windowing.Type      `json:"window"`
	Detrend filters.DetrendMode `json:"detrend"`
	Backend Backend             `json:"fft_backend,omitempty"`
}

// Peak is the maximum of a PSD over a frequency band
type Peak struct {
	Frequency float64 `json:"frequency"`
	Power     float64 `json:"power"`
	Bin       int     `json:"bin"`
}

// Resolution returns the bin spacing, SampleRate/SegmentLength
func (p *PSD) Resolution() float64 {
	if p.SegmentLength == 0 {
		return 0
	}
	return p.SampleRate / float64(p.SegmentLength)
}

// BandIndices returns the bins whose frequency lies strictly inside (low, high).
func (p *PSD) BandIndices(low, high float64) []int {
	var idx []int
	for i, f := range p.Freqs {
		if f > low && f < high {
			idx = append(idx, i)
		}
	}
	return idx
}

// PeakInBand finds the bin of maximum power strictly inside (low, high).
// Ties go to the lowest frequency. ok is false when the band holds no bins or
// when no bin carries positive finite power.
func (p *PSD) PeakInBand(low, high float64) (peak Peak, ok bool) {
	idx := p.BandIndices(low, high)
	if len(idx) == 0 {
		return Peak{}, false
	}

	power := make([]float64, len(idx))
	for i, bin := range idx {
		power[i] = p.Power[bin]
	}
	if floats.HasNaN(power) {
		return Peak{}, false
	}

	// MaxIdx returns the first maximal index
	best := floats.MaxIdx(power)
	if power[best] <= 0 || math.IsInf(power[best], 0) {
		return Peak{}, false
	}

	bin := idx[best]
	return Peak{Frequency: p.Freqs[bin], Power: p.Power[bin], Bin: bin}, true
}
