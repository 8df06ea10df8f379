// Package windowing generates tapering windows for segment-averaged spectral
// estimation.
package windowing

import (
	"fmt"
	"strings"

	dspwindow "github.com/mjibson/go-dsp/window"
)

// Type names a window shape
type Type string

const (
	TypeHann        Type = "hann"
	TypeHamming     Type = "hamming"
	TypeBlackman    Type = "blackman"
	TypeBartlett    Type = "bartlett"
	TypeRectangular Type = "rectangular"
)

// Types lists every supported window type
func Types() []Type {
	return []Type{TypeHann, TypeHamming, TypeBlackman, TypeBartlett, TypeRectangular}
}

// ParseType resolves a window name. "boxcar" is accepted for rectangular.
func ParseType(name string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(name))); t {
	case TypeHann, TypeHamming, TypeBlackman, TypeBartlett, TypeRectangular:
		return t, nil
	case "boxcar":
		return TypeRectangular, nil
	case "":
		return TypeHann, nil
	default:
		return "", fmt.Errorf("unknown window type %q", name)
	}
}

// Window holds precomputed coefficients for one window length.
//
// Periodic windows (symmetric == false in New) are the DFT-even form used for
// spectral analysis: the denominator is size rather than size-1.
type Window struct {
	typ          Type
	size         int
	coefficients []float64
}

// New creates a window of the given type and size
func New(typ Type, size int, symmetric bool) (*Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	var gen func(size int, denominator float64) []float64
	switch typ {
	case TypeHann:
		gen = hann
	case TypeHamming:
		gen = hamming
	case TypeBlackman:
		gen = blackman
	case TypeBartlett:
		gen = bartlett
	case TypeRectangular:
		gen = rectangular
	default:
		return nil, fmt.Errorf("unknown window type %q", typ)
	}

	denominator := float64(size)
	if symmetric {
		denominator = float64(size - 1)
	}

	coefficients := make([]float64, size)
	if size == 1 {
		coefficients[0] = 1.0
	} else {
		coefficients = gen(size, denominator)
	}

	return &Window{
		typ:          typ,
		size:         size,
		coefficients: coefficients,
	}, nil
}

// Apply applies the window to a signal (creates new array)
func (w *Window) Apply(signal []float64) []float64 {
	if len(signal) != w.size {
		return nil
	}

	windowed := make([]float64, w.size)
	for i, c := range w.coefficients {
		windowed[i] = signal[i] * c
	}
	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (w *Window) ApplyInPlace(signal []float64) error {
	if len(signal) != w.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), w.size)
	}

	for i, c := range w.coefficients {
		signal[i] *= c
	}
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (w *Window) GetCoefficients() []float64 {
	coeffs := make([]float64, len(w.coefficients))
	copy(coeffs, w.coefficients)
	return coeffs
}

// PowerSum returns sum(w[i]^2), the normalization used for density scaling
func (w *Window) PowerSum() float64 {
	var sum float64
	for _, c := range w.coefficients {
		sum += c * c
	}
	return sum
}

// GetSize returns the window size
func (w *Window) GetSize() int {
	return w.size
}

// GetType returns the window type
func (w *Window) GetType() Type {
	return w.typ
}

// GoDSPFunc returns the equivalent go-dsp window generator. go-dsp windows are
// always symmetric.
func GoDSPFunc(typ Type) (func(int) []float64, error) {
	switch typ {
	case TypeHann:
		return dspwindow.Hann, nil
	case TypeHamming:
		return dspwindow.Hamming, nil
	case TypeBlackman:
		return dspwindow.Blackman, nil
	case TypeBartlett:
		return dspwindow.Bartlett, nil
	case TypeRectangular:
		return dspwindow.Rectangular, nil
	default:
		return nil, fmt.Errorf("unknown window type %q", typ)
	}
}
