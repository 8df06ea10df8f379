package spectral

import (
	"fmt"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend selects the FFT implementation
type Backend string

const (
	BackendGoDSP Backend = "godsp" // github.com/mjibson/go-dsp/fft
	BackendGonum Backend = "gonum" // gonum.org/v1/gonum/dsp/fourier
)

// ParseBackend resolves a backend name; the empty string means go-dsp.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendGoDSP, BackendGonum:
		return b, nil
	case "":
		return BackendGoDSP, nil
	default:
		return "", fmt.Errorf("unknown fft backend %q", name)
	}
}

// FFT computes one-sided real transforms. Both backends handle lengths that
// are not powers of two.
type FFT struct {
	backend Backend
	gonum   *fourier.FFT
}

// NewFFT creates an FFT calculator for the given backend
func NewFFT(backend Backend) (*FFT, error) {
	switch backend {
	case BackendGoDSP, BackendGonum:
	case "":
		backend = BackendGoDSP
	default:
		return nil, fmt.Errorf("unknown fft backend %q", backend)
	}
	return &FFT{backend: backend}, nil
}

// Backend returns the backend in use
func (f *FFT) Backend() Backend {
	return f.backend
}

// ComputeOneSided returns the len(x)/2+1 non-negative frequency coefficients
// of the real sequence x.
func (f *FFT) ComputeOneSided(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	bins := len(x)/2 + 1

	if f.backend == BackendGonum {
		if f.gonum == nil || f.gonum.Len() != len(x) {
			f.gonum = fourier.NewFFT(len(x))
		}
		return f.gonum.Coefficients(nil, x)
	}

	full := fft.FFTReal(x)
	return full[:bins]
}
