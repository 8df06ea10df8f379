package spectral

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/RyanBlaney/fsprobe/algorithms/filters"
	"github.com/RyanBlaney/fsprobe/algorithms/windowing"
)

// Method names a PSD estimation method
type Method string

const (
	// MethodWelch is the native estimator: periodic window, per-segment
	// detrend, one-sided density scaling.
	MethodWelch Method = "welch"
	// MethodPwelch delegates to go-dsp's Pwelch (symmetric window, no detrend).
	MethodPwelch Method = "pwelch"
)

// ParseMethod resolves a method name; the empty string means welch.
func ParseMethod(name string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(name))); m {
	case MethodWelch, MethodPwelch:
		return m, nil
	case "":
		return MethodWelch, nil
	default:
		return "", fmt.Errorf("unknown psd method %q", name)
	}
}

// WelchConfig configures segment-averaged PSD estimation
type WelchConfig struct {
	SegmentLength   int                 `json:"segment_length"`
	OverlapFraction float64             `json:"overlap_fraction"` // of the segment length, in [0, 1)
	Window          windowing.Type      `json:"window"`
	Detrend         filters.DetrendMode `json:"detrend"`
	Backend         Backend             `json:"fft_backend"`
}

// DefaultWelchConfig returns the conventional settings: 256-point Hann
// segments overlapping by half, mean removed from each segment.
func DefaultWelchConfig() *WelchConfig {
	return &WelchConfig{
		SegmentLength:   256,
		OverlapFraction: 0.5,
		Window:          windowing.TypeHann,
		Detrend:         filters.DetrendConstant,
		Backend:         BackendGoDSP,
	}
}

// Estimator produces a PSD from a signal sampled at sampleRate
type Estimator interface {
	Estimate(signal []float64, sampleRate float64) (*PSD, error)
}

// NewEstimator returns the estimator for method
func NewEstimator(method Method, config *WelchConfig) (Estimator, error) {
	switch method {
	case MethodWelch, "":
		return NewWelch(config)
	case MethodPwelch:
		return NewPwelch(config)
	default:
		return nil, fmt.Errorf("unknown psd method %q", method)
	}
}

// segmentPlan clamps the segment length to the signal and derives the overlap
// and segment count.
func segmentPlan(signalLen int, config *WelchConfig) (n, noverlap, segments int, err error) {
	if signalLen == 0 {
		return 0, 0, 0, fmt.Errorf("empty signal")
	}
	if config.SegmentLength <= 0 {
		return 0, 0, 0, fmt.Errorf("segment length must be positive, got %d", config.SegmentLength)
	}
	if config.OverlapFraction < 0 || config.OverlapFraction >= 1 || math.IsNaN(config.OverlapFraction) {
		return 0, 0, 0, fmt.Errorf("overlap fraction must be in [0, 1), got %g", config.OverlapFraction)
	}

	n = min(signalLen, config.SegmentLength)
	noverlap = int(float64(n) * config.OverlapFraction)
	if noverlap >= n {
		noverlap = n - 1
	}
	step := n - noverlap
	segments = (signalLen-n)/step + 1
	return n, noverlap, segments, nil
}

// Welch estimates the PSD by averaging modified periodograms of overlapping
// segments.
type Welch struct {
	config *WelchConfig
	fft    *FFT
}

// NewWelch creates a native Welch estimator
func NewWelch(config *WelchConfig) (*Welch, error) {
	if config == nil {
		config = DefaultWelchConfig()
	}
	if _, err := filters.NewDetrender(config.Detrend); err != nil {
		return nil, err
	}
	if _, err := windowing.New(config.Window, 1, false); err != nil {
		return nil, err
	}
	f, err := NewFFT(config.Backend)
	if err != nil {
		return nil, err
	}
	return &Welch{config: config, fft: f}, nil
}

// Estimate computes the one-sided density PSD of signal.
//
// The segment length is min(len(signal), SegmentLength), so the bin spacing
// is sampleRate/n and bin k sits at k*sampleRate/n for k = 0..n/2.
func (w *Welch) Estimate(signal []float64, sampleRate float64) (*PSD, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("sample rate must be positive and finite, got %g", sampleRate)
	}

	n, noverlap, segments, err := segmentPlan(len(signal), w.config)
	if err != nil {
		return nil, err
	}

	win, err := windowing.New(w.config.Window, n, false)
	if err != nil {
		return nil, err
	}
	detrender, err := filters.NewDetrender(w.config.Detrend)
	if err != nil {
		return nil, err
	}

	bins := n/2 + 1
	power := make([]float64, bins)
	frame := make([]float64, win.GetSize())
	step := n - noverlap

	for s := 0; s < segments; s++ {
		start := s * step
		copy(frame, signal[start:start+n])

		detrender.ProcessInPlace(frame)
		if err := win.ApplyInPlace(frame); err != nil {
			return nil, err
		}

		for k, c := range w.fft.ComputeOneSided(frame) {
			power[k] += real(c * cmplx.Conj(c))
		}
	}

	scale := 1.0 / (sampleRate * win.PowerSum() * float64(segments))
	for k := range power {
		power[k] *= scale
		// every bin except DC and an even-length Nyquist bin folds in its
		// negative-frequency twin
		if k > 0 && (n%2 == 1 || k < bins-1) {
			power[k] *= 2
		}
	}

	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k) * sampleRate / float64(n)
	}

	return &PSD{
		Freqs:         freqs,
		Power:         power,
		SampleRate:    sampleRate,
		SegmentLength: n,
		Overlap:       noverlap,
		Segments:      segments,
		Method:        MethodWelch,
		Window:        win.GetType(),
		Detrend:       detrender.Mode(),
		Backend:       w.fft.Backend(),
	}, nil
}
