package spectral

import (
	"fmt"
	"math"

	dspspectral "github.com/mjibson/go-dsp/spectral"

	"github.com/RyanBlaney/fsprobe/algorithms/filters"
	"github.com/RyanBlaney/fsprobe/algorithms/windowing"
)

// Pwelch adapts go-dsp's MATLAB-style Pwelch. It applies no detrending and
// always uses go-dsp's symmetric windows and FFT; Detrend and Backend in the
// config are ignored.
type Pwelch struct {
	config *WelchConfig
	window func(int) []float64
}

// NewPwelch creates a go-dsp backed estimator
func NewPwelch(config *WelchConfig) (*Pwelch, error) {
	if config == nil {
		config = DefaultWelchConfig()
	}
	wf, err := windowing.GoDSPFunc(config.Window)
	if err != nil {
		return nil, err
	}
	return &Pwelch{config: config, window: wf}, nil
}

// Estimate computes the PSD with spectral.Pwelch using the clamped segment length
func (p *Pwelch) Estimate(signal []float64, sampleRate float64) (*PSD, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("sample rate must be positive and finite, got %g", sampleRate)
	}

	n, noverlap, segments, err := segmentPlan(len(signal), p.config)
	if err != nil {
		return nil, err
	}

	power, freqs := dspspectral.Pwelch(signal, sampleRate, &dspspectral.PwelchOptions{
		NFFT:     n,
		Noverlap: noverlap,
		Window:   p.window,
	})

	return &PSD{
		Freqs:         freqs,
		Power:         power,
		SampleRate:    sampleRate,
		SegmentLength: n,
		Overlap:       noverlap,
		Segments:      segments,
		Method:        MethodPwelch,
		Window:        p.config.Window,
		Detrend:       filters.DetrendNone,
	}, nil
}
