// Package estimator recovers the true sampling rate of a recording from the
// position of a known physiological rhythm in its spectrum.
//
// The signal is analysed at a reference rate of 1.0, so the spectral peak is
// found in cycles/sample. If the rhythm is known to be targetHz, the rate that
// puts the peak there is targetHz / f_peak.
//
// The peak is quantized to the PSD bin spacing 1/n, where n is the clamped
// segment length. A one-bin error in f_peak moves the estimate by at most
//
//	targetHz / f_peak² · (1/n)
//
// which is reported as Result.ErrorBound and is the natural test tolerance.
package estimator

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/fsprobe/algorithms/spectral"
	"github.com/RyanBlaney/fsprobe/estimator/config"
	"github.com/RyanBlaney/fsprobe/logging"
)

var (
	// ErrInvalidInput covers empty or non-finite signals, non-positive targets,
	// malformed bands and non-positive segment lengths.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoPeakFound is returned when the search band holds no PSD bins or no
	// bin with positive power.
	ErrNoPeakFound = errors.New("no spectral peak found")
)

// ReferenceRate is the sample rate assumed while computing the PSD
const ReferenceRate = 1.0

// Band is a search interval in cycles/sample; bins strictly inside are searched
type Band struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Validate checks 0 < Low <= High < 0.5. A zero-width band is valid and simply
// contains no bins.
func (b Band) Validate() error {
	if !(b.Low > 0 && b.Low < config.Nyquist) || !(b.High > 0 && b.High < config.Nyquist) {
		return fmt.Errorf("%w: band (%g, %g) must lie inside (0, %g)", ErrInvalidInput, b.Low, b.High, config.Nyquist)
	}
	if b.Low > b.High {
		return fmt.Errorf("%w: band low %g exceeds high %g", ErrInvalidInput, b.Low, b.High)
	}
	return nil
}

func (b Band) String() string {
	return fmt.Sprintf("(%g, %g)", b.Low, b.High)
}

// Result is a full sample-rate estimate
type Result struct {
	PeakFrequency float64 `json:"peak_frequency"` // cycles/sample
	PeakPower     float64 `json:"peak_power"`
	PeakBin       int     `json:"peak_bin"`
	TargetHz      float64 `json:"target_hz"`
	TargetBPM     float64 `json:"target_bpm,omitempty"`
	SampleRate    float64 `json:"sample_rate"`
	Resolution    float64 `json:"resolution"`  // cycles/sample per bin
	ErrorBound    float64 `json:"error_bound"` // absolute, in SampleRate units
	SegmentLength int     `json:"segment_length"`
	Segments      int     `json:"segments"`
	Band          Band    `json:"band"`

	// Peak quality: max/median band power and band spectral flatness
	Prominence   float64 `json:"prominence"`
	BandFlatness float64 `json:"band_flatness"`

	// Set only when an assumed rate was configured
	AssumedRate      float64 `json:"assumed_rate,omitempty"`
	ApparentHz       float64 `json:"apparent_hz,omitempty"`
	CorrectionFactor float64 `json:"correction_factor,omitempty"`

	PSD *spectral.PSD `json:"-"`
}

// ErrorBound returns the absolute uncertainty of targetHz/fPeak caused by a
// frequency resolution of 1/segmentLength.
func ErrorBound(targetHz, fPeak float64, segmentLength int) float64 {
	if fPeak == 0 || segmentLength <= 0 {
		return math.Inf(1)
	}
	return targetHz / (fPeak * fPeak) / float64(segmentLength)
}

// Estimate returns targetHz / f_peak, where f_peak is the frequency of maximal
// Welch PSD power strictly inside band. The segment length is clamped to
// len(signal). Ties go to the lowest frequency.
//
// It is a pure function: a Hann window, half overlap and per-segment mean
// removal are always used, and nothing is logged.
func Estimate(signal []float64, targetHz float64, band Band, segmentLength int) (float64, error) {
	cfg := config.DefaultEstimatorConfig()
	cfg.TargetHz = targetHz
	cfg.Band = [2]float64{band.Low, band.High}
	cfg.SegmentLength = segmentLength

	e, err := newEstimator(cfg, &logging.NoOpLogger{})
	if err != nil {
		return 0, err
	}
	result, err := e.EstimateSignal(signal)
	if err != nil {
		return 0, err
	}
	return result.SampleRate, nil
}

// Estimator runs estimates with a fixed configuration. It reuses FFT plans
// between calls and is not safe for concurrent use.
type Estimator struct {
	config *config.EstimatorConfig
	psd    spectral.Estimator
	logger logging.Logger
}

// NewEstimator creates an estimator. A nil config is rejected because there is
// no default target frequency.
func NewEstimator(cfg *config.EstimatorConfig) (*Estimator, error) {
	return newEstimator(cfg, logging.WithFields(logging.Fields{
		"component": "sample_rate_estimator",
	}))
}

func newEstimator(cfg *config.EstimatorConfig, logger logging.Logger) (*Estimator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil configuration", ErrInvalidInput)
	}

	// work on a copy so callers can keep mutating theirs
	own := *cfg
	if err := validateTarget(own.TargetFrequency()); err != nil {
		return nil, err
	}
	if err := (Band{Low: own.Band[0], High: own.Band[1]}).Validate(); err != nil {
		return nil, err
	}
	if own.SegmentLength <= 0 {
		return nil, fmt.Errorf("%w: segment length must be positive, got %d", ErrInvalidInput, own.SegmentLength)
	}
	if err := own.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := own.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	psd, err := spectral.NewEstimator(own.Method, own.WelchConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &Estimator{config: &own, psd: psd, logger: logger}, nil
}

func validateTarget(hz float64) error {
	if !(hz > 0) || math.IsInf(hz, 0) {
		return fmt.Errorf("%w: target frequency must be positive and finite, got %g", ErrInvalidInput, hz)
	}
	return nil
}

// Config returns a copy of the effective configuration
func (e *Estimator) Config() config.EstimatorConfig {
	return *e.config
}

// EstimateSignal computes the PSD of signal and solves for the sample rate
func (e *Estimator) EstimateSignal(signal []float64) (*Result, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrInvalidInput)
	}
	for i, v := range signal {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite sample %g at index %d", ErrInvalidInput, v, i)
		}
	}

	psd, err := e.psd.Estimate(signal, ReferenceRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	band := Band{Low: e.config.Band[0], High: e.config.Band[1]}
	e.logger.Debug("Computed PSD", logging.Fields{
		"method":         psd.Method,
		"window":         psd.Window,
		"detrend":        psd.Detrend,
		"fft_backend":    psd.Backend,
		"samples":        len(signal),
		"segment_length": psd.SegmentLength,
		"segments":       psd.Segments,
		"bins":           len(psd.Freqs),
		"band_bins":      len(psd.BandIndices(band.Low, band.High)),
	})

	peak, ok := psd.PeakInBand(band.Low, band.High)
	if !ok || peak.Frequency <= 0 {
		return nil, fmt.Errorf("%w: band %s at resolution %g cycles/sample", ErrNoPeakFound, band, psd.Resolution())
	}

	targetHz := e.config.TargetFrequency()
	result := &Result{
		PeakFrequency: peak.Frequency,
		PeakPower:     peak.Power,
		PeakBin:       peak.Bin,
		TargetHz:      targetHz,
		SampleRate:    targetHz / peak.Frequency,
		Resolution:    psd.Resolution(),
		ErrorBound:    ErrorBound(targetHz, peak.Frequency, psd.SegmentLength),
		SegmentLength: psd.SegmentLength,
		Segments:      psd.Segments,
		Band:          band,
		Prominence:    psd.Prominence(band.Low, band.High),
		BandFlatness:  psd.BandFlatness(band.Low, band.High),
		PSD:           psd,
	}
	if e.config.TargetHz == 0 {
		result.TargetBPM = e.config.TargetBPM
	}
	if e.config.AssumedRate > 0 {
		result.AssumedRate = e.config.AssumedRate
		result.ApparentHz = peak.Frequency * e.config.AssumedRate
		result.CorrectionFactor = result.SampleRate / e.config.AssumedRate
	}

	e.logger.Debug("Located spectral peak", logging.Fields{
		"peak_frequency": result.PeakFrequency,
		"peak_bin":       result.PeakBin,
		"sample_rate":    result.SampleRate,
		"error_bound":    result.ErrorBound,
		"prominence":     result.Prominence,
	})

	return result, nil
}
