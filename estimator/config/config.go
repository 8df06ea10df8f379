// Package config holds the estimator configuration and its JSON loading.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/RyanBlaney/fsprobe/algorithms/filters"
	"github.com/RyanBlaney/fsprobe/algorithms/spectral"
	"github.com/RyanBlaney/fsprobe/algorithms/windowing"
	"github.com/RyanBlaney/fsprobe/dataset"
)

// ErrInvalidConfig marks configuration that cannot drive an estimate
var ErrInvalidConfig = errors.New("invalid configuration")

// Nyquist is the upper limit of normalized frequency at a reference rate of 1.0
const Nyquist = 0.5

// EstimatorConfig configures a sample-rate estimate.
//
// The target is given either in beats per minute or directly in Hz; TargetHz
// wins when both are set. The band is in cycles/sample.
type EstimatorConfig struct {
	TargetBPM       float64             `json:"target_bpm,omitempty"`
	TargetHz        float64             `json:"target_hz,omitempty"`
	Band            [2]float64          `json:"band"`
	SegmentLength   int                 `json:"segment_length"`
	OverlapFraction float64             `json:"overlap_fraction"`
	Method          spectral.Method     `json:"method"`
	Window          windowing.Type      `json:"window"`
	Detrend         filters.DetrendMode `json:"detrend"`
	FFTBackend      spectral.Backend    `json:"fft_backend"`

	// AssumedRate is the rate the recording was believed to have (e.g. 60 FPS).
	// Optional; when set the result reports the apparent peak frequency and the
	// correction factor relative to it.
	AssumedRate float64 `json:"assumed_rate,omitempty"`
}

// Config is the on-disk configuration file layout
type Config struct {
	Estimator *EstimatorConfig      `json:"estimator"`
	Input     *dataset.LoaderConfig `json:"input"`
}

// DefaultEstimatorConfig returns the search settings used for respiration-band
// signals: (0.01, 0.1) cycles/sample with 1024-point Hann segments. There is
// no default target; callers must supply one.
func DefaultEstimatorConfig() *EstimatorConfig {
	return &EstimatorConfig{
		Band:            [2]float64{0.01, 0.1},
		SegmentLength:   1024,
		OverlapFraction: 0.5,
		Method:          spectral.MethodWelch,
		Window:          windowing.TypeHann,
		Detrend:         filters.DetrendConstant,
		FFTBackend:      spectral.BackendGoDSP,
	}
}

// DefaultConfig returns the defaults for every section
func DefaultConfig() *Config {
	return &Config{
		Estimator: DefaultEstimatorConfig(),
		Input:     dataset.DefaultLoaderConfig(),
	}
}

// Load reads a JSON configuration file over the defaults. Sections or fields
// missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	if cfg.Estimator == nil {
		cfg.Estimator = DefaultEstimatorConfig()
	}
	if cfg.Input == nil {
		cfg.Input = dataset.DefaultLoaderConfig()
	}
	return cfg, nil
}

// TargetFrequency returns the target in Hz, converting from BPM when needed
func (c *EstimatorConfig) TargetFrequency() float64 {
	if c.TargetHz != 0 {
		return c.TargetHz
	}
	return BPMToHz(c.TargetBPM)
}

// BPMToHz converts beats per minute to Hz
func BPMToHz(bpm float64) float64 {
	return bpm / 60.0
}

// WelchConfig derives the spectral estimator settings
func (c *EstimatorConfig) WelchConfig() *spectral.WelchConfig {
	return &spectral.WelchConfig{
		SegmentLength:   c.SegmentLength,
		OverlapFraction: c.OverlapFraction,
		Window:          c.Window,
		Detrend:         c.Detrend,
		Backend:         c.FFTBackend,
	}
}

// Validate checks everything except the target, which is checked by
// ValidateTarget so that a config can be validated before a target is known.
func (c *EstimatorConfig) Validate() error {
	low, high := c.Band[0], c.Band[1]
	if !(low > 0 && low < Nyquist) || !(high > 0 && high < Nyquist) {
		return fmt.Errorf("%w: band (%g, %g) must lie inside (0, %g)", ErrInvalidConfig, low, high, Nyquist)
	}
	if low > high {
		return fmt.Errorf("%w: band low %g exceeds high %g", ErrInvalidConfig, low, high)
	}
	if c.SegmentLength <= 0 {
		return fmt.Errorf("%w: segment length must be positive, got %d", ErrInvalidConfig, c.SegmentLength)
	}
	if c.OverlapFraction < 0 || c.OverlapFraction >= 1 || math.IsNaN(c.OverlapFraction) {
		return fmt.Errorf("%w: overlap fraction must be in [0, 1), got %g", ErrInvalidConfig, c.OverlapFraction)
	}
	if c.AssumedRate < 0 || math.IsNaN(c.AssumedRate) || math.IsInf(c.AssumedRate, 0) {
		return fmt.Errorf("%w: assumed rate must be positive, got %g", ErrInvalidConfig, c.AssumedRate)
	}
	if _, err := spectral.ParseMethod(string(c.Method)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := windowing.ParseType(string(c.Window)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := filters.ParseDetrendMode(string(c.Detrend)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := spectral.ParseBackend(string(c.FFTBackend)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ValidateTarget checks that a positive, finite target frequency is configured
func (c *EstimatorConfig) ValidateTarget() error {
	hz := c.TargetFrequency()
	if !(hz > 0) || math.IsInf(hz, 0) {
		return fmt.Errorf("%w: target frequency must be positive (bpm=%g, hz=%g)", ErrInvalidConfig, c.TargetBPM, c.TargetHz)
	}
	return nil
}

// Normalize replaces empty names with their defaults and canonicalizes case
func (c *EstimatorConfig) Normalize() error {
	method, err := spectral.ParseMethod(string(c.Method))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	window, err := windowing.ParseType(string(c.Window))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	detrend, err := filters.ParseDetrendMode(string(c.Detrend))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	backend, err := spectral.ParseBackend(string(c.FFTBackend))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.Method, c.Window, c.Detrend, c.FFTBackend = method, window, detrend, backend
	return nil
}
