// Package filters holds the per-segment conditioning applied before a
// segment is windowed and transformed.
package filters

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DetrendMode selects what is removed from each segment
type DetrendMode string

const (
	DetrendNone     DetrendMode = "none"
	DetrendConstant DetrendMode = "constant" // subtract the segment mean
	DetrendLinear   DetrendMode = "linear"   // subtract the least-squares line
)

// ParseDetrendMode resolves a detrend name; the empty string means constant.
func ParseDetrendMode(name string) (DetrendMode, error) {
	switch m := DetrendMode(strings.ToLower(strings.TrimSpace(name))); m {
	case DetrendNone, DetrendConstant, DetrendLinear:
		return m, nil
	case "":
		return DetrendConstant, nil
	case "false", "off":
		return DetrendNone, nil
	default:
		return "", fmt.Errorf("unknown detrend mode %q", name)
	}
}

// Detrender removes a trend from fixed-length segments. The abscissa used by
// the linear fit is cached per length.
type Detrender struct {
	mode     DetrendMode
	abscissa []float64
}

// NewDetrender creates a detrender for the given mode
func NewDetrender(mode DetrendMode) (*Detrender, error) {
	switch mode {
	case DetrendNone, DetrendConstant, DetrendLinear:
	default:
		return nil, fmt.Errorf("unknown detrend mode %q", mode)
	}
	return &Detrender{mode: mode}, nil
}

// Mode returns the detrend mode
func (d *Detrender) Mode() DetrendMode {
	return d.mode
}

// ProcessInPlace detrends segment in place
func (d *Detrender) ProcessInPlace(segment []float64) {
	if len(segment) == 0 {
		return
	}

	switch d.mode {
	case DetrendConstant:
		floats.AddConst(-stat.Mean(segment, nil), segment)

	case DetrendLinear:
		if len(segment) < 2 {
			segment[0] = 0
			return
		}
		x := d.xs(len(segment))
		alpha, beta := stat.LinearRegression(x, segment, nil, false)
		for i := range segment {
			segment[i] -= alpha + beta*x[i]
		}
	}
}

// Process returns a detrended copy of segment
func (d *Detrender) Process(segment []float64) []float64 {
	out := make([]float64, len(segment))
	copy(out, segment)
	d.ProcessInPlace(out)
	return out
}

func (d *Detrender) xs(n int) []float64 {
	if len(d.abscissa) != n {
		d.abscissa = make([]float64, n)
		floats.Span(d.abscissa, 0, float64(n-1))
	}
	return d.abscissa
}
