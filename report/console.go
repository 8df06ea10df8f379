// Package report renders estimation results for people: console text, JSON,
// and an optional PSD plot.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/RyanBlaney/fsprobe/estimator"
)

// Console prints results in the fixed three-line format, optionally followed
// by diagnostic details.
type Console struct {
	w       io.Writer
	verbose bool
}

// NewConsole creates a console reporter writing to w
func NewConsole(w io.Writer, verbose bool) *Console {
	return &Console{w: w, verbose: verbose}
}

// Report writes result. source names the input file and is shown in verbose mode.
func (c *Console) Report(result *estimator.Result, source string) error {
	if result == nil {
		return fmt.Errorf("nil result")
	}

	ew := &errWriter{w: c.w}
	ew.printf("Detected Resp Peak (norm): %.5f cycles/sample\n", result.PeakFrequency)
	if result.TargetBPM > 0 {
		ew.printf("Target Resp Frequency: %.5f Hz (%g BPM)\n", result.TargetHz, result.TargetBPM)
	} else {
		ew.printf("Target Resp Frequency: %.5f Hz\n", result.TargetHz)
	}
	ew.printf("Calculated Correct FS: %.2f FPS\n", result.SampleRate)

	if c.verbose {
		ew.printf("\n")
		if source != "" {
			ew.printf("Source: %s\n", source)
		}
		ew.printf("Search band: %s cycles/sample\n", result.Band)
		ew.printf("Segments: %d x %d samples (resolution %.6f cycles/sample)\n",
			result.Segments, result.SegmentLength, result.Resolution)
		ew.printf("Peak bin: %d (power %.4g, prominence %.1f, band flatness %.3f)\n",
			result.PeakBin, result.PeakPower, result.Prominence, result.BandFlatness)
		ew.printf("Uncertainty: +/- %.2f FPS\n", result.ErrorBound)
		if result.AssumedRate > 0 {
			ew.printf("Apparent peak at %.2f FPS: %.5f Hz (%.1f BPM)\n",
				result.AssumedRate, result.ApparentHz, result.ApparentHz*60)
			ew.printf("Correction factor: %.4f\n", result.CorrectionFactor)
		}
	}

	return ew.err
}

// JSON writes result as indented JSON
func JSON(w io.Writer, result *estimator.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
