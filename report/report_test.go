package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/fsprobe/algorithms/spectral"
	"github.com/RyanBlaney/fsprobe/estimator"
)

func sampleResult() *estimator.Result {
	return &estimator.Result{
		PeakFrequency: 0.0498046875,
		PeakPower:     12.5,
		PeakBin:       51,
		TargetHz:      71.0 / 60,
		TargetBPM:     71,
		SampleRate:    (71.0 / 60) / 0.0498046875,
		Resolution:    1.0 / 1024,
		ErrorBound:    0.46,
		SegmentLength: 1024,
		Segments:      7,
		Band:          estimator.Band{Low: 0.01, High: 0.1},
		PSD: &spectral.PSD{
			Freqs:         []float64{0, 0.025, 0.05, 0.075, 0.1, 0.125},
			Power:         []float64{0.1, 1, 12.5, 2, 0.5, 0.1},
			SampleRate:    1,
			SegmentLength: 10,
			Segments:      1,
			Method:        spectral.MethodWelch,
		},
	}
}

func TestConsoleReportFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf, false).Report(sampleResult(), "data/a.csv"))

	assert.Equal(t,
		"Detected Resp Peak (norm): 0.04980 cycles/sample\n"+
			"Target Resp Frequency: 1.18333 Hz (71 BPM)\n"+
			"Calculated Correct FS: 23.76 FPS\n",
		buf.String())
}

func TestConsoleReportWithoutBPM(t *testing.T) {
	r := sampleResult()
	r.TargetBPM = 0
	r.TargetHz = 1.183

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf, false).Report(r, ""))
	assert.Contains(t, buf.String(), "Target Resp Frequency: 1.18300 Hz\n")
}

func TestConsoleReportVerbose(t *testing.T) {
	r := sampleResult()
	r.AssumedRate = 60
	r.ApparentHz = r.PeakFrequency * 60
	r.CorrectionFactor = r.SampleRate / 60

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf, true).Report(r, "data/a.csv"))

	out := buf.String()
	assert.Contains(t, out, "Source: data/a.csv")
	assert.Contains(t, out, "Search band: (0.01, 0.1) cycles/sample")
	assert.Contains(t, out, "Segments: 7 x 1024 samples")
	assert.Contains(t, out, "Uncertainty: +/- 0.46 FPS")
	assert.Contains(t, out, "Apparent peak at 60.00 FPS: 2.98828 Hz")
	assert.Contains(t, out, "Correction factor: 0.3960")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestConsoleReportErrors(t *testing.T) {
	assert.Error(t, NewConsole(&bytes.Buffer{}, false).Report(nil, ""))
	assert.Error(t, NewConsole(failingWriter{}, false).Report(sampleResult(), ""))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 51.0, decoded["peak_bin"])
	assert.Equal(t, 71.0, decoded["target_bpm"])
	assert.NotContains(t, decoded, "PSD")
	assert.NotContains(t, decoded, "assumed_rate")
}

func TestPlotPSD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "psd.png")
	require.NoError(t, PlotPSD(sampleResult(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlotPSDErrors(t *testing.T) {
	r := sampleResult()
	r.PSD = nil
	assert.Error(t, PlotPSD(r, filepath.Join(t.TempDir(), "psd.png")))
	assert.Error(t, PlotPSD(sampleResult(), filepath.Join(t.TempDir(), "psd.unknown")))
}
