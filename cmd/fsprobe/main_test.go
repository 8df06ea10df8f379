package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/fsprobe/algorithms/spectral"
	"github.com/RyanBlaney/fsprobe/algorithms/windowing"
	"github.com/RyanBlaney/fsprobe/dataset"
	"github.com/RyanBlaney/fsprobe/estimator"
	"github.com/RyanBlaney/fsprobe/logging"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	m.Run()
}

func writeRecording(t *testing.T, dir, name string, n int, freq float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("frame,signal\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%.9f\n", i, math.Sin(2*math.Pi*freq*float64(i)))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func ptr[T any](v T) *T { return &v }

func TestBuildConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"estimator": {"target_bpm": 60, "segment_length": 512}}`), 0o644))

	cfg, err := buildConfig(&cliArgs{
		Config:   path,
		BPM:      71,
		BandHigh: ptr(0.2),
		Window:   "Hamming",
		Pattern:  "rec/*.csv",
		NoHeader: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 71.0, cfg.Estimator.TargetBPM)
	assert.Equal(t, 512, cfg.Estimator.SegmentLength)
	assert.Equal(t, [2]float64{0.01, 0.2}, cfg.Estimator.Band)
	assert.Equal(t, windowing.TypeHamming, cfg.Estimator.Window)
	assert.Equal(t, spectral.MethodWelch, cfg.Estimator.Method)
	assert.Equal(t, "rec/*.csv", cfg.Input.Pattern)
	assert.False(t, cfg.Input.HasHeader)
}

func TestBuildConfigBPMFlagOverridesFileHz(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"estimator": {"target_hz": 2}}`), 0o644))

	cfg, err := buildConfig(&cliArgs{Config: path, BPM: 71})
	require.NoError(t, err)
	assert.InDelta(t, 71.0/60.0, cfg.Estimator.TargetFrequency(), 1e-5)

	cfg, err = buildConfig(&cliArgs{Config: path, BPM: 71, Hz: 1.5})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, cfg.Estimator.TargetFrequency(), 1e-9)
}

func TestBuildConfigRejectsUnknownNames(t *testing.T) {
	_, err := buildConfig(&cliArgs{Method: "burg"})
	assert.Error(t, err)
}

func TestRunDiscoversFirstFile(t *testing.T) {
	dir := t.TempDir()
	writeRecording(t, dir, "b.csv", 2048, 0.08)
	writeRecording(t, dir, "a.csv", 2048, 0.05)
	plotPath := filepath.Join(dir, "psd.png")

	err := run(&cliArgs{
		Hz:      1.183,
		Pattern: filepath.Join(dir, "*.csv"),
		Plot:    plotPath,
	})
	require.NoError(t, err)

	info, err := os.Stat(plotPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunStageErrors(t *testing.T) {
	dir := t.TempDir()

	err := run(&cliArgs{BPM: 71, Pattern: filepath.Join(dir, "*.csv")})
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrNoFilesFound)
	assert.True(t, strings.HasPrefix(err.Error(), "discover:"))

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("t,v\n0,x\n"), 0o644))
	err = run(&cliArgs{BPM: 71, Input: bad})
	assert.ErrorIs(t, err, dataset.ErrParse)
	assert.True(t, strings.HasPrefix(err.Error(), "load:"))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("t,v\n"), 0o644))
	err = run(&cliArgs{BPM: 71, Input: empty})
	assert.ErrorIs(t, err, estimator.ErrInvalidInput)

	good := writeRecording(t, dir, "good.csv", 256, 0.05)
	err = run(&cliArgs{BPM: 71, Input: good, BandLow: ptr(0.2), BandHigh: ptr(0.2)})
	assert.ErrorIs(t, err, estimator.ErrNoPeakFound)

	err = run(&cliArgs{Input: good})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--bpm")

	err = run(&cliArgs{BPM: 71, Input: good, LogLevel: "loud"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "config:"))
	assert.Contains(t, err.Error(), `"loud"`)
}
