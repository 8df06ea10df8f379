package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetrendConstant(t *testing.T) {
	d, err := NewDetrender(DetrendConstant)
	require.NoError(t, err)
	assert.Equal(t, DetrendConstant, d.Mode())

	out := d.Process([]float64{1, 2, 3, 6})
	assert.InDeltaSlice(t, []float64{-2, -1, 0, 3}, out, 1e-12)
}

func TestDetrendLinearRemovesRamp(t *testing.T) {
	d, err := NewDetrender(DetrendLinear)
	require.NoError(t, err)

	seg := make([]float64, 32)
	for i := range seg {
		seg[i] = 5 + 0.25*float64(i)
	}
	d.ProcessInPlace(seg)
	for i, v := range seg {
		assert.InDelta(t, 0.0, v, 1e-9, "index %d", i)
	}

	// abscissa is rebuilt when the length changes
	short := []float64{1, 3, 5}
	d.ProcessInPlace(short)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, short, 1e-9)
}

func TestDetrendNoneLeavesInput(t *testing.T) {
	d, err := NewDetrender(DetrendNone)
	require.NoError(t, err)

	in := []float64{4, 4, 4}
	out := d.Process(in)
	assert.Equal(t, in, out)
}

func TestDetrendEdgeCases(t *testing.T) {
	d, err := NewDetrender(DetrendLinear)
	require.NoError(t, err)
	d.ProcessInPlace(nil)

	one := []float64{7}
	d.ProcessInPlace(one)
	assert.Equal(t, []float64{0}, one)

	_, err = NewDetrender("quadratic")
	assert.Error(t, err)
}

func TestParseDetrendMode(t *testing.T) {
	m, err := ParseDetrendMode("")
	require.NoError(t, err)
	assert.Equal(t, DetrendConstant, m)

	m, err = ParseDetrendMode("LINEAR")
	require.NoError(t, err)
	assert.Equal(t, DetrendLinear, m)

	m, err = ParseDetrendMode("off")
	require.NoError(t, err)
	assert.Equal(t, DetrendNone, m)

	_, err = ParseDetrendMode("wavelet")
	assert.Error(t, err)
}
