package windowing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHannPeriodicMatchesDFTEvenForm(t *testing.T) {
	w, err := New(TypeHann, 8, false)
	require.NoError(t, err)

	assert.Equal(t, 8, w.GetSize())
	assert.Equal(t, TypeHann, w.GetType())

	coeffs := w.GetCoefficients()
	require.Len(t, coeffs, 8)
	assert.InDelta(t, 0.0, coeffs[0], 1e-12)
	assert.InDelta(t, 1.0, coeffs[4], 1e-12)
	// periodic form is not symmetric about the last sample
	assert.InDelta(t, coeffs[1], coeffs[7], 1e-12)
	// sum(w^2) for a periodic Hann of length N is 3N/8
	assert.InDelta(t, 3.0, w.PowerSum(), 1e-12)
}

func TestSymmetricWindowsEndpoints(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeBartlett} {
		w, err := New(typ, 9, true)
		require.NoError(t, err)
		coeffs := w.GetCoefficients()
		assert.InDelta(t, 0.0, coeffs[0], 1e-12, string(typ))
		assert.InDelta(t, 0.0, coeffs[8], 1e-12, string(typ))
		assert.InDelta(t, 1.0, coeffs[4], 1e-12, string(typ))
	}
}

func TestAllTypesFiniteAndBounded(t *testing.T) {
	for _, typ := range Types() {
		for _, symmetric := range []bool{true, false} {
			w, err := New(typ, 64, symmetric)
			require.NoError(t, err)
			for i, c := range w.GetCoefficients() {
				require.False(t, math.IsNaN(c), "%s[%d]", typ, i)
				assert.LessOrEqual(t, c, 1.0+1e-12, "%s[%d]", typ, i)
				assert.GreaterOrEqual(t, c, -1e-12, "%s[%d]", typ, i)
			}
		}
	}
}

func TestSingleSampleWindow(t *testing.T) {
	w, err := New(TypeHann, 1, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0}, w.GetCoefficients())
}

func TestApply(t *testing.T) {
	w, err := New(TypeRectangular, 4, false)
	require.NoError(t, err)

	sig := []float64{1, 2, 3, 4}
	assert.Equal(t, sig, w.Apply(sig))
	assert.Nil(t, w.Apply([]float64{1, 2}))
	assert.Error(t, w.ApplyInPlace([]float64{1}))

	h, err := New(TypeHann, 4, false)
	require.NoError(t, err)
	buf := []float64{1, 1, 1, 1}
	require.NoError(t, h.ApplyInPlace(buf))
	assert.InDeltaSlice(t, h.GetCoefficients(), buf, 1e-12)
}

func TestParseType(t *testing.T) {
	typ, err := ParseType(" Hamming ")
	require.NoError(t, err)
	assert.Equal(t, TypeHamming, typ)

	typ, err = ParseType("boxcar")
	require.NoError(t, err)
	assert.Equal(t, TypeRectangular, typ)

	typ, err = ParseType("")
	require.NoError(t, err)
	assert.Equal(t, TypeHann, typ)

	_, err = ParseType("kaiser")
	assert.Error(t, err)

	_, err = New(TypeHann, 0, false)
	assert.Error(t, err)
}

func TestGoDSPFunc(t *testing.T) {
	for _, typ := range Types() {
		fn, err := GoDSPFunc(typ)
		require.NoError(t, err)
		assert.Len(t, fn(16), 16)
	}
	_, err := GoDSPFunc("nope")
	assert.Error(t, err)
}
