package spectrum

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func naiveDFT(x []float64) []complex128 {
	n := len(x)
	res := make([]complex128, n)
	for k := range res {
		for index, v := range x {
			angle := -2 * math.Pi * float64(k*index) / float64(n)
			res[k] += complex(v, 0) * cmplx.Exp(complex(0, angle))
		}
	}
	return res
}

func TestRoundTrip(t *testing.T) {
	signal := [][]float64{
		{1, 2, 3, 4, 5, 6, 7, 8},
		{0.5, -1, 0.25, 3, -2, 7, 1},
		{1},
	}
	back := ToTime(ToFrequency(signal))
	require.Len(t, back, len(signal))
	for row := range signal {
		require.Len(t, back[row], len(signal[row]))
		for index := range signal[row] {
			assert.InDelta(t, signal[row][index], back[row][index], 1e-12)
		}
	}
}

func TestMatchesDefinition(t *testing.T) {
	x := []float64{0.3, -1.2, 2.5, 0, 4, -0.7}
	got := ToFrequency([][]float64{x})[0]
	want := naiveDFT(x)
	require.Len(t, got, len(want))
	for k := range want {
		assert.InDelta(t, real(want[k]), real(got[k]), 1e-10)
		assert.InDelta(t, imag(want[k]), imag(got[k]), 1e-10)
	}
}

func TestChannelsIndependent(t *testing.T) {
	a := []float64{1, 0, 0, 0}
	b := []float64{0, 1, 2, 3}
	both := ToFrequency([][]float64{a, b})
	alone := ToFrequency([][]float64{a})
	assert.Equal(t, alone[0], both[0])
	// An impulse has a flat spectrum.
	for _, v := range both[0] {
		assert.InDelta(t, 1, real(v), 1e-15)
		assert.InDelta(t, 0, imag(v), 1e-15)
	}
}

func TestEmpty(t *testing.T) {
	assert.Empty(t, ToFrequency(nil))
	assert.Equal(t, [][]complex128{{}}, ToFrequency([][]float64{{}}))
	assert.Equal(t, [][]float64{{}}, ToTime([][]complex128{{}}))
}

func TestFrequencies(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 2, -2, -1}, Frequencies(5, 5))
	assert.Equal(t, []float64{0, 25, -50, -25}, Frequencies(4, 100))
}
