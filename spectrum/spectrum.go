// Package spectrum converts channel x time arrays to and from the frequency
// domain. Each channel (row) is transformed on its own.
package spectrum

import (
	"github.com/mjibson/go-dsp/fft"
)

// ToFrequency returns the discrete Fourier transform of every row of signal.
// Row lengths need not be powers of two.
func ToFrequency(signal [][]float64) [][]complex128 {
	res := make([][]complex128, len(signal))
	for row, x := range signal {
		if len(x) == 0 {
			res[row] = []complex128{}
			continue
		}
		res[row] = fft.FFTReal(x)
	}
	return res
}

// ToTime returns the inverse discrete Fourier transform of every row of
// spectrum. Imaginary parts left over from rounding are discarded.
func ToTime(spectrum [][]complex128) [][]float64 {
	res := make([][]float64, len(spectrum))
	for row, X := range spectrum {
		if len(X) == 0 {
			res[row] = []float64{}
			continue
		}
		x := fft.IFFT(X)
		res[row] = make([]float64, len(x))
		for index, v := range x {
			res[row][index] = real(v)
		}
	}
	return res
}

// Frequencies returns the frequency in Hz of each bin of an n point
// transform at sample rate fs, with the negative frequencies in the upper
// half.
func Frequencies(n int, fs float64) []float64 {
	res := make([]float64, n)
	for index := range res {
		k := index
		if index > (n-1)/2 {
			k = index - n
		}
		res[index] = float64(k) * fs / float64(n)
	}
	return res
}
