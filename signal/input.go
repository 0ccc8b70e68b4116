package signal

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// TimeStamps returns the grid t0, t0+1/fs, ... up to and including t1 (to
// within rounding of (t1-t0)*fs).
func TimeStamps(t0, t1, fs float64) ([]float64, error) {
	if fs <= 0 || math.IsNaN(fs) || math.IsInf(fs, 0) {
		return nil, fmt.Errorf("%w: sample rate %v", errs.ErrInvalidInput, fs)
	}
	if !(t1 > t0) {
		return nil, fmt.Errorf("%w: end time %v not after start time %v", errs.ErrInvalidInput, t1, t0)
	}
	n := int(math.Round((t1-t0)*fs)) + 1
	t := make([]float64, n)
	for index := range t {
		t[index] = t0 + float64(index)/fs
	}
	return t, nil
}

// Zeros returns n zero samples.
func Zeros(n int) []float64 {
	return make([]float64, n)
}

// Step returns amplitude for every t >= onset and zero before.
func Step(t []float64, onset, amplitude float64) []float64 {
	res := make([]float64, len(t))
	for index, v := range t {
		if v >= onset {
			res[index] = amplitude
		}
	}
	return res
}

// Sine returns amplitude * sin(2 pi frequency t + phase).
func Sine(t []float64, amplitude, frequency, phase float64) []float64 {
	res := make([]float64, len(t))
	for index, v := range t {
		res[index] = amplitude * math.Sin(2*math.Pi*frequency*v+phase)
	}
	return res
}

// Multisine returns the sum of unit sines at the given frequencies with
// phases drawn uniformly from [0, 2 pi), scaled so that the peak amplitude is
// at most amplitude.
func Multisine(rnd *rand.Rand, t []float64, frequencies []float64, amplitude float64) []float64 {
	phase := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rnd}
	res := make([]float64, len(t))
	if len(res) == 0 {
		return res
	}
	for _, f := range frequencies {
		floats.Add(res, Sine(t, 1, f, phase.Rand()))
	}
	if peak := math.Max(floats.Max(res), -floats.Min(res)); peak > 0 {
		floats.Scale(amplitude/peak, res)
	}
	return res
}

// Repeat returns rows copies of x, an input array for a system whose inputs
// are all driven by the same signal.
func Repeat(x []float64, rows int) [][]float64 {
	res := make([][]float64, rows)
	for row := range res {
		res[row] = append([]float64(nil), x...)
	}
	return res
}

// Combine returns a*U1 + b*U2 element-wise. The arrays must have equal
// shapes.
func Combine(a float64, u1 [][]float64, b float64, u2 [][]float64) ([][]float64, error) {
	if len(u1) != len(u2) {
		return nil, fmt.Errorf("%w: %d rows and %d rows", errs.ErrDimensionMismatch, len(u1), len(u2))
	}
	res := make([][]float64, len(u1))
	for row := range u1 {
		if len(u1[row]) != len(u2[row]) {
			return nil, fmt.Errorf("%w: row %d has %d and %d columns", errs.ErrDimensionMismatch, row, len(u1[row]), len(u2[row]))
		}
		res[row] = make([]float64, len(u1[row]))
		floats.AddScaledTo(res[row], res[row], a, u1[row])
		floats.AddScaled(res[row], b, u2[row])
	}
	return res, nil
}
