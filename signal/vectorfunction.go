package signal

import (
	"fmt"
	"sort"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"gonum.org/v1/gonum/mat"
)

// VectorFunction is an input abstraction that instead of returning a scalar
// associates each argument with a vector valued output. For instance in the
// state space model:
//
//	x'(t) = A x(t) + B u(t)
//
// B u(t) is a vectorial function decomposed as a scalar function u(t) and a
// vector B of the state dimension.
type VectorFunction struct {
	U func(float64) float64
	B mat.Vector
}

// NewInput returns a VectorFunction initialised with u(t) and B
func NewInput(u func(float64) float64, B mat.Vector) VectorFunction {
	return VectorFunction{u, B}
}

// Bu is an alias in the state space model:
//
//	A x + B u(t)
func (vf VectorFunction) Bu(t float64) mat.Vector {
	return vf.Value(t)
}

// Value returns the vectorial function value
func (vf VectorFunction) Value(t float64) mat.Vector {
	var res mat.VecDense
	res.CloneFromVec(vf.B)
	res.ScaleVec(vf.U(t), &res)
	return &res
}

// Interpolate returns the piecewise linear function through the samples
// (t[k], u[k]). Outside [t[0], t[len-1]] the end values are held.
func Interpolate(t, u []float64) (func(float64) float64, error) {
	if err := ValidateTimeStamps(t); err != nil {
		return nil, err
	}
	if len(u) != len(t) {
		return nil, fmt.Errorf("%w: %d values for %d time stamps", errs.ErrDimensionMismatch, len(u), len(t))
	}
	last := len(t) - 1
	return func(x float64) float64 {
		switch {
		case x <= t[0]:
			return u[0]
		case x >= t[last]:
			return u[last]
		}
		// first index with t[k] >= x
		k := sort.SearchFloat64s(t, x)
		if t[k] == x {
			return u[k]
		}
		w := (x - t[k-1]) / (t[k] - t[k-1])
		return u[k-1] + w*(u[k]-u[k-1])
	}, nil
}
