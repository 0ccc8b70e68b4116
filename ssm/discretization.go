package ssm

import (
	"fmt"
	"math"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/gonumExtensions"
	"gonum.org/v1/gonum/mat"
)

// Discretization advances the state of a LinearStateSpaceModel exactly over
// one interval of length H, for an input that is linear between the two
// interval ends (first order hold):
//
//	x(t+H) = Ad x(t) + G0 u(t) + G1 u(t+H)
//
// Holding the input constant instead (zero order hold) uses
//
//	x(t+H) = Ad x(t) + Gamma u(t)
type Discretization struct {
	H     float64
	Ad    *mat.Dense
	G0    *mat.VecDense
	G1    *mat.VecDense
	Gamma *mat.VecDense
}

// Discretize computes the hold discretisation for the step h from the matrix
// exponential of the augmented system
//
//	[ A h  B h  0 ]
//	[ 0    0    1 ]
//	[ 0    0    0 ]
//
// whose state is (x, u(t), u(t+h) - u(t)).
func (model LinearStateSpaceModel) Discretize(h float64) (*Discretization, error) {
	if !(h > 0) || math.IsInf(h, 1) {
		return nil, fmt.Errorf("%w: non-positive step %v", errs.ErrInvalidInput, h)
	}
	n := model.StateSpaceOrder()
	augmented := mat.NewDense(n+2, n+2, nil)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			augmented.Set(row, col, model.A.At(row, col)*h)
		}
		augmented.Set(row, n, model.B.AtVec(row)*h)
	}
	augmented.Set(n, n+1, 1)

	var expM mat.Dense
	expM.Exp(augmented)
	if gonumExtensions.NANORINF(&expM) {
		return nil, fmt.Errorf("%w: discretisation for step %v is not finite", errs.ErrInvalidInput, h)
	}

	d := &Discretization{
		H:     h,
		Ad:    mat.DenseCopyOf(expM.Slice(0, n, 0, n)),
		G0:    mat.NewVecDense(n, nil),
		G1:    mat.NewVecDense(n, nil),
		Gamma: mat.NewVecDense(n, nil),
	}
	for row := 0; row < n; row++ {
		f0, f1 := expM.At(row, n), expM.At(row, n+1)
		d.Gamma.SetVec(row, f0)
		d.G0.SetVec(row, f0-f1)
		d.G1.SetVec(row, f1)
	}
	return d, nil
}

// StepFirstOrderHold writes Ad x + G0 uFrom + G1 uTo into dst. dst must not
// alias x.
func (d *Discretization) StepFirstOrderHold(dst, x *mat.VecDense, uFrom, uTo float64) {
	dst.MulVec(d.Ad, x)
	dst.AddScaledVec(dst, uFrom, d.G0)
	dst.AddScaledVec(dst, uTo, d.G1)
}

// StepZeroOrderHold writes Ad x + Gamma u into dst. dst must not alias x.
func (d *Discretization) StepZeroOrderHold(dst, x *mat.VecDense, u float64) {
	dst.MulVec(d.Ad, x)
	dst.AddScaledVec(dst, u, d.Gamma)
}
