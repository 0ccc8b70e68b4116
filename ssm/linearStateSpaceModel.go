package ssm

import (
	"fmt"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/gonumExtensions"
	"github.com/HaoMAFRLu/toy-mimo-system/signal"
	"github.com/HaoMAFRLu/toy-mimo-system/tf"
	"gonum.org/v1/gonum/mat"
)

// LinearStateSpaceModel struct represent the single-input single-output
// system
//
//	x'(t) = A x(t) + B u(t)
//	y(t)  = C x(t) + D u(t)
//
// Input is the optional scalar input u(t) attached to B, used when the model
// is integrated as an ordinary differential equation. Without it the model is
// autonomous.
type LinearStateSpaceModel struct {
	// State dynamics
	A *mat.Dense
	// Input vector
	B *mat.VecDense
	// Observation row
	C *mat.Dense
	// Feedthrough
	D float64
	// List of input functions
	Input []signal.VectorFunction
}

// NewLinearStateSpaceModel creates a new linear state space model and checks
// that the dimensions agree.
func NewLinearStateSpaceModel(A *mat.Dense, B *mat.VecDense, C *mat.Dense, D float64) (*LinearStateSpaceModel, error) {
	m, n := A.Dims()
	mC, nC := C.Dims()
	if m != n || B.Len() != m || mC != 1 || nC != m {
		return nil, fmt.Errorf("%w: A is %dx%d, B has %d rows, C is %dx%d",
			errs.ErrDimensionMismatch, m, n, B.Len(), mC, nC)
	}
	return &LinearStateSpaceModel{A: A, B: B, C: C, D: D}, nil
}

// FromTransferFunction realises h in controllable canonical form. The
// denominator is normalised to be monic; a biproper h yields a non-zero
// feedthrough D.
func FromTransferFunction(h tf.TransferFunction) (*LinearStateSpaceModel, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	n := h.OrderDen
	if n < 1 {
		return nil, fmt.Errorf("%w: static gain %v has no state", errs.ErrInvalidConfiguration, h)
	}
	lead := h.Den[0]
	a := make([]float64, n+1)
	for index, coef := range h.Den {
		a[index] = coef / lead
	}
	// numerator padded to n+1 coefficients
	b := make([]float64, n+1)
	for index, coef := range h.Num {
		b[n-h.OrderNum+index] = coef / lead
	}

	A := gonumExtensions.Eye(n, n, -1)
	for col := 0; col < n; col++ {
		A.Set(0, col, -a[col+1])
	}
	B := mat.NewVecDense(n, nil)
	B.SetVec(0, 1)
	C := mat.NewDense(1, n, nil)
	for col := 0; col < n; col++ {
		C.Set(0, col, b[col+1]-b[0]*a[col+1])
	}
	return &LinearStateSpaceModel{A: A, B: B, C: C, D: b[0]}, nil
}

// WithInput returns a copy of the model driven by u(t) through B. The
// matrices are shared, they are never mutated.
func (model LinearStateSpaceModel) WithInput(u func(float64) float64) *LinearStateSpaceModel {
	model.Input = []signal.VectorFunction{signal.NewInput(u, model.B)}
	return &model
}

// Derivative returns the state derivative.
//
//	x'(t) = A x(t) + B u(t)
//
// where state = x(t) at an arbitrary time t.
func (model LinearStateSpaceModel) Derivative(t float64, state mat.Vector) mat.Vector {
	var tmpState mat.VecDense
	// Compute state transition
	//  A x(t)
	tmpState.MulVec(model.A, state)
	for _, input := range model.Input {
		tmpState.AddVec(&tmpState, input.Bu(t))
	}
	return &tmpState
}

// Observation returns the observed state
//
//	y(t) = C x(t) + D u(t)
func (model LinearStateSpaceModel) Observation(t float64, state mat.Vector) mat.Vector {
	res := mat.NewVecDense(1, nil)
	res.MulVec(model.C, state)
	for _, input := range model.Input {
		res.SetVec(0, res.AtVec(0)+model.D*input.U(t))
	}
	return res
}

// Output returns the scalar C x + D u.
func (model LinearStateSpaceModel) Output(state mat.Vector, u float64) float64 {
	return mat.Dot(model.C.RowView(0), state) + model.D*u
}

func (model LinearStateSpaceModel) StateSpaceOrder() int {
	m, _ := model.A.Dims()
	return m
}

func (model LinearStateSpaceModel) ObservationSpaceOrder() int {
	return 1
}

func (model LinearStateSpaceModel) InputSpaceOrder() int {
	return 1
}

// DCGain returns the steady state gain -C A^-1 B + D.
func (model LinearStateSpaceModel) DCGain() (float64, error) {
	var x mat.VecDense
	if err := x.SolveVec(model.A, model.B); err != nil {
		return 0, fmt.Errorf("%w: singular state matrix: %v", errs.ErrInvalidConfiguration, err)
	}
	return -mat.Dot(model.C.RowView(0), &x) + model.D, nil
}
