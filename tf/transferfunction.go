// Package tf holds single-input single-output rational transfer functions
//
//	H(s) = N(s) / D(s)
//
// with coefficients stored in descending powers of s, and the factory that
// draws random, causal and stable ones.
package tf

import (
	"fmt"
	"math"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"gonum.org/v1/gonum/mat"
)

// TransferFunction is the parameter record of one grid cell. It is a plain
// value; once created it is never mutated by this module.
type TransferFunction struct {
	// Degree of the numerator polynomial
	OrderNum int `yaml:"order_num" json:"order_num"`
	// Degree of the denominator polynomial
	OrderDen int `yaml:"order_den" json:"order_den"`
	// Numerator coefficients, highest power first
	Num []float64 `yaml:"num" json:"num"`
	// Denominator coefficients, highest power first
	Den []float64 `yaml:"den" json:"den"`
}

// New returns the transfer function num/den. The coefficients are copied.
// It fails with errs.ErrInvalidConfiguration if the function is not proper or
// the leading denominator coefficient is zero.
func New(num, den []float64) (TransferFunction, error) {
	h := TransferFunction{
		OrderNum: len(num) - 1,
		OrderDen: len(den) - 1,
		Num:      append([]float64(nil), num...),
		Den:      append([]float64(nil), den...),
	}
	if err := h.Validate(); err != nil {
		return TransferFunction{}, err
	}
	return h, nil
}

// MustNew is New for fixtures known to be valid.
func MustNew(num, den []float64) TransferFunction {
	h, err := New(num, den)
	if err != nil {
		panic(err)
	}
	return h
}

// Validate checks the structural invariants of the record: the orders agree
// with the coefficient counts and the function is proper.
func (h TransferFunction) Validate() error {
	switch {
	case len(h.Num) == 0 || len(h.Den) == 0:
		return fmt.Errorf("%w: empty polynomial", errs.ErrInvalidConfiguration)
	case h.OrderNum != len(h.Num)-1:
		return fmt.Errorf("%w: order_num %d does not match %d numerator coefficients",
			errs.ErrInvalidConfiguration, h.OrderNum, len(h.Num))
	case h.OrderDen != len(h.Den)-1:
		return fmt.Errorf("%w: order_den %d does not match %d denominator coefficients",
			errs.ErrInvalidConfiguration, h.OrderDen, len(h.Den))
	case h.OrderNum > h.OrderDen:
		return fmt.Errorf("%w: improper transfer function, order_num %d > order_den %d",
			errs.ErrInvalidConfiguration, h.OrderNum, h.OrderDen)
	case h.Den[0] == 0:
		return fmt.Errorf("%w: leading denominator coefficient is zero", errs.ErrInvalidConfiguration)
	}
	return nil
}

// StrictlyProper reports whether the numerator degree is below the
// denominator degree, i.e. the realisation has no feedthrough.
func (h TransferFunction) StrictlyProper() bool {
	return h.OrderNum < h.OrderDen
}

// Poles returns the roots of the denominator.
func (h TransferFunction) Poles() []complex128 {
	return Roots(h.Den)
}

// Zeros returns the roots of the numerator.
func (h TransferFunction) Zeros() []complex128 {
	return Roots(h.Num)
}

// IsStable reports whether every pole lies strictly in the left half plane.
func (h TransferFunction) IsStable() bool {
	for _, p := range h.Poles() {
		if real(p) >= 0 {
			return false
		}
	}
	return true
}

// Evaluate returns H(s).
func (h TransferFunction) Evaluate(s complex128) complex128 {
	return PolyVal(h.Num, s) / PolyVal(h.Den, s)
}

// DCGain returns H(0). It is infinite for a pole at the origin.
func (h TransferFunction) DCGain() float64 {
	return real(h.Evaluate(0))
}

// FrequencyResponse returns H(j 2 pi f) for every frequency f in Hz.
func (h TransferFunction) FrequencyResponse(f []float64) []complex128 {
	res := make([]complex128, len(f))
	for index, freq := range f {
		res[index] = h.Evaluate(complex(0, 2*math.Pi*freq))
	}
	return res
}

// Roots returns the roots of the polynomial c (highest power first) as the
// eigenvalues of its companion matrix. Leading zeros are ignored.
func Roots(c []float64) []complex128 {
	for len(c) > 0 && c[0] == 0 {
		c = c[1:]
	}
	n := len(c) - 1
	if n < 1 {
		return nil
	}
	companion := mat.NewDense(n, n, nil)
	for col := 0; col < n; col++ {
		companion.Set(0, col, -c[col+1]/c[0])
	}
	for row := 1; row < n; row++ {
		companion.Set(row, row-1, 1)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return nil
	}
	return eig.Values(nil)
}

// PolyVal evaluates the polynomial c (highest power first) at s with
// Horner's scheme.
func PolyVal(c []float64, s complex128) complex128 {
	var res complex128
	for _, coef := range c {
		res = res*s + complex(coef, 0)
	}
	return res
}

// PolyFromRoots expands the monic polynomial whose roots are exactly the
// given real roots. The result has len(roots)+1 coefficients, highest power
// first, and starts with 1.
func PolyFromRoots(roots []float64) []float64 {
	c := make([]float64, 1, len(roots)+1)
	c[0] = 1
	for _, r := range roots {
		// multiply by (s - r)
		c = append(c, 0)
		for index := len(c) - 1; index > 0; index-- {
			c[index] -= r * c[index-1]
		}
	}
	return c
}
