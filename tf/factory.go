package tf

import (
	"fmt"
	"math/rand/v2"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultOrderMax is the highest numerator order drawn when nothing else
	// is configured.
	DefaultOrderMax = 3

	coefficientMin = -1.
	coefficientMax = 1.

	poleMagnitudeMin = 0.1
	poleMagnitudeMax = 5.0

	// pcgStream is the second PCG word used by NewRand.
	pcgStream uint64 = 0xda3e39cb94b95bdb
)

// NewRand returns a deterministic pseudo-random generator for seed. Two
// generators built from the same seed produce the same stream.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgStream))
}

// Factory draws random transfer functions that are causal and stable by
// construction. It owns its random source; a Factory is not safe for
// concurrent use.
type Factory struct {
	orderMax    int
	rnd         *rand.Rand
	coefficient distuv.Uniform
	poleMag     distuv.Uniform
}

// NewFactory returns a factory drawing orders up to orderMax from rnd.
func NewFactory(orderMax int, rnd *rand.Rand) (*Factory, error) {
	if orderMax < 1 {
		return nil, fmt.Errorf("%w: order_max must be at least 1, got %d", errs.ErrInvalidConfiguration, orderMax)
	}
	if rnd == nil {
		return nil, fmt.Errorf("%w: nil random source", errs.ErrInvalidConfiguration)
	}
	return &Factory{
		orderMax:    orderMax,
		rnd:         rnd,
		coefficient: distuv.Uniform{Min: coefficientMin, Max: coefficientMax, Src: rnd},
		poleMag:     distuv.Uniform{Min: poleMagnitudeMin, Max: poleMagnitudeMax, Src: rnd},
	}, nil
}

// NewSeededFactory is NewFactory with a generator built by NewRand(seed).
func NewSeededFactory(orderMax int, seed uint64) (*Factory, error) {
	return NewFactory(orderMax, NewRand(seed))
}

// Synthesize draws one transfer function from rnd. It is the one-shot form
// of Factory.Synthesize.
func Synthesize(orderMax int, rnd *rand.Rand) (TransferFunction, error) {
	f, err := NewFactory(orderMax, rnd)
	if err != nil {
		return TransferFunction{}, err
	}
	return f.Synthesize(), nil
}

// OrderMax returns the configured maximum numerator order.
func (f *Factory) OrderMax() int {
	return f.orderMax
}

// Synthesize draws the orders, then the numerator coefficients, then the
// poles, in that order.
func (f *Factory) Synthesize() TransferFunction {
	orderNum, orderDen := f.Orders()
	return TransferFunction{
		OrderNum: orderNum,
		OrderDen: orderDen,
		Num:      f.Numerator(orderNum),
		Den:      f.Denominator(orderDen),
	}
}

// Orders draws orderNum uniformly from [1, orderMax] and orderDen uniformly
// from [orderNum, orderMax+1], so the result is always proper.
func (f *Factory) Orders() (orderNum, orderDen int) {
	orderNum = f.randomOrder(1, f.orderMax)
	orderDen = f.randomOrder(orderNum, f.orderMax+1)
	return orderNum, orderDen
}

// randomOrder returns an integer in [lo, hi].
func (f *Factory) randomOrder(lo, hi int) int {
	return lo + f.rnd.IntN(hi-lo+1)
}

// Numerator draws order+1 coefficients uniformly from [-1, 1]. Zeros may lie
// anywhere.
func (f *Factory) Numerator(order int) []float64 {
	num := make([]float64, order+1)
	for index := range num {
		num[index] = f.coefficient.Rand()
	}
	return num
}

// Denominator draws order pole magnitudes from [0.1, 5], places the poles on
// the negative real axis and returns the monic polynomial with exactly those
// roots.
func (f *Factory) Denominator(order int) []float64 {
	poles := make([]float64, order)
	for index := range poles {
		poles[index] = -f.poleMag.Rand()
	}
	return PolyFromRoots(poles)
}
