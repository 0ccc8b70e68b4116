// Package simulate excites built MIMO systems with sampled input signals.
//
// A MIMO system is simulated as nr_outputs x nr_inputs independent SISO
// simulations from zero initial state, one per grid cell, and the
// contributions to each output are summed (superposition). Every channel of
// one call shares the same time stamps.
package simulate

import (
	"fmt"
	"math"
	"sync"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/gonumExtensions"
	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"github.com/HaoMAFRLu/toy-mimo-system/ode"
	"github.com/HaoMAFRLu/toy-mimo-system/signal"
	"github.com/HaoMAFRLu/toy-mimo-system/ssm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Method selects how a channel is advanced between two samples.
type Method int

const (
	// FirstOrderHold integrates exactly for an input that is linear between
	// samples.
	FirstOrderHold Method = iota
	// ZeroOrderHold integrates exactly for an input held at the left sample.
	ZeroOrderHold
	// RungeKutta integrates numerically with the configured integrator and
	// a linearly interpolated input.
	RungeKutta
)

func (m Method) String() string {
	switch m {
	case FirstOrderHold:
		return "foh"
	case ZeroOrderHold:
		return "zoh"
	case RungeKutta:
		return "rk"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod maps "foh", "zoh" and the Runge-Kutta names of ode.ByName to
// a method and, for the latter, its integrator.
func ParseMethod(name string) (Method, *ode.RungeKutta, error) {
	switch name {
	case "foh":
		return FirstOrderHold, nil, nil
	case "zoh":
		return ZeroOrderHold, nil, nil
	}
	rk, err := ode.ByName(name)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: simulation method %q", errs.ErrInvalidConfiguration, name)
	}
	return RungeKutta, rk, nil
}

const (
	// DefaultSubsteps is the number of Runge-Kutta steps per sample interval.
	DefaultSubsteps = 10

	// DefaultTolerance bounds the local error estimate of an embedded
	// Runge-Kutta step.
	DefaultTolerance = 1e-9

	// stepTolerance is the relative difference below which consecutive sample
	// intervals share one discretisation.
	stepTolerance = 1e-10
)

// Simulator excites built systems. Its configuration is read-only, so one
// Simulator may serve concurrent calls.
type Simulator struct {
	method     Method
	integrator *ode.RungeKutta
	substeps   int
	tolerance  float64
	parallel   bool
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithMethod selects the integration method.
func WithMethod(m Method) Option {
	return func(sim *Simulator) {
		sim.method = m
	}
}

// WithIntegrator selects Runge-Kutta integration with rk and substeps steps
// per sample interval.
func WithIntegrator(rk *ode.RungeKutta, substeps int) Option {
	return func(sim *Simulator) {
		sim.method = RungeKutta
		sim.integrator = rk
		sim.substeps = substeps
	}
}

// WithTolerance sets the local error bound of embedded integrators such as
// fehlberg45. Integrators without an error estimate ignore it.
func WithTolerance(tol float64) Option {
	return func(sim *Simulator) {
		sim.tolerance = tol
	}
}

// WithParallel runs the channels of a call in their own goroutines. The
// result is identical to the serial one.
func WithParallel(parallel bool) Option {
	return func(sim *Simulator) {
		sim.parallel = parallel
	}
}

// New returns a simulator, first order hold and serial unless configured
// otherwise.
func New(opts ...Option) *Simulator {
	sim := &Simulator{
		method:    FirstOrderHold,
		substeps:  DefaultSubsteps,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(sim)
	}
	if sim.integrator == nil {
		sim.integrator = ode.NewRK4()
	}
	if sim.substeps < 1 {
		sim.substeps = 1
	}
	if !(sim.tolerance > 0) {
		sim.tolerance = DefaultTolerance
	}
	return sim
}

// Method returns the configured integration method.
func (sim *Simulator) Method() Method {
	return sim.method
}

func (sim *Simulator) Tolerance() float64 {
	return sim.tolerance
}

// Excite is New().Excite.
func Excite(sys *mimo.System, U [][]float64, t []float64) ([][]float64, error) {
	return New().Excite(sys, U, t)
}

// ExciteChannel returns the zero-state response of one SISO model to the
// input u sampled at t.
func (sim *Simulator) ExciteChannel(model *ssm.LinearStateSpaceModel, u, t []float64) ([]float64, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: nil model", errs.ErrIllegalState)
	}
	if err := signal.ValidateTimeStamps(t); err != nil {
		return nil, err
	}
	if len(u) != len(t) {
		return nil, fmt.Errorf("%w: input has %d samples for %d time stamps", errs.ErrDimensionMismatch, len(u), len(t))
	}
	return sim.exciteChannel(model, u, t)
}

// exciteChannel assumes validated arguments.
func (sim *Simulator) exciteChannel(model *ssm.LinearStateSpaceModel, u, t []float64) ([]float64, error) {
	var (
		y   []float64
		err error
	)
	switch sim.method {
	case FirstOrderHold, ZeroOrderHold:
		y, err = sim.exciteHold(model, u, t)
	case RungeKutta:
		y, err = sim.exciteRungeKutta(model, u, t)
	default:
		return nil, fmt.Errorf("%w: unknown simulation method %v", errs.ErrInvalidConfiguration, sim.method)
	}
	if err != nil {
		return nil, err
	}
	if gonumExtensions.SliceNANORINF(y) {
		return nil, fmt.Errorf("%w: response is not finite", errs.ErrInvalidInput)
	}
	return y, nil
}

// exciteHold steps the exact hold discretisation. Intervals are discretised
// once per bit pattern, and an interval within stepTolerance of the previous
// one reuses its discretisation.
func (sim *Simulator) exciteHold(model *ssm.LinearStateSpaceModel, u, t []float64) ([]float64, error) {
	n := model.StateSpaceOrder()
	y := make([]float64, len(t))
	state := mat.NewVecDense(n, nil)
	next := mat.NewVecDense(n, nil)
	cache := make(map[uint64]*ssm.Discretization)
	var prev *ssm.Discretization

	y[0] = model.Output(state, u[0])
	for k := 0; k+1 < len(t); k++ {
		h := t[k+1] - t[k]
		key := math.Float64bits(h)
		d := cache[key]
		if d == nil && prev != nil && math.Abs(h-prev.H) <= stepTolerance*h {
			d = prev
		}
		if d == nil {
			var err error
			if d, err = model.Discretize(h); err != nil {
				return nil, err
			}
			cache[key] = d
		}
		prev = d
		if sim.method == ZeroOrderHold {
			d.StepZeroOrderHold(next, state, u[k])
		} else {
			d.StepFirstOrderHold(next, state, u[k], u[k+1])
		}
		state, next = next, state
		y[k+1] = model.Output(state, u[k+1])
	}
	return y, nil
}

func (sim *Simulator) exciteRungeKutta(model *ssm.LinearStateSpaceModel, u, t []float64) ([]float64, error) {
	input, err := signal.Interpolate(t, u)
	if err != nil {
		return nil, err
	}
	return sim.integrate(model.WithInput(input), t)
}

// integrate solves the driven SISO model sys from zero state and observes it
// at every time stamp. Embedded tableaus adapt their step to the tolerance,
// the others take a fixed number of substeps per interval.
func (sim *Simulator) integrate(sys ssm.StateSpaceModel, t []float64) ([]float64, error) {
	if sys.InputSpaceOrder() != 1 || sys.ObservationSpaceOrder() != 1 {
		return nil, fmt.Errorf("%w: model has %d inputs and %d outputs, want one of each",
			errs.ErrDimensionMismatch, sys.InputSpaceOrder(), sys.ObservationSpaceOrder())
	}
	y := make([]float64, len(t))
	state := mat.NewVecDense(sys.StateSpaceOrder(), nil)
	y[0] = sys.Observation(t[0], state).AtVec(0)
	for k := 0; k+1 < len(t); k++ {
		if sim.integrator.Adaptive() {
			if err := sim.integrator.AdaptiveCompute(t[k], t[k+1], sim.tolerance, state, sys); err != nil {
				return nil, fmt.Errorf("integrate [%g, %g]: %w", t[k], t[k+1], err)
			}
		} else {
			sim.integrator.Compute(t[k], t[k+1], sim.substeps, state, sys)
		}
		y[k+1] = sys.Observation(t[k+1], state).AtVec(0)
	}
	return y, nil
}

// validate checks the arguments of one excitation before any simulation
// work starts.
func validate(sys *mimo.System, U [][]float64, t []float64) error {
	if sys == nil {
		return fmt.Errorf("%w: nil system", errs.ErrIllegalState)
	}
	if st := sys.State(); st != mimo.Built && st != mimo.Excited {
		return fmt.Errorf("%w: system %q is %v, build it before exciting", errs.ErrIllegalState, sys.Name(), st)
	}
	if len(U) != sys.NumberOfInputs() {
		return fmt.Errorf("%w: %d input signals for %d inputs", errs.ErrDimensionMismatch, len(U), sys.NumberOfInputs())
	}
	if err := signal.ValidateTimeStamps(t); err != nil {
		return err
	}
	for row, u := range U {
		if len(u) != len(t) {
			return fmt.Errorf("%w: input %d has %d samples for %d time stamps", errs.ErrDimensionMismatch, row, len(u), len(t))
		}
	}
	return nil
}

// ExciteOutput returns output row of the system: the sum over all inputs j
// of the response of H[row][j] to U[j].
func (sim *Simulator) ExciteOutput(sys *mimo.System, row int, U [][]float64, t []float64) ([]float64, error) {
	if err := validate(sys, U, t); err != nil {
		return nil, err
	}
	if row < 0 || row >= sys.NumberOfOutputs() {
		return nil, fmt.Errorf("%w: output %d of %d", errs.ErrDimensionMismatch, row, sys.NumberOfOutputs())
	}
	res, err := sim.run(sys, []int{row}, U, t)
	if err != nil {
		return nil, err
	}
	if err := sys.MarkExcited(); err != nil {
		return nil, err
	}
	return res[0], nil
}

// Excite returns the nr_outputs x N response of the system to the
// nr_inputs x N input array U sampled at t. The result never aliases U.
func (sim *Simulator) Excite(sys *mimo.System, U [][]float64, t []float64) ([][]float64, error) {
	if err := validate(sys, U, t); err != nil {
		return nil, err
	}
	rows := make([]int, sys.NumberOfOutputs())
	for row := range rows {
		rows[row] = row
	}
	res, err := sim.run(sys, rows, U, t)
	if err != nil {
		return nil, err
	}
	if err := sys.MarkExcited(); err != nil {
		return nil, err
	}
	return res, nil
}

// run computes every channel of the requested output rows and then sums
// them in input order.
func (sim *Simulator) run(sys *mimo.System, rows []int, U [][]float64, t []float64) ([][]float64, error) {
	nrInputs := sys.NumberOfInputs()
	contributions := make([][][]float64, len(rows))
	failures := make([][]error, len(rows))
	for index := range rows {
		contributions[index] = make([][]float64, nrInputs)
		failures[index] = make([]error, nrInputs)
	}

	compute := func(index, col int) {
		model, err := sys.Model(rows[index], col)
		if err != nil {
			failures[index][col] = err
			return
		}
		contributions[index][col], failures[index][col] = sim.exciteChannel(model, U[col], t)
	}

	if sim.parallel {
		var wg sync.WaitGroup
		wg.Add(len(rows) * nrInputs)
		for index := range rows {
			for col := 0; col < nrInputs; col++ {
				go func(index, col int) {
					defer wg.Done()
					compute(index, col)
				}(index, col)
			}
		}
		// Wait until all input contributions have been computed
		wg.Wait()
	} else {
		for index := range rows {
			for col := 0; col < nrInputs; col++ {
				compute(index, col)
			}
		}
	}

	res := make([][]float64, len(rows))
	for index, row := range rows {
		for col := 0; col < nrInputs; col++ {
			if err := failures[index][col]; err != nil {
				return nil, fmt.Errorf("excite H_%d%d: %w", row, col, err)
			}
		}
		// Summarizes all contributions into the output
		res[index] = make([]float64, len(t))
		for col := 0; col < nrInputs; col++ {
			floats.Add(res[index], contributions[index][col])
		}
	}
	return res, nil
}
