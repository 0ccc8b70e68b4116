// Package ode is an ordinary differential equation library that implements
// explicit Runge-Kutta methods https://en.wikipedia.org/wiki/Runge–Kutta_methods.
// Systems are described by their derivative, e.g. a state space model from
// the ssm package with an input attached.
package ode

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNoConvergence is returned when the adaptive integration cannot meet the
// error tolerance within its iteration budget.
var ErrNoConvergence = errors.New("adaptive Runge-Kutta does not converge")

// maxNumberOfIterations bounds the interval halvings of AdaptiveCompute.
const maxNumberOfIterations int = 10000

type DifferentiableSystem interface {
	Derivative(t float64, state mat.Vector) mat.Vector
}

// RungeKutta holds the butcherTableau which describes the Runge Kutta method.
type RungeKutta struct {
	Description butcherTableau
}

// butcherTableau which describes the approximate solution, see https://en.wikipedia.org/wiki/Runge–Kutta_methods.
type butcherTableau struct {
	name             string
	stages           int
	weights          [][]float64
	nodes            []float64
	rungeKuttaMatrix [][]float64
}

// Name returns the method name.
func (rk RungeKutta) Name() string {
	return rk.Description.name
}

// Stages returns the number of derivative evaluations per step.
func (rk RungeKutta) Stages() int {
	return rk.Description.stages
}

// Adaptive reports whether the tableau carries an embedded error estimate.
func (rk RungeKutta) Adaptive() bool {
	return len(rk.Description.weights) == 2
}

// Step advances value from t = from to t = to in a single step. When the
// tableau is embedded the local error estimate is returned, otherwise nil.
func (rk RungeKutta) Step(from, to float64, value *mat.VecDense, system DifferentiableSystem) *mat.VecDense {
	var tempV mat.VecDense
	// The precomputed derivative points
	K := make([]mat.Vector, rk.Description.stages)
	// Step length
	h := to - from
	for index := range K {
		// Compute the relevant vector by combining previously computed derivative points
		// according to Butcher Tableau.
		tempV.CloneFromVec(value)
		for index2, a := range rk.Description.rungeKuttaMatrix[index] {
			tempV.AddScaledVec(&tempV, h*a, K[index2])
		}
		K[index] = system.Derivative(from+h*rk.Description.nodes[index], &tempV)
	}

	var errVec *mat.VecDense
	if rk.Adaptive() {
		errVec = mat.NewVecDense(value.Len(), nil)
	}
	// Sum up the different contributions with relevant weights.
	for index, k := range K {
		value.AddScaledVec(value, h*rk.Description.weights[0][index], k)
		if errVec != nil {
			errVec.AddScaledVec(errVec, h*(rk.Description.weights[1][index]-rk.Description.weights[0][index]), k)
		}
	}
	return errVec
}

// Compute integrates value from t = from to t = to with steps equally sized
// steps.
func (rk RungeKutta) Compute(from, to float64, steps int, value *mat.VecDense, system DifferentiableSystem) {
	if steps < 1 {
		steps = 1
	}
	h := (to - from) / float64(steps)
	for index := 0; index < steps; index++ {
		t0 := from + float64(index)*h
		t1 := t0 + h
		if index == steps-1 {
			t1 = to
		}
		rk.Step(t0, t1, value, system)
	}
}

// AdaptiveCompute implements an adaptive version which for a given error
// tolerance err makes recursive steps such that the local error never
// exceeds the tolerance. The tableau must be embedded.
func (rk RungeKutta) AdaptiveCompute(from, to, err float64, value *mat.VecDense, system DifferentiableSystem) error {
	if !rk.Adaptive() {
		return fmt.Errorf("%s has no embedded error estimate", rk.Name())
	}
	var (
		tmpState    mat.VecDense
		tnow, tnext float64
		count       int
	)
	tnow = from

	// Repeat until time to is reached
	for tnow < to {
		// Set target time
		tnext = to
		// Repeat until target error is reached
		for {
			tmpState.CloneFromVec(value)
			currentErrorVector := rk.Step(tnow, tnext, &tmpState, system)
			currentError := 0.
			for index := 0; index < currentErrorVector.Len(); index++ {
				currentError += math.Abs(currentErrorVector.AtVec(index))
			}
			// Has the target error been achieved?
			if currentError < err {
				break
			}
			// Half the next integration interval and try again
			tnext = (tnext-tnow)/2. + tnow

			count++
			if count >= maxNumberOfIterations {
				return ErrNoConvergence
			}
		}
		// Save this state and update tnow
		value.CopyVec(&tmpState)
		tnow = tnext
	}
	return nil
}

// NewRK4 function returns a forth order Runge-Kutta object
func NewRK4() *RungeKutta {
	var temp butcherTableau
	temp.name = "rk4"
	temp.stages = 4
	temp.nodes = []float64{0, 1. / 2., 1. / 2., 1}
	temp.weights = [][]float64{{1. / 6., 1. / 3., 1. / 3., 1. / 6.}}
	temp.rungeKuttaMatrix = [][]float64{
		nil,
		{1. / 2.},
		{0, 1. / 2.},
		{0, 0, 1.},
	}
	rk := RungeKutta{temp}
	return &rk
}

// NewEulerMethod returns a pointer to a Runge-Kutta that does the Euler method.
func NewEulerMethod() *RungeKutta {
	var temp butcherTableau
	temp.name = "euler"
	temp.stages = 1
	temp.nodes = []float64{0}
	temp.weights = [][]float64{{1}}
	temp.rungeKuttaMatrix = [][]float64{nil}
	rk := RungeKutta{temp}
	return &rk
}

// NewFehlberg45 implements https://en.wikipedia.org/wiki/Runge%E2%80%93Kutta%E2%80%93Fehlberg_method
func NewFehlberg45() *RungeKutta {
	var temp butcherTableau
	temp.name = "fehlberg45"
	temp.stages = 6
	temp.nodes = []float64{0, 1. / 4., 3. / 8., 12. / 13., 1., 1. / 2.}
	temp.weights = [][]float64{
		{16. / 135., 0, 6656. / 12825., 28561. / 56430., -9. / 50., 2. / 55.},
		{25. / 216., 0, 1408. / 2565., 2197. / 4104., -1. / 5., 0},
	}
	temp.rungeKuttaMatrix = [][]float64{
		nil,
		{1. / 4.},
		{3. / 32., 9. / 32.},
		{1932. / 2197., -7200. / 2197., 7296. / 2197.},
		{439. / 216., -8., 3680. / 513., -845. / 4104.},
		{-8. / 27., 2, -3544. / 2565., 1859. / 4104., -11. / 40.},
	}
	rk := RungeKutta{temp}
	return &rk
}

// ByName returns the integrator called name: "euler", "rk4" or "fehlberg45".
func ByName(name string) (*RungeKutta, error) {
	switch name {
	case "euler":
		return NewEulerMethod(), nil
	case "rk4":
		return NewRK4(), nil
	case "fehlberg45":
		return NewFehlberg45(), nil
	}
	return nil, fmt.Errorf("unknown Runge-Kutta method %q", name)
}
