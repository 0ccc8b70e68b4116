// Package ssm holds continuous-time linear state space models
//
//	x'(t) = A x(t) + B u(t)
//	y(t)  = C x(t) + D u(t)
//
// realised from single-input single-output transfer functions, together with
// the exact hold discretisations the simulator steps them with.
package ssm

import (
	"gonum.org/v1/gonum/mat"
)

// StateSpaceModel interface has two parts:
//
// 1) The derivative function which returns the differential state evaluated
// at time t and state(t).
//
// 2) The observation evaluated at time t and state(t).
type StateSpaceModel interface {
	// This is the derivative of a state space model
	Derivative(t float64, state mat.Vector) mat.Vector
	// This is the observed state
	Observation(t float64, state mat.Vector) mat.Vector
	// Returns the state space order
	StateSpaceOrder() int
	// Returns the observation space order.
	ObservationSpaceOrder() int
	// Returns the input space order
	InputSpaceOrder() int
}
