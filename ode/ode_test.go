package ode

import (
	"math"
	"testing"

	"github.com/HaoMAFRLu/toy-mimo-system/ssm"
	"github.com/HaoMAFRLu/toy-mimo-system/tf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// decay is x' = -x
type decay struct{}

func (decay) Derivative(t float64, state mat.Vector) mat.Vector {
	var res mat.VecDense
	res.ScaleVec(-1, state)
	return &res
}

func TestRk4(t *testing.T) {
	test := NewRK4()
	assert.Equal(t, 4, test.Stages(), "RK4 should have four stages")
	assert.False(t, test.Adaptive())
}

func TestEuler(t *testing.T) {
	test := NewEulerMethod()
	assert.Equal(t, 1, test.Stages())
	value := mat.NewVecDense(1, []float64{1})
	test.Step(0, 0.1, value, decay{})
	assert.InDelta(t, 0.9, value.AtVec(0), 1e-15)
}

func TestFehlberg45(t *testing.T) {
	test := NewFehlberg45()
	assert.Equal(t, 6, test.Stages())
	assert.True(t, test.Adaptive())
}

func TestByName(t *testing.T) {
	for _, name := range []string{"euler", "rk4", "fehlberg45"} {
		rk, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, rk.Name())
	}
	_, err := ByName("leapfrog")
	assert.Error(t, err)
}

func TestCompute(t *testing.T) {
	value := mat.NewVecDense(2, []float64{1, -2})
	NewRK4().Compute(0, 1, 20, value, decay{})
	assert.InDelta(t, math.Exp(-1), value.AtVec(0), 1e-7)
	assert.InDelta(t, -2*math.Exp(-1), value.AtVec(1), 2e-7)
}

func TestAdaptiveCompute(t *testing.T) {
	value := mat.NewVecDense(1, []float64{1})
	require.NoError(t, NewFehlberg45().AdaptiveCompute(0, 3, 1e-10, value, decay{}))
	assert.InDelta(t, math.Exp(-3), value.AtVec(0), 1e-8)

	assert.Error(t, NewRK4().AdaptiveCompute(0, 1, 1e-6, value, decay{}))
}

func TestComputeStateSpaceModel(t *testing.T) {
	// unit step into 1/(s+1) from rest gives 1 - e^-t
	model, err := ssm.FromTransferFunction(tf.MustNew([]float64{1}, []float64{1, 1}))
	require.NoError(t, err)
	driven := model.WithInput(func(float64) float64 { return 1 })
	state := mat.NewVecDense(1, nil)
	NewRK4().Compute(0, 2, 200, state, driven)
	assert.InDelta(t, 1-math.Exp(-2), driven.Output(state, 1), 1e-9)
}
