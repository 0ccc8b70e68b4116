package simulate

import (
	"math"
	"sync"
	"testing"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"github.com/HaoMAFRLu/toy-mimo-system/ode"
	"github.com/HaoMAFRLu/toy-mimo-system/signal"
	"github.com/HaoMAFRLu/toy-mimo-system/ssm"
	"github.com/HaoMAFRLu/toy-mimo-system/tf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowPass() tf.TransferFunction {
	return tf.MustNew([]float64{1}, []float64{1, 1})
}

func built(t *testing.T, grid [][]tf.TransferFunction) *mimo.System {
	t.Helper()
	sys, err := mimo.FromGrid("test", grid)
	require.NoError(t, err)
	require.NoError(t, sys.Build())
	return sys
}

func random(t *testing.T, nrInputs, nrOutputs int, seed uint64) *mimo.System {
	t.Helper()
	f, err := tf.NewSeededFactory(tf.DefaultOrderMax, seed)
	require.NoError(t, err)
	sys, err := mimo.Initialize(nrInputs, nrOutputs, f, mimo.FixedGenerator("random"))
	require.NoError(t, err)
	require.NoError(t, sys.Build())
	return sys
}

func timeStamps(t *testing.T, t1, fs float64) []float64 {
	t.Helper()
	ts, err := signal.TimeStamps(0, t1, fs)
	require.NoError(t, err)
	return ts
}

func TestStepResponseFirstOrder(t *testing.T) {
	sys := built(t, [][]tf.TransferFunction{{lowPass()}})
	ts := timeStamps(t, 10, 100)
	require.Len(t, ts, 1001)

	y, err := Excite(sys, [][]float64{signal.Step(ts, 0, 1)}, ts)
	require.NoError(t, err)
	require.Len(t, y, 1)
	require.Len(t, y[0], len(ts))

	assert.Equal(t, 0.0, y[0][0])
	assert.Greater(t, y[0][len(ts)-1], 0.99)
	for k, tk := range ts {
		assert.InDelta(t, 1-math.Exp(-tk), y[0][k], 1e-9)
	}
	assert.Equal(t, mimo.Excited, sys.State())
}

func TestNonUniformTimeStamps(t *testing.T) {
	sys := built(t, [][]tf.TransferFunction{{lowPass()}})
	ts := []float64{0, 0.1, 0.3, 0.35, 1, 1.05, 2.5, 4}
	y, err := Excite(sys, [][]float64{signal.Step(ts, 0, 1)}, ts)
	require.NoError(t, err)
	for k, tk := range ts {
		assert.InDelta(t, 1-math.Exp(-tk), y[0][k], 1e-12)
	}
}

func TestSubPicosecondSteps(t *testing.T) {
	// 1/(s + a) driven by a unit step settles at 1/a with time constant 1/a
	a := 1e12
	sys := built(t, [][]tf.TransferFunction{{tf.MustNew([]float64{1}, []float64{1, a})}})
	ts := []float64{0, 1e-13, 5e-13, 5.5e-13, 2e-12}
	for _, method := range []Method{FirstOrderHold, ZeroOrderHold} {
		y, err := New(WithMethod(method)).Excite(sys, [][]float64{{1, 1, 1, 1, 1}}, ts)
		require.NoError(t, err)
		assert.Equal(t, 0.0, y[0][0])
		for k := 1; k < len(ts); k++ {
			assert.InEpsilon(t, (1-math.Exp(-a*ts[k]))/a, y[0][k], 1e-9, "method %v sample %d", method, k)
		}
	}
}

func TestZeroInputGivesZeroOutput(t *testing.T) {
	sys := random(t, 3, 2, 42)
	ts := timeStamps(t, 5, 50)
	U := signal.Repeat(signal.Zeros(len(ts)), 3)

	y, err := New().Excite(sys, U, ts)
	require.NoError(t, err)
	require.Len(t, y, 2)
	for _, row := range y {
		for _, v := range row {
			assert.Equal(t, 0.0, v)
		}
	}
}

func TestIdenticalChannelsDouble(t *testing.T) {
	sys := built(t, [][]tf.TransferFunction{{lowPass(), lowPass()}})
	ts := timeStamps(t, 5, 100)
	u := signal.Sine(ts, 1, 0.5, 0)

	y, err := Excite(sys, signal.Repeat(u, 2), ts)
	require.NoError(t, err)

	model, err := sys.Model(0, 0)
	require.NoError(t, err)
	single, err := New().ExciteChannel(model, u, ts)
	require.NoError(t, err)

	for k := range ts {
		assert.Equal(t, 2*single[k], y[0][k])
	}
}

func TestSuperposition(t *testing.T) {
	sys := random(t, 3, 2, 7)
	ts := timeStamps(t, 4, 50)
	U := [][]float64{
		signal.Sine(ts, 1, 0.3, 0),
		signal.Step(ts, 1, 0.5),
		signal.Sine(ts, 2, 1.1, 0.4),
	}
	sim := New()
	y, err := sim.Excite(sys, U, ts)
	require.NoError(t, err)

	for row := 0; row < sys.NumberOfOutputs(); row++ {
		want := make([]float64, len(ts))
		for col := 0; col < sys.NumberOfInputs(); col++ {
			model, err := sys.Model(row, col)
			require.NoError(t, err)
			contribution, err := sim.ExciteChannel(model, U[col], ts)
			require.NoError(t, err)
			for k := range want {
				want[k] += contribution[k]
			}
		}
		assert.Equal(t, want, y[row])

		output, err := sim.ExciteOutput(sys, row, U, ts)
		require.NoError(t, err)
		assert.Equal(t, y[row], output)
	}
}

func TestLinearity(t *testing.T) {
	sys := random(t, 2, 2, 11)
	ts := timeStamps(t, 3, 100)
	U1 := [][]float64{signal.Sine(ts, 1, 0.7, 0), signal.Step(ts, 0.5, 1)}
	U2 := [][]float64{signal.Step(ts, 0.2, -1), signal.Sine(ts, 0.5, 2, 1)}
	a, b := 2.5, -0.75
	mixed, err := signal.Combine(a, U1, b, U2)
	require.NoError(t, err)

	y1, err := Excite(sys, U1, ts)
	require.NoError(t, err)
	y2, err := Excite(sys, U2, ts)
	require.NoError(t, err)
	y, err := Excite(sys, mixed, ts)
	require.NoError(t, err)

	for row := range y {
		for k := range ts {
			want := a*y1[row][k] + b*y2[row][k]
			assert.InDelta(t, want, y[row][k], 1e-8*(1+math.Abs(want)))
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	sys := random(t, 4, 3, 3)
	ts := timeStamps(t, 2, 100)
	U := [][]float64{
		signal.Sine(ts, 1, 0.3, 0),
		signal.Sine(ts, 1, 1.3, 0.2),
		signal.Step(ts, 0.5, 1),
		signal.Zeros(len(ts)),
	}
	serial, err := New().Excite(sys, U, ts)
	require.NoError(t, err)
	parallel, err := New(WithParallel(true)).Excite(sys, U, ts)
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestRungeKuttaCloseToFirstOrderHold(t *testing.T) {
	sys := built(t, [][]tf.TransferFunction{{lowPass(), tf.MustNew([]float64{1, 0}, []float64{1, 3, 2})}})
	ts := timeStamps(t, 5, 100)
	U := [][]float64{signal.Sine(ts, 1, 0.5, 0), signal.Sine(ts, 0.5, 0.2, 1)}

	exact, err := New().Excite(sys, U, ts)
	require.NoError(t, err)
	rk, err := New(WithIntegrator(ode.NewRK4(), DefaultSubsteps)).Excite(sys, U, ts)
	require.NoError(t, err)
	for k := range ts {
		assert.InDelta(t, exact[0][k], rk[0][k], 1e-8)
	}
}

func TestAdaptiveRungeKuttaCloseToFirstOrderHold(t *testing.T) {
	sys := built(t, [][]tf.TransferFunction{{lowPass(), tf.MustNew([]float64{1, 0}, []float64{1, 3, 2})}})
	ts := timeStamps(t, 5, 100)
	U := [][]float64{signal.Sine(ts, 1, 0.5, 0), signal.Sine(ts, 0.5, 0.2, 1)}

	exact, err := New().Excite(sys, U, ts)
	require.NoError(t, err)
	adaptive, err := New(WithIntegrator(ode.NewFehlberg45(), 1), WithTolerance(1e-11)).Excite(sys, U, ts)
	require.NoError(t, err)
	for k := range ts {
		assert.InDelta(t, exact[0][k], adaptive[0][k], 1e-7)
	}
}

func TestAdaptiveRungeKuttaNoConvergence(t *testing.T) {
	sys := built(t, [][]tf.TransferFunction{{lowPass()}})
	ts := timeStamps(t, 1, 10)
	sim := New(WithIntegrator(ode.NewFehlberg45(), 1), WithTolerance(1e-300))

	_, err := sim.Excite(sys, [][]float64{signal.Step(ts, 0, 1)}, ts)
	assert.ErrorIs(t, err, ode.ErrNoConvergence)
	assert.Equal(t, mimo.Built, sys.State())
}

// twoOutputs reports a second observation it does not have.
type twoOutputs struct {
	*ssm.LinearStateSpaceModel
}

func (twoOutputs) ObservationSpaceOrder() int {
	return 2
}

func TestIntegrateNeedsSISOModel(t *testing.T) {
	model, err := ssm.FromTransferFunction(lowPass())
	require.NoError(t, err)
	ts := timeStamps(t, 1, 10)

	y, err := New(WithIntegrator(ode.NewRK4(), 2)).integrate(model, ts)
	require.NoError(t, err)
	assert.Len(t, y, len(ts))

	_, err = New(WithIntegrator(ode.NewRK4(), 2)).integrate(twoOutputs{model}, ts)
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)
}

func TestRebuildWhileExciting(t *testing.T) {
	sys := random(t, 3, 2, 8)
	ts := timeStamps(t, 1, 50)
	U := signal.Repeat(signal.Sine(ts, 1, 2, 0), 3)
	want, err := New().Excite(sys, U, ts)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			assert.NoError(t, sys.Build())
		}
	}()
	for i := 0; i < 5; i++ {
		got, err := New(WithParallel(true)).Excite(sys, U, ts)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	wg.Wait()
}

func TestZeroOrderHoldConstantInput(t *testing.T) {
	sys := built(t, [][]tf.TransferFunction{{lowPass()}})
	ts := timeStamps(t, 2, 20)
	U := [][]float64{signal.Step(ts, 0, 3)}
	foh, err := New().Excite(sys, U, ts)
	require.NoError(t, err)
	zoh, err := New(WithMethod(ZeroOrderHold)).Excite(sys, U, ts)
	require.NoError(t, err)
	for k := range ts {
		assert.InDelta(t, foh[0][k], zoh[0][k], 1e-12)
	}
}

func TestExciteDoesNotAliasInput(t *testing.T) {
	sys := built(t, [][]tf.TransferFunction{{tf.MustNew([]float64{1, 0}, []float64{1, 0})}})
	ts := timeStamps(t, 1, 10)
	U := [][]float64{signal.Step(ts, 0, 1)}
	y, err := Excite(sys, U, ts)
	require.NoError(t, err)
	y[0][0] = 42
	assert.Equal(t, 1.0, U[0][0])
}

func TestExciteErrors(t *testing.T) {
	ts := timeStamps(t, 1, 10)
	u := signal.Step(ts, 0, 1)

	unbuilt, err := mimo.FromGrid("unbuilt", [][]tf.TransferFunction{{lowPass()}})
	require.NoError(t, err)
	_, err = Excite(unbuilt, [][]float64{u}, ts)
	assert.ErrorIs(t, err, errs.ErrIllegalState)
	assert.Equal(t, mimo.Initialized, unbuilt.State())

	sys := built(t, [][]tf.TransferFunction{{lowPass(), lowPass()}})

	_, err = Excite(sys, [][]float64{u}, ts)
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)

	_, err = Excite(sys, [][]float64{u, u[:5]}, ts)
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)

	_, err = Excite(sys, [][]float64{{1, 1, 1}, {1, 1, 1}}, []float64{0, 0.2, 0.1})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = Excite(sys, [][]float64{{}, {}}, []float64{})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = Excite(sys, [][]float64{{1, math.NaN()}, {1, 1}}, []float64{0, 1})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = New().ExciteOutput(sys, 1, [][]float64{u, u}, ts)
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)

	assert.Equal(t, mimo.Built, sys.State())
}

func TestParseMethod(t *testing.T) {
	m, rk, err := ParseMethod("foh")
	require.NoError(t, err)
	assert.Equal(t, FirstOrderHold, m)
	assert.Nil(t, rk)

	m, rk, err = ParseMethod("rk4")
	require.NoError(t, err)
	assert.Equal(t, RungeKutta, m)
	require.NotNil(t, rk)
	assert.Equal(t, "rk4", rk.Name())

	m, rk, err = ParseMethod("fehlberg45")
	require.NoError(t, err)
	assert.Equal(t, RungeKutta, m)
	assert.True(t, rk.Adaptive())

	_, _, err = ParseMethod("trapezoid")
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}

func BenchmarkExcite(b *testing.B) {
	f, _ := tf.NewSeededFactory(tf.DefaultOrderMax, 1)
	sys, _ := mimo.Initialize(3, 2, f, mimo.FixedGenerator("bench"))
	_ = sys.Build()
	ts, _ := signal.TimeStamps(0, 10, 100)
	U := signal.Repeat(signal.Sine(ts, 1, 0.5, 0), 3)
	sim := New(WithParallel(true))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sim.Excite(sys, U, ts); err != nil {
			b.Fatal(err)
		}
	}
}
