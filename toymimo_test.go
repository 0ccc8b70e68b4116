package toymimo

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"github.com/HaoMAFRLu/toy-mimo-system/signal"
	"github.com/HaoMAFRLu/toy-mimo-system/simulate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle(t *testing.T) {
	sys := New(3, 2, WithSeed(42), WithIDGenerator(mimo.FixedGenerator("toy")))
	assert.Equal(t, "", sys.Name())
	assert.Nil(t, sys.System())

	ts, err := signal.TimeStamps(0, 1, 100)
	require.NoError(t, err)
	U := signal.Repeat(signal.Step(ts, 0, 1), 3)

	_, err = sys.Excite(U, ts)
	assert.ErrorIs(t, err, errs.ErrIllegalState)
	assert.ErrorIs(t, sys.Build(), errs.ErrIllegalState)

	require.NoError(t, sys.Initialize())
	assert.Equal(t, "toy", sys.Name())
	assert.Equal(t, mimo.Initialized, sys.System().State())

	_, err = sys.Excite(U, ts)
	assert.ErrorIs(t, err, errs.ErrIllegalState)

	require.NoError(t, sys.Build())
	Y, err := sys.Excite(U, ts)
	require.NoError(t, err)
	require.Len(t, Y, 2)
	require.Len(t, Y[0], len(ts))
	assert.Equal(t, mimo.Excited, sys.System().State())
}

func TestSeedReproducible(t *testing.T) {
	a := New(2, 2, WithSeed(7), WithIDGenerator(mimo.FixedGenerator("a")))
	b := New(2, 2, WithSeed(7), WithIDGenerator(mimo.FixedGenerator("b")))
	require.NoError(t, a.Initialize())
	require.NoError(t, b.Initialize())
	assert.Equal(t, a.System().Grid(), b.System().Grid())
	assert.Equal(t, a.Report(), b.Report())
}

func TestInitializeRejectsDimensions(t *testing.T) {
	err := New(0, 2).Initialize()
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	err = New(2, 2, WithOrderMax(0)).Initialize()
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}

func TestSaveAndLoad(t *testing.T) {
	dataDir := t.TempDir()
	sys := New(2, 3, WithSeed(1), WithIDGenerator(mimo.FixedGenerator("saved")))
	_, err := sys.Save(dataDir)
	assert.ErrorIs(t, err, errs.ErrIllegalState)

	require.NoError(t, sys.Initialize())
	dir, err := sys.Save(dataDir)
	require.NoError(t, err)
	assert.DirExists(t, dir)

	loaded, err := Load(dataDir, "saved", WithSimulatorOptions(simulate.WithParallel(true)))
	require.NoError(t, err)
	assert.Equal(t, "saved", loaded.Name())
	assert.Equal(t, sys.System().Grid(), loaded.System().Grid())
	assert.Equal(t, mimo.Initialized, loaded.System().State())

	require.NoError(t, sys.Build())
	require.NoError(t, loaded.Build())
	ts, err := signal.TimeStamps(0, 2, 50)
	require.NoError(t, err)
	U := [][]float64{signal.Sine(ts, 1, 0.5, 0), signal.Step(ts, 0.3, 2)}
	want, err := sys.Excite(U, ts)
	require.NoError(t, err)
	got, err := loaded.Excite(U, ts)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRungeKuttaOption(t *testing.T) {
	exact := New(1, 1, WithSeed(3))
	rk := New(1, 1, WithSeed(3), WithSimulatorOptions(simulate.WithMethod(simulate.RungeKutta)))
	require.NoError(t, exact.Initialize())
	require.NoError(t, rk.Initialize())
	require.NoError(t, exact.Build())
	require.NoError(t, rk.Build())

	ts, err := signal.TimeStamps(0, 3, 100)
	require.NoError(t, err)
	U := [][]float64{signal.Sine(ts, 1, 0.25, 0)}
	a, err := exact.Excite(U, ts)
	require.NoError(t, err)
	b, err := rk.Excite(U, ts)
	require.NoError(t, err)
	for k := range ts {
		assert.InDelta(t, a[0][k], b[0][k], 1e-6*(1+math.Abs(a[0][k])))
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sys := New(1, 1, WithSeed(5), WithLogger(logger), WithIDGenerator(mimo.FixedGenerator("logged")))
	require.NoError(t, sys.Initialize())
	require.NoError(t, sys.Build())

	out := buf.String()
	assert.Contains(t, out, "system initialized")
	assert.Contains(t, out, "name=logged")
	assert.Contains(t, out, "system built")
}
