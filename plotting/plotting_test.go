package plotting

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveResponse(t *testing.T) {
	ts, err := signal.TimeStamps(0, 2, 50)
	require.NoError(t, err)
	U := [][]float64{signal.Step(ts, 0.5, 1), signal.Sine(ts, 1, 1, 0)}
	Y := [][]float64{signal.Sine(ts, 0.5, 0.5, 0.3)}

	path := filepath.Join(t.TempDir(), "plots", "response.png")
	require.NoError(t, SaveResponse(path, ts, U, Y))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))
}

func TestSaveResponseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.png")

	err := SaveResponse(path, nil, nil, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	err = SaveResponse(path, []float64{0, 1}, [][]float64{{1, 2}}, [][]float64{{1}})
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
