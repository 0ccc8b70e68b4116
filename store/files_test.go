package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadSystemFiles(t *testing.T) {
	dataDir := t.TempDir()
	p := testParameters(t, "sys-a")

	dir, err := SaveSystemFiles(dataDir, p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "systems", "sys-a"), dir)

	report, err := os.ReadFile(filepath.Join(dir, "transfer_function.txt"))
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(string(report), "(s) = \n"))
	assert.True(t, strings.HasPrefix(string(report), "H_00(s) = \n"))

	got, err := LoadSystemFile(dataDir, "sys-a")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	sys, err := mimo.FromParameters(got)
	require.NoError(t, err)
	assert.Equal(t, string(report), sys.Report())
}

func TestLoadSystemFileErrors(t *testing.T) {
	dataDir := t.TempDir()
	_, err := LoadSystemFile(dataDir, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	dir := SystemDir(dataDir, "broken")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "params.yaml"), []byte("name: broken\nnr_inputs: 2\nnr_outputs: 1\ngrid: []\n"), 0o644))
	_, err = LoadSystemFile(dataDir, "broken")
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}

func TestSaveSystemFilesRejectsPathName(t *testing.T) {
	p := testParameters(t, "../escape")
	_, err := SaveSystemFiles(t.TempDir(), p)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
