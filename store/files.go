package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"gopkg.in/yaml.v3"
)

const (
	systemsDir     = "systems"
	paramsFile     = "params.yaml"
	transferFile   = "transfer_function.txt"
	dirPermissions = 0o755
)

// SystemDir returns the directory of system id under dataDir.
func SystemDir(dataDir, id string) string {
	return filepath.Join(dataDir, systemsDir, id)
}

// SaveSystemFiles writes the parameter dataset to
// <dataDir>/systems/<name>/params.yaml and the transfer function report next
// to it. It returns the system directory.
func SaveSystemFiles(dataDir string, p mimo.Parameters) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("save system files: %w", err)
	}
	if p.Name == "" || p.Name != filepath.Base(p.Name) {
		return "", fmt.Errorf("save system files: %w: system name %q is not a directory name", errs.ErrInvalidConfiguration, p.Name)
	}
	dir := SystemDir(dataDir, p.Name)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return "", fmt.Errorf("save system files: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("save system files: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, paramsFile), data, 0o644); err != nil {
		return "", fmt.Errorf("save system files: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, transferFile))
	if err != nil {
		return "", fmt.Errorf("save system files: %w", err)
	}
	if err := mimo.WriteReport(f, p.Grid); err != nil {
		f.Close()
		return "", fmt.Errorf("save system files: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("save system files: %w", err)
	}
	return dir, nil
}

// LoadSystemFile reads <dataDir>/systems/<id>/params.yaml and validates it.
func LoadSystemFile(dataDir, id string) (mimo.Parameters, error) {
	data, err := os.ReadFile(filepath.Join(SystemDir(dataDir, id), paramsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return mimo.Parameters{}, fmt.Errorf("load system %q: %w", id, ErrNotFound)
		}
		return mimo.Parameters{}, fmt.Errorf("load system %q: %w", id, err)
	}

	var p mimo.Parameters
	if err := yaml.Unmarshal(data, &p); err != nil {
		return mimo.Parameters{}, fmt.Errorf("load system %q: %w: %v", id, errs.ErrInvalidConfiguration, err)
	}
	if err := p.Validate(); err != nil {
		return mimo.Parameters{}, fmt.Errorf("load system %q: %w", id, err)
	}
	return p, nil
}
