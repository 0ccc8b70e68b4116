// Package config loads the toymimo configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/simulate"
	"github.com/HaoMAFRLu/toy-mimo-system/tf"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration. Missing keys keep their defaults.
type Config struct {
	System     System     `yaml:"system"`
	Simulation Simulation `yaml:"simulation"`
	Storage    Storage    `yaml:"storage"`
	Log        Log        `yaml:"log"`
}

// System configures system generation.
type System struct {
	Inputs   int    `yaml:"inputs"`
	Outputs  int    `yaml:"outputs"`
	OrderMax int    `yaml:"order_max"`
	Seed     uint64 `yaml:"seed"`
}

// Simulation configures the simulator.
type Simulation struct {
	// Method is "foh", "zoh" or a Runge-Kutta method name.
	Method   string `yaml:"method"`
	Substeps int    `yaml:"substeps"`
	Parallel bool   `yaml:"parallel"`
	// Tolerance bounds the local error of embedded methods (fehlberg45).
	Tolerance float64 `yaml:"tolerance"`
}

type Storage struct {
	DataDir  string `yaml:"data_dir"`
	Database string `yaml:"database"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		System: System{
			Inputs:   3,
			Outputs:  2,
			OrderMax: tf.DefaultOrderMax,
			Seed:     42,
		},
		Simulation: Simulation{
			Method:    "foh",
			Substeps:  simulate.DefaultSubsteps,
			Tolerance: simulate.DefaultTolerance,
		},
		Storage: Storage{
			DataDir:  "data",
			Database: "data/toymimo.db",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", errs.ErrInvalidConfiguration, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks every value.
func (c Config) Validate() error {
	if c.System.Inputs < 1 || c.System.Outputs < 1 {
		return fmt.Errorf("%w: system needs at least one input and one output, got %d and %d",
			errs.ErrInvalidConfiguration, c.System.Inputs, c.System.Outputs)
	}
	if c.System.OrderMax < 1 {
		return fmt.Errorf("%w: order_max %d", errs.ErrInvalidConfiguration, c.System.OrderMax)
	}
	if _, _, err := simulate.ParseMethod(c.Simulation.Method); err != nil {
		return err
	}
	if c.Simulation.Substeps < 1 {
		return fmt.Errorf("%w: substeps %d", errs.ErrInvalidConfiguration, c.Simulation.Substeps)
	}
	if !(c.Simulation.Tolerance > 0) || math.IsInf(c.Simulation.Tolerance, 1) {
		return fmt.Errorf("%w: tolerance %v", errs.ErrInvalidConfiguration, c.Simulation.Tolerance)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("%w: empty data_dir", errs.ErrInvalidConfiguration)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Level: "debug", "info", "warn" or "error".
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", errs.ErrInvalidConfiguration, l.Level)
	}
	return level, nil
}

// SimulatorOptions returns the simulator options of the configuration.
func (c Config) SimulatorOptions() ([]simulate.Option, error) {
	method, rk, err := simulate.ParseMethod(c.Simulation.Method)
	if err != nil {
		return nil, err
	}
	opts := []simulate.Option{
		simulate.WithParallel(c.Simulation.Parallel),
		simulate.WithTolerance(c.Simulation.Tolerance),
	}
	if method == simulate.RungeKutta {
		opts = append(opts, simulate.WithIntegrator(rk, c.Simulation.Substeps))
	} else {
		opts = append(opts, simulate.WithMethod(method))
	}
	return opts, nil
}
