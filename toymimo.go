// Package toymimo generates synthetic MIMO linear time-invariant systems and
// simulates their response to sampled input signals.
//
// A system is a grid of nr_outputs x nr_inputs random SISO transfer
// functions. The typical use is
//
//	sys := toymimo.New(3, 2, toymimo.WithSeed(42))
//	if err := sys.Initialize(); err != nil { ... }
//	if err := sys.Build(); err != nil { ... }
//	Y, err := sys.Excite(U, t)
package toymimo

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"github.com/HaoMAFRLu/toy-mimo-system/simulate"
	"github.com/HaoMAFRLu/toy-mimo-system/store"
	"github.com/HaoMAFRLu/toy-mimo-system/tf"
)

// ToyMIMO drives the lifecycle of one synthetic system: Initialize draws
// the transfer functions, Build realises them and Excite simulates.
type ToyMIMO struct {
	nrInputs  int
	nrOutputs int
	orderMax  int
	rnd       *rand.Rand
	ids       mimo.IDGenerator
	simulator *simulate.Simulator
	simOpts   []simulate.Option
	logger    *slog.Logger
	sys       *mimo.System
}

// Option configures a ToyMIMO.
type Option func(*ToyMIMO)

// WithOrderMax sets the largest numerator order drawn by the factory.
func WithOrderMax(orderMax int) Option {
	return func(m *ToyMIMO) {
		m.orderMax = orderMax
	}
}

// WithSeed seeds the random source of the factory.
func WithSeed(seed uint64) Option {
	return func(m *ToyMIMO) {
		m.rnd = tf.NewRand(seed)
	}
}

// WithRand sets the random source of the factory.
func WithRand(rnd *rand.Rand) Option {
	return func(m *ToyMIMO) {
		m.rnd = rnd
	}
}

// WithIDGenerator sets how the system is named.
func WithIDGenerator(ids mimo.IDGenerator) Option {
	return func(m *ToyMIMO) {
		m.ids = ids
	}
}

// WithSimulatorOptions configures the simulator used by Excite.
func WithSimulatorOptions(opts ...simulate.Option) Option {
	return func(m *ToyMIMO) {
		m.simOpts = append(m.simOpts, opts...)
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(m *ToyMIMO) {
		m.logger = logger
	}
}

// New returns an uninitialized system with nrInputs inputs and nrOutputs
// outputs. Without WithSeed or WithRand the factory is seeded randomly.
func New(nrInputs, nrOutputs int, opts ...Option) *ToyMIMO {
	m := &ToyMIMO{
		nrInputs:  nrInputs,
		nrOutputs: nrOutputs,
		orderMax:  tf.DefaultOrderMax,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rnd == nil {
		m.rnd = tf.NewRand(rand.Uint64())
	}
	if m.ids == nil {
		m.ids = mimo.UUIDGenerator{}
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	m.simulator = simulate.New(m.simOpts...)
	return m
}

// Load returns the system saved under dataDir by Save, in the initialized
// state.
func Load(dataDir, name string, opts ...Option) (*ToyMIMO, error) {
	p, err := store.LoadSystemFile(dataDir, name)
	if err != nil {
		return nil, err
	}
	sys, err := mimo.FromParameters(p)
	if err != nil {
		return nil, err
	}
	m := New(p.NrInputs, p.NrOutputs, opts...)
	m.sys = sys
	m.logger.Info("system loaded", "name", sys.Name(), "data_dir", dataDir)
	return m, nil
}

// Initialize draws a fresh transfer function for every grid cell. Calling
// it again replaces the system.
func (m *ToyMIMO) Initialize() error {
	factory, err := tf.NewFactory(m.orderMax, m.rnd)
	if err != nil {
		return err
	}
	sys, err := mimo.Initialize(m.nrInputs, m.nrOutputs, factory, m.ids)
	if err != nil {
		return err
	}
	m.sys = sys
	m.logger.Info("system initialized", "name", sys.Name(), "inputs", m.nrInputs, "outputs", m.nrOutputs)
	return nil
}

// Build realises every transfer function as a state space model.
func (m *ToyMIMO) Build() error {
	if m.sys == nil {
		return fmt.Errorf("%w: initialize before build", errs.ErrIllegalState)
	}
	if err := m.sys.Build(); err != nil {
		return err
	}
	m.logger.Debug("system built", "name", m.sys.Name())
	return nil
}

// Excite returns the nr_outputs x N response to the nr_inputs x N inputs U
// sampled at t.
func (m *ToyMIMO) Excite(U [][]float64, t []float64) ([][]float64, error) {
	if m.sys == nil {
		return nil, fmt.Errorf("%w: initialize and build before excite", errs.ErrIllegalState)
	}
	Y, err := m.simulator.Excite(m.sys, U, t)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("system excited", "name", m.sys.Name(), "samples", len(t), "method", m.simulator.Method())
	return Y, nil
}

// Save writes the parameter file and the transfer function report under
// dataDir/systems/<name> and returns that directory.
func (m *ToyMIMO) Save(dataDir string) (string, error) {
	if m.sys == nil {
		return "", fmt.Errorf("%w: nothing to save", errs.ErrIllegalState)
	}
	dir, err := store.SaveSystemFiles(dataDir, m.sys.Parameters())
	if err != nil {
		return "", err
	}
	m.logger.Info("system saved", "name", m.sys.Name(), "dir", dir)
	return dir, nil
}

// Name returns the system identifier, empty before Initialize.
func (m *ToyMIMO) Name() string {
	if m.sys == nil {
		return ""
	}
	return m.sys.Name()
}

// System returns the underlying system, nil before Initialize.
func (m *ToyMIMO) System() *mimo.System {
	return m.sys
}

// Report returns the transfer function report.
func (m *ToyMIMO) Report() string {
	if m.sys == nil {
		return ""
	}
	return m.sys.Report()
}
