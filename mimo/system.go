// Package mimo assembles an nr_outputs x nr_inputs grid of SISO transfer
// functions into one multi-input multi-output system.
//
// A System moves through the states
//
//	Uninitialized -> Initialized -> Built -> Excited
//
// Initialized systems own their parameter grid; Build adds a state space
// realisation per cell. Both are immutable once built, so a built System may
// be excited from several goroutines at once.
package mimo

import (
	"fmt"
	"sync/atomic"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/ssm"
	"github.com/HaoMAFRLu/toy-mimo-system/tf"
)

// State is the lifecycle state of a System.
type State int32

const (
	Uninitialized State = iota
	Initialized
	Built
	Excited
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Built:
		return "built"
	case Excited:
		return "excited"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// System is a MIMO system: grid[row][col] maps input col to output row.
type System struct {
	name      string
	nrInputs  int
	nrOutputs int
	grid      [][]tf.TransferFunction
	models    atomic.Pointer[[][]*ssm.LinearStateSpaceModel]
	state     atomic.Int32
}

// Initialize draws one transfer function per grid cell from factory, output
// index outer and input index inner, and names the system with ids. A nil
// ids defaults to UUIDGenerator.
func Initialize(nrInputs, nrOutputs int, factory *tf.Factory, ids IDGenerator) (*System, error) {
	if nrInputs < 1 || nrOutputs < 1 {
		return nil, fmt.Errorf("%w: need at least one input and one output, got %d inputs and %d outputs",
			errs.ErrInvalidConfiguration, nrInputs, nrOutputs)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: nil transfer function factory", errs.ErrInvalidConfiguration)
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	grid := make([][]tf.TransferFunction, nrOutputs)
	for row := range grid {
		grid[row] = make([]tf.TransferFunction, nrInputs)
		for col := range grid[row] {
			grid[row][col] = factory.Synthesize()
		}
	}
	return newSystem(ids.Generate(), grid), nil
}

// FromGrid returns an initialized system with a caller supplied grid. The
// grid is copied.
func FromGrid(name string, grid [][]tf.TransferFunction) (*System, error) {
	if err := validateGrid(grid); err != nil {
		return nil, err
	}
	return newSystem(name, copyGrid(grid)), nil
}

// FromParameters returns the initialized system described by a parameter
// dataset.
func FromParameters(p Parameters) (*System, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return newSystem(p.Name, copyGrid(p.Grid)), nil
}

func newSystem(name string, grid [][]tf.TransferFunction) *System {
	s := &System{
		name:      name,
		nrOutputs: len(grid),
		nrInputs:  len(grid[0]),
		grid:      grid,
	}
	s.state.Store(int32(Initialized))
	return s
}

func validateGrid(grid [][]tf.TransferFunction) error {
	if len(grid) < 1 || len(grid[0]) < 1 {
		return fmt.Errorf("%w: grid needs at least one row and one column", errs.ErrInvalidConfiguration)
	}
	for row := range grid {
		if len(grid[row]) != len(grid[0]) {
			return fmt.Errorf("%w: grid row %d has %d columns, row 0 has %d",
				errs.ErrInvalidConfiguration, row, len(grid[row]), len(grid[0]))
		}
		for col, h := range grid[row] {
			if err := h.Validate(); err != nil {
				return fmt.Errorf("grid cell (%d, %d): %w", row, col, err)
			}
		}
	}
	return nil
}

func copyGrid(grid [][]tf.TransferFunction) [][]tf.TransferFunction {
	res := make([][]tf.TransferFunction, len(grid))
	for row := range grid {
		res[row] = make([]tf.TransferFunction, len(grid[row]))
		for col, h := range grid[row] {
			res[row][col] = tf.TransferFunction{
				OrderNum: h.OrderNum,
				OrderDen: h.OrderDen,
				Num:      append([]float64(nil), h.Num...),
				Den:      append([]float64(nil), h.Den...),
			}
		}
	}
	return res
}

// Build realises every cell as a state space model. Building again from the
// same grid yields the same models, published atomically so a rebuild may run
// alongside excitations. Nothing is changed when a cell fails.
func (s *System) Build() error {
	if s.State() == Uninitialized {
		return fmt.Errorf("%w: build before initialize", errs.ErrIllegalState)
	}
	models := make([][]*ssm.LinearStateSpaceModel, s.nrOutputs)
	for row := range models {
		models[row] = make([]*ssm.LinearStateSpaceModel, s.nrInputs)
		for col := range models[row] {
			model, err := ssm.FromTransferFunction(s.grid[row][col])
			if err != nil {
				return fmt.Errorf("build cell H_%d%d: %w", row, col, err)
			}
			models[row][col] = model
		}
	}
	s.models.Store(&models)
	s.state.Store(int32(Built))
	return nil
}

// State returns the lifecycle state.
func (s *System) State() State {
	return State(s.state.Load())
}

// MarkExcited records that the built system produced an output.
func (s *System) MarkExcited() error {
	for {
		switch st := s.State(); st {
		case Excited:
			return nil
		case Built:
			if s.state.CompareAndSwap(int32(Built), int32(Excited)) {
				return nil
			}
		default:
			return fmt.Errorf("%w: system %q is %v, not built", errs.ErrIllegalState, s.name, st)
		}
	}
}

// Name returns the system identifier.
func (s *System) Name() string {
	return s.name
}

func (s *System) NumberOfInputs() int {
	return s.nrInputs
}

func (s *System) NumberOfOutputs() int {
	return s.nrOutputs
}

// TransferFunction returns the parameters of cell (row, col).
func (s *System) TransferFunction(row, col int) (tf.TransferFunction, error) {
	if err := s.checkCell(row, col); err != nil {
		return tf.TransferFunction{}, err
	}
	return s.grid[row][col], nil
}

// Grid returns a copy of the parameter grid.
func (s *System) Grid() [][]tf.TransferFunction {
	return copyGrid(s.grid)
}

// Model returns the realisation of cell (row, col). The system must be
// built.
func (s *System) Model(row, col int) (*ssm.LinearStateSpaceModel, error) {
	if st := s.State(); st != Built && st != Excited {
		return nil, fmt.Errorf("%w: system %q is %v, build it first", errs.ErrIllegalState, s.name, st)
	}
	if err := s.checkCell(row, col); err != nil {
		return nil, err
	}
	models := s.models.Load()
	if models == nil {
		return nil, fmt.Errorf("%w: system %q has no models", errs.ErrIllegalState, s.name)
	}
	return (*models)[row][col], nil
}

// DCGains returns the steady state gain of every cell, indexed like the grid.
// The system must be built.
func (s *System) DCGains() ([][]float64, error) {
	res := make([][]float64, s.nrOutputs)
	for row := range res {
		res[row] = make([]float64, s.nrInputs)
		for col := range res[row] {
			model, err := s.Model(row, col)
			if err != nil {
				return nil, err
			}
			if res[row][col], err = model.DCGain(); err != nil {
				return nil, fmt.Errorf("dc gain H_%d%d: %w", row, col, err)
			}
		}
	}
	return res, nil
}

func (s *System) checkCell(row, col int) error {
	if row < 0 || row >= s.nrOutputs || col < 0 || col >= s.nrInputs {
		return fmt.Errorf("%w: cell (%d, %d) outside %dx%d grid",
			errs.ErrDimensionMismatch, row, col, s.nrOutputs, s.nrInputs)
	}
	return nil
}

// Parameters returns the parameter dataset of the system.
func (s *System) Parameters() Parameters {
	return Parameters{
		Name:      s.name,
		NrInputs:  s.nrInputs,
		NrOutputs: s.nrOutputs,
		Grid:      s.Grid(),
	}
}
