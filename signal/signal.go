// Package signal holds time stamp validation, the excitation dataset, excitation
// generators and the VectorFunction abstraction that feeds a scalar input
// into a state space model.
package signal

import (
	"fmt"
	"math"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
)

// ValidateTimeStamps checks that t is non-empty, finite and strictly
// increasing.
func ValidateTimeStamps(t []float64) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty time stamps", errs.ErrInvalidInput)
	}
	for index, v := range t {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: time stamp %d is %v", errs.ErrInvalidInput, index, v)
		}
		if index > 0 && v <= t[index-1] {
			return fmt.Errorf("%w: time stamps not strictly increasing at index %d (%v after %v)",
				errs.ErrInvalidInput, index, v, t[index-1])
		}
	}
	return nil
}

// Excitation is the excitation dataset: nr_inputs signals U sharing the time
// stamps T, stored under Name.
type Excitation struct {
	Name string      `yaml:"name" json:"name"`
	T    []float64   `yaml:"t" json:"t"`
	U    [][]float64 `yaml:"u" json:"u"`
}

// NumberOfInputs returns the number of rows of U.
func (e Excitation) NumberOfInputs() int {
	return len(e.U)
}

// Validate checks the time stamps and that every row of U has one value per
// time stamp.
func (e Excitation) Validate() error {
	if err := ValidateTimeStamps(e.T); err != nil {
		return err
	}
	if len(e.U) == 0 {
		return fmt.Errorf("%w: excitation %q has no input signals", errs.ErrDimensionMismatch, e.Name)
	}
	for row, u := range e.U {
		if len(u) != len(e.T) {
			return fmt.Errorf("%w: input %d has %d samples, want %d", errs.ErrDimensionMismatch, row, len(u), len(e.T))
		}
	}
	return nil
}
