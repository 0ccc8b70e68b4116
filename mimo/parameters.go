package mimo

import (
	"fmt"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/tf"
)

// Parameters is the serialisable parameter dataset of a system, keyed by
// Name.
type Parameters struct {
	Name      string                  `yaml:"name" json:"name"`
	NrInputs  int                     `yaml:"nr_inputs" json:"nr_inputs"`
	NrOutputs int                     `yaml:"nr_outputs" json:"nr_outputs"`
	Grid      [][]tf.TransferFunction `yaml:"grid" json:"grid"`
}

// Validate checks the declared dimensions against the grid and every cell.
func (p Parameters) Validate() error {
	if p.NrInputs < 1 || p.NrOutputs < 1 {
		return fmt.Errorf("%w: %d inputs and %d outputs", errs.ErrInvalidConfiguration, p.NrInputs, p.NrOutputs)
	}
	if len(p.Grid) != p.NrOutputs {
		return fmt.Errorf("%w: grid has %d rows, want nr_outputs %d", errs.ErrInvalidConfiguration, len(p.Grid), p.NrOutputs)
	}
	for row := range p.Grid {
		if len(p.Grid[row]) != p.NrInputs {
			return fmt.Errorf("%w: grid row %d has %d columns, want nr_inputs %d",
				errs.ErrInvalidConfiguration, row, len(p.Grid[row]), p.NrInputs)
		}
	}
	return validateGrid(p.Grid)
}
