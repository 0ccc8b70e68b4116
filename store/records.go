package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/HaoMAFRLu/toy-mimo-system/errs"
	"github.com/HaoMAFRLu/toy-mimo-system/signal"
)

// SystemInfo summarises a stored system.
type SystemInfo struct {
	ID        string
	NrInputs  int
	NrOutputs int
	CreatedAt time.Time
}

// Response is the response dataset of one excitation: the outputs Y of
// system SystemID to the inputs U of signal SignalName, sampled at T.
type Response struct {
	ID         string      `json:"id"`
	SystemID   string      `json:"system_id"`
	SignalName string      `json:"signal_name"`
	U          [][]float64 `json:"u"`
	Y          [][]float64 `json:"y"`
	T          []float64   `json:"t"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Validate checks that T holds valid time stamps and that U and Y each have
// at least one row of len(T) samples.
func (r Response) Validate() error {
	if err := signal.ValidateTimeStamps(r.T); err != nil {
		return err
	}
	for name, rows := range map[string][][]float64{"u": r.U, "y": r.Y} {
		if len(rows) == 0 {
			return fmt.Errorf("%w: response has no %s rows", errs.ErrDimensionMismatch, name)
		}
		for index, row := range rows {
			if len(row) != len(r.T) {
				return fmt.Errorf("%w: %s row %d has %d samples for %d time stamps",
					errs.ErrDimensionMismatch, name, index, len(row), len(r.T))
			}
		}
	}
	return nil
}

func marshalColumn(name string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	return string(b), nil
}

func unmarshalColumn(name, data string, v any) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
