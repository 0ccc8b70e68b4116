package store

import (
	"context"
	"fmt"

	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"github.com/HaoMAFRLu/toy-mimo-system/signal"
	"github.com/google/uuid"
)

// WriteSystem stores the parameter dataset of a system under p.Name.
// Writing the same name again replaces the parameters.
func (s *Store) WriteSystem(ctx context.Context, p mimo.Parameters) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("write system: %w", err)
	}
	params, err := marshalColumn("params", p)
	if err != nil {
		return fmt.Errorf("write system: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO systems (id, nr_inputs, nr_outputs, params, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			nr_inputs = excluded.nr_inputs,
			nr_outputs = excluded.nr_outputs,
			params = excluded.params
	`,
		p.Name,
		p.NrInputs,
		p.NrOutputs,
		params,
		s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("write system: %w", err)
	}
	return nil
}

// WriteSignal stores an excitation dataset under e.Name, replacing an
// earlier one of the same name.
func (s *Store) WriteSignal(ctx context.Context, e signal.Excitation) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("write signal: %w", err)
	}
	t, err := marshalColumn("t", e.T)
	if err != nil {
		return fmt.Errorf("write signal: %w", err)
	}
	u, err := marshalColumn("u", e.U)
	if err != nil {
		return fmt.Errorf("write signal: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO signals (name, nr_inputs, samples, t, u)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			nr_inputs = excluded.nr_inputs,
			samples = excluded.samples,
			t = excluded.t,
			u = excluded.u
	`,
		e.Name,
		e.NumberOfInputs(),
		len(e.T),
		t,
		u,
	)
	if err != nil {
		return fmt.Errorf("write signal: %w", err)
	}
	return nil
}

// WriteResponse stores a response and returns its identifier. An empty
// r.ID is replaced by a fresh UUIDv7. The system must have been written
// before, and every row of U and Y must have one sample per time stamp.
func (s *Store) WriteResponse(ctx context.Context, r Response) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("write response: %w", err)
	}
	if r.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("write response: %w", err)
		}
		r.ID = id.String()
	}
	u, err := marshalColumn("u", r.U)
	if err != nil {
		return "", fmt.Errorf("write response: %w", err)
	}
	y, err := marshalColumn("y", r.Y)
	if err != nil {
		return "", fmt.Errorf("write response: %w", err)
	}
	t, err := marshalColumn("t", r.T)
	if err != nil {
		return "", fmt.Errorf("write response: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO responses (id, system_id, signal_name, u, y, t, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.SystemID,
		r.SignalName,
		u,
		y,
		t,
		s.timestamp(),
	)
	if err != nil {
		return "", fmt.Errorf("write response: %w", err)
	}
	return r.ID, nil
}
