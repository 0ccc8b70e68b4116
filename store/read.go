package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/HaoMAFRLu/toy-mimo-system/mimo"
	"github.com/HaoMAFRLu/toy-mimo-system/signal"
)

// ReadSystem returns the parameter dataset stored under id.
func (s *Store) ReadSystem(ctx context.Context, id string) (mimo.Parameters, error) {
	var params string
	err := s.db.QueryRowContext(ctx, `SELECT params FROM systems WHERE id = ?`, id).Scan(&params)
	if errors.Is(err, sql.ErrNoRows) {
		return mimo.Parameters{}, fmt.Errorf("read system %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return mimo.Parameters{}, fmt.Errorf("read system %q: %w", id, err)
	}

	var p mimo.Parameters
	if err := unmarshalColumn("params", params, &p); err != nil {
		return mimo.Parameters{}, fmt.Errorf("read system %q: %w", id, err)
	}
	return p, nil
}

// ListSystems returns all stored systems, oldest first.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSystems(ctx context.Context) ([]SystemInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nr_inputs, nr_outputs, created_at
		FROM systems
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query systems: %w", err)
	}
	defer rows.Close()

	infos := []SystemInfo{}
	for rows.Next() {
		var (
			info      SystemInfo
			createdAt int64
		)
		if err := rows.Scan(&info.ID, &info.NrInputs, &info.NrOutputs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan system: %w", err)
		}
		info.CreatedAt = time.Unix(0, createdAt).UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate systems: %w", err)
	}
	return infos, nil
}

// ReadSignal returns the excitation dataset stored under name.
func (s *Store) ReadSignal(ctx context.Context, name string) (signal.Excitation, error) {
	var t, u string
	err := s.db.QueryRowContext(ctx, `SELECT t, u FROM signals WHERE name = ?`, name).Scan(&t, &u)
	if errors.Is(err, sql.ErrNoRows) {
		return signal.Excitation{}, fmt.Errorf("read signal %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return signal.Excitation{}, fmt.Errorf("read signal %q: %w", name, err)
	}

	e := signal.Excitation{Name: name}
	if err := unmarshalColumn("t", t, &e.T); err != nil {
		return signal.Excitation{}, fmt.Errorf("read signal %q: %w", name, err)
	}
	if err := unmarshalColumn("u", u, &e.U); err != nil {
		return signal.Excitation{}, fmt.Errorf("read signal %q: %w", name, err)
	}
	return e, nil
}

// ReadResponse returns the response stored under id.
func (s *Store) ReadResponse(ctx context.Context, id string) (Response, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, system_id, signal_name, u, y, t, created_at
		FROM responses
		WHERE id = ?
	`, id)
	r, err := scanResponse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Response{}, fmt.Errorf("read response %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Response{}, fmt.Errorf("read response %q: %w", id, err)
	}
	return r, nil
}

// ListResponses returns the responses of a system, oldest first.
func (s *Store) ListResponses(ctx context.Context, systemID string) ([]Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, system_id, signal_name, u, y, t, created_at
		FROM responses
		WHERE system_id = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, systemID)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	responses := []Response{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}
	return responses, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResponse(row scanner) (Response, error) {
	var (
		r         Response
		u, y, t   string
		createdAt int64
	)
	if err := row.Scan(&r.ID, &r.SystemID, &r.SignalName, &u, &y, &t, &createdAt); err != nil {
		return Response{}, err
	}
	if err := unmarshalColumn("u", u, &r.U); err != nil {
		return Response{}, err
	}
	if err := unmarshalColumn("y", y, &r.Y); err != nil {
		return Response{}, err
	}
	if err := unmarshalColumn("t", t, &r.T); err != nil {
		return Response{}, err
	}
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return r, nil
}
