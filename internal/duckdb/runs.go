package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one successful reconciliation of an input table.
type Run struct {
	ID           string
	StartedAt    time.Time
	Input        FileFingerprint
	ReferenceDir string
	Assembly     string
	Total        int
	Accepted     int
	Rejected     int
}

// NewRun starts a run with a fresh id.
func NewRun(input FileFingerprint, referenceDir, assembly string) *Run {
	return &Run{
		ID:           uuid.NewString(),
		StartedAt:    time.Now().UTC(),
		Input:        input,
		ReferenceDir: referenceDir,
		Assembly:     assembly,
	}
}

// WriteRun inserts a run row.
func (s *Store) WriteRun(r *Run) error {
	_, err := s.db.Exec(`INSERT INTO runs (
		run_id, started_at, input_path, input_size, input_mtime,
		reference_dir, assembly, total, accepted, rejected
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt, r.Input.Path, r.Input.Size, r.Input.ModTime,
		r.ReferenceDir, r.Assembly, int64(r.Total), int64(r.Accepted), int64(r.Rejected),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// SaveRun writes a run and its dispositions. If the dispositions cannot be
// appended the run row is removed again, so a run is either stored whole or
// not at all.
func (s *Store) SaveRun(r *Run, records []DispositionRecord) error {
	if err := s.WriteRun(r); err != nil {
		return err
	}
	if err := s.WriteDispositions(records); err != nil {
		if derr := s.DeleteRun(r.ID); derr != nil {
			return errors.Join(err, derr)
		}
		return err
	}
	return nil
}

// DeleteRun removes a run and its dispositions in one transaction.
func (s *Store) DeleteRun(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM dispositions WHERE run_id=?`, id); err != nil {
		return fmt.Errorf("delete dispositions of run %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM runs WHERE run_id=?`, id); err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return tx.Commit()
}

// GetRun returns the run with the given id, or nil if there is none.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id=?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	return r, nil
}

// Runs returns all runs, oldest first.
func (s *Store) Runs() ([]*Run, error) {
	rows, err := s.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

const runColumns = `run_id, started_at, input_path, input_size, input_mtime,
	reference_dir, assembly, total, accepted, rejected`

func scanRun(row interface{ Scan(dest ...any) error }) (*Run, error) {
	var r Run
	var total, accepted, rejected int64
	if err := row.Scan(
		&r.ID, &r.StartedAt, &r.Input.Path, &r.Input.Size, &r.Input.ModTime,
		&r.ReferenceDir, &r.Assembly, &total, &accepted, &rejected,
	); err != nil {
		return nil, err
	}
	r.Total, r.Accepted, r.Rejected = int(total), int(accepted), int(rejected)
	return &r, nil
}
