package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-fpsnp/internal/reconcile"
)

// DispositionRecord is one reconciled SNP of a run.
type DispositionRecord struct {
	RunID       string
	Seq         int64 // 0-based input row
	Chrom       string
	Pos         int64
	ID          string
	AlleleA     string
	AlleleB     string
	RefBase     string
	Ref         string // empty when rejected
	Alt         string
	Disposition string
}

// FromDecision converts a reconciler decision into a row of run runID.
func FromDecision(runID string, d reconcile.Decision) DispositionRecord {
	c := d.Candidate
	rec := DispositionRecord{
		RunID:       runID,
		Seq:         int64(d.Index),
		Chrom:       c.Chrom,
		Pos:         c.Pos,
		ID:          c.ID,
		AlleleA:     c.AlleleA,
		AlleleB:     c.AlleleB,
		RefBase:     d.Base,
		Disposition: d.Disposition.String(),
	}
	if d.Validated != nil {
		rec.Ref = d.Validated.Ref
		rec.Alt = d.Validated.Alt
	}
	return rec
}

// WriteDispositions batch-inserts disposition rows using the Appender API.
func (s *Store) WriteDispositions(records []DispositionRecord) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "dispositions")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		if err := appender.AppendRow(
			r.RunID, r.Seq, r.Chrom, r.Pos, r.ID,
			r.AlleleA, r.AlleleB, r.RefBase, r.Ref, r.Alt, r.Disposition,
		); err != nil {
			return fmt.Errorf("append disposition %s: %w", r.ID, err)
		}
	}

	return appender.Flush()
}

// Rejections returns the rejected rows of a run in input order.
func (s *Store) Rejections(runID string) ([]DispositionRecord, error) {
	rows, err := s.db.Query(`SELECT `+dispositionColumns+`
		FROM dispositions
		WHERE run_id=? AND disposition=?
		ORDER BY seq`, runID, reconcile.RejectedMismatch.String())
	if err != nil {
		return nil, fmt.Errorf("query rejections: %w", err)
	}
	defer rows.Close()

	return scanDispositions(rows)
}

// LookupSNP returns every recorded disposition of the SNP with the given
// identifier, across runs.
func (s *Store) LookupSNP(id string) ([]DispositionRecord, error) {
	rows, err := s.db.Query(`SELECT d.run_id, d.seq, d.chrom, d.pos, d.id,
		d.allele_a, d.allele_b, d.ref_base, d.ref, d.alt, d.disposition
		FROM dispositions d JOIN runs r ON r.run_id = d.run_id
		WHERE d.id=?
		ORDER BY r.started_at, d.seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query snp: %w", err)
	}
	defer rows.Close()

	return scanDispositions(rows)
}

const dispositionColumns = `run_id, seq, chrom, pos, id,
	allele_a, allele_b, ref_base, ref, alt, disposition`

// scanDispositions scans rows into DispositionRecord slices.
func scanDispositions(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]DispositionRecord, error) {
	var records []DispositionRecord
	for rows.Next() {
		var r DispositionRecord
		if err := rows.Scan(
			&r.RunID, &r.Seq, &r.Chrom, &r.Pos, &r.ID,
			&r.AlleleA, &r.AlleleB, &r.RefBase, &r.Ref, &r.Alt, &r.Disposition,
		); err != nil {
			return nil, fmt.Errorf("scan disposition: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispositions: %w", err)
	}
	return records, nil
}
