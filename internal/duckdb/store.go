// Package duckdb records reconciliation runs and their per-record
// dispositions in a DuckDB database, so rejected SNPs can be queried across
// runs.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding runs and dispositions.
type Store struct {
	db *sql.DB
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR PRIMARY KEY,
			started_at TIMESTAMP,
			input_path VARCHAR,
			input_size BIGINT,
			input_mtime TIMESTAMP,
			reference_dir VARCHAR,
			assembly VARCHAR,
			total BIGINT,
			accepted BIGINT,
			rejected BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS dispositions (
			run_id VARCHAR,
			seq BIGINT,
			chrom VARCHAR,
			pos BIGINT,
			id VARCHAR,
			allele_a VARCHAR,
			allele_b VARCHAR,
			ref_base VARCHAR,
			ref VARCHAR,
			alt VARCHAR,
			disposition VARCHAR,
			PRIMARY KEY (run_id, seq)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
