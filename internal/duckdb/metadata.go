package duckdb

import (
	"os"
	"path/filepath"
	"time"
)

// FileFingerprint holds stat-based identity for a run's input table.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StdinPath names standard input as a run's input table.
const StdinPath = "-"

// StatFile creates a FileFingerprint from an on-disk file. The path is made
// absolute so runs started from different directories compare equal.
// Standard input has no size or modification time.
func StatFile(path string) (FileFingerprint, error) {
	if path == StdinPath {
		return FileFingerprint{Path: StdinPath}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
	}, nil
}
