// Package reference provides read-only access to reference genome bases
// addressed by chromosome name and 0-based half-open coordinate range.
package reference

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrNoSequence is matched by errors reporting that no sequence data exists
// for a chromosome.
var ErrNoSequence = errors.New("no sequence data")

// Sequence is an open handle on a single chromosome sequence.
type Sequence interface {
	// Name returns the sequence name (e.g., "chr1").
	Name() string
	// Len returns the sequence length in bases.
	Len() int64
	// Fetch returns the bases in [start, end), 0-based half-open.
	Fetch(start, end int64) (string, error)
	// Close releases the handle.
	Close() error
}

// Provider resolves a chromosome to an open sequence handle.
type Provider interface {
	Open(chrom string) (Sequence, error)
}

// NotFoundError reports a chromosome without sequence data.
type NotFoundError struct {
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Name, ErrNoSequence)
	}
	return fmt.Sprintf("%s: %v (%s not found)", e.Name, ErrNoSequence, e.Path)
}

// Is reports whether target is ErrNoSequence.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNoSequence
}

// SequenceName returns the canonical "chr<N>" name for a chromosome given
// with or without the prefix.
func SequenceName(chrom string) string {
	return "chr" + strings.TrimPrefix(chrom, "chr")
}

// Dir provides sequences from a directory holding one FASTA file per
// chromosome, named chr<N>.fa (or chr<N>.fa.gz).
type Dir struct {
	path   string
	logger *zap.Logger
}

// NewDir creates a provider rooted at path.
func NewDir(path string) *Dir {
	return &Dir{
		path:   path,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (d *Dir) SetLogger(l *zap.Logger) {
	d.logger = l
}

// FASTAPath returns the conventional FASTA path for chrom.
func (d *Dir) FASTAPath(chrom string) string {
	return filepath.Join(d.path, SequenceName(chrom)+".fa")
}

// Open opens the sequence for chrom. Plain FASTA is read through its fai
// index; gzipped FASTA is loaded into memory.
func (d *Dir) Open(chrom string) (Sequence, error) {
	name := SequenceName(chrom)
	fa := d.FASTAPath(chrom)

	ok, err := fileExists(fa)
	if err != nil {
		return nil, err
	}
	if ok {
		d.logger.Debug("opening indexed FASTA", zap.String("sequence", name), zap.String("path", fa))
		return OpenIndexed(fa, name)
	}

	gz := fa + ".gz"
	ok, err = fileExists(gz)
	if err != nil {
		return nil, err
	}
	if ok {
		d.logger.Debug("loading gzipped FASTA", zap.String("sequence", name), zap.String("path", gz))
		loader := NewFASTALoader(gz)
		if err := loader.Load(); err != nil {
			return nil, err
		}
		seq, found := loader.Sequence(name)
		if !found {
			return nil, fmt.Errorf("sequence %q not found in %s", name, gz)
		}
		return seq, nil
	}

	return nil, &NotFoundError{Name: name, Path: fa}
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

// checkRange validates a 0-based half-open range against a sequence length.
func checkRange(name string, start, end, length int64) error {
	if start < 0 || end < start || end > length {
		return fmt.Errorf("range [%d,%d) out of bounds for %s (length %d)", start, end, name, length)
	}
	return nil
}
