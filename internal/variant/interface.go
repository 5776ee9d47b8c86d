package variant

import (
	"errors"
	"fmt"
)

// Reader is the interface for parsers that read candidate SNPs.
type Reader interface {
	// Next reads the next candidate.
	// Returns nil, nil when there are no more records.
	Next() (*Candidate, error)

	// Close closes the reader and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}

// ReadAll drains r and returns every candidate in input order. Errors
// without line context are wrapped with the reader's line number.
func ReadAll(r Reader) ([]*Candidate, error) {
	var out []*Candidate
	for {
		c, err := r.Next()
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				return nil, err
			}
			return nil, fmt.Errorf("line %d: %w", r.LineNumber(), err)
		}
		if c == nil {
			return out, nil
		}
		out = append(out, c)
	}
}
