package reconcile

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the normalized table has no records.
var ErrEmptyInput = errors.New("input table is empty")

// MissingReferenceError reports a chromosome with no sequence file. The run
// is aborted: every remaining record on that chromosome is unverifiable.
type MissingReferenceError struct {
	Chrom string
	Err   error
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("missing reference for %s: %v", e.Chrom, e.Err)
}

func (e *MissingReferenceError) Unwrap() error {
	return e.Err
}

// RecordFetchError reports a failure to obtain the reference base for a
// record, such as a coordinate outside the chromosome.
type RecordFetchError struct {
	ID    string
	Chrom string
	Pos   int64
	Err   error
}

func (e *RecordFetchError) Error() string {
	return fmt.Sprintf("fetch reference base for %s (%s:%d): %v", e.ID, e.Chrom, e.Pos, e.Err)
}

func (e *RecordFetchError) Unwrap() error {
	return e.Err
}
