package reconcile

import (
	"fmt"

	"github.com/inodb/vibe-fpsnp/internal/variant"
)

// Disposition is the per-record verdict of reconciliation.
type Disposition int

const (
	// Accepted means the reference base equals one of the candidates.
	Accepted Disposition = iota
	// RejectedMismatch means the reference base equals neither candidate.
	RejectedMismatch
)

func (d Disposition) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case RejectedMismatch:
		return "rejected_mismatch"
	default:
		return fmt.Sprintf("disposition(%d)", int(d))
	}
}

// Outcome is the tagged result of processing one record: Accepted with a
// validated record, Rejected with the observed base, or Fatal with an error.
type Outcome struct {
	Disposition Disposition
	Validated   *variant.Validated // set when Accepted
	Base        string             // uppercased reference base, when fetched
	Err         error              // set when Fatal
}

// Fatal reports whether the outcome aborts the run.
func (o Outcome) Fatal() bool {
	return o.Err != nil
}

// Decision is an Outcome together with the record it was computed for.
type Decision struct {
	Index     int
	Candidate *variant.Candidate
	Outcome
}

// Classify compares the reference base against both candidates. base must
// already be uppercased. When both candidates equal base the first wins.
func Classify(c *variant.Candidate, base string) Outcome {
	switch base {
	case c.AlleleA:
		return Outcome{
			Disposition: Accepted,
			Base:        base,
			Validated:   &variant.Validated{Chrom: c.Chrom, Pos: c.Pos, ID: c.ID, Ref: c.AlleleA, Alt: c.AlleleB},
		}
	case c.AlleleB:
		return Outcome{
			Disposition: Accepted,
			Base:        base,
			Validated:   &variant.Validated{Chrom: c.Chrom, Pos: c.Pos, ID: c.ID, Ref: c.AlleleB, Alt: c.AlleleA},
		}
	default:
		return Outcome{Disposition: RejectedMismatch, Base: base}
	}
}
