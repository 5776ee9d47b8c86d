// Package reconcile validates candidate SNP alleles against a reference
// assembly, ordering each pair so that REF is the assembly base.
package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-fpsnp/internal/audit"
	"github.com/inodb/vibe-fpsnp/internal/reference"
	"github.com/inodb/vibe-fpsnp/internal/variant"
)

// Result holds the accepted records of a successful run.
type Result struct {
	Total    int
	Accepted []*variant.Validated // input order
	Rejected int
}

// Reconciler resolves reference bases and reconciles candidate alleles.
type Reconciler struct {
	provider reference.Provider
	recorder audit.Recorder
	assembly string
	observe  func(Decision)
	logger   *zap.Logger
}

// New creates a reconciler reading bases from provider and reporting
// rejections and the run summary to recorder.
func New(provider reference.Provider, recorder audit.Recorder) *Reconciler {
	if recorder == nil {
		recorder = audit.Nop()
	}
	return &Reconciler{
		provider: provider,
		recorder: recorder,
		assembly: string(reference.GRCh38),
		logger:   zap.NewNop(),
	}
}

// SetAssembly sets the assembly name quoted in rejection lines.
func (r *Reconciler) SetAssembly(name string) {
	r.assembly = name
}

// SetObserver registers fn to receive every non-fatal decision in input order.
func (r *Reconciler) SetObserver(fn func(Decision)) {
	r.observe = fn
}

// SetLogger sets the logger for debug messages.
func (r *Reconciler) SetLogger(l *zap.Logger) {
	r.logger = l
}

// ReconcileFrom reads every candidate from reader, then reconciles them.
func (r *Reconciler) ReconcileFrom(reader variant.Reader) (*Result, error) {
	candidates, err := variant.ReadAll(reader)
	if err != nil {
		return nil, &variant.InputReadError{Err: err}
	}
	return r.Reconcile(candidates)
}

// Reconcile processes candidates in order. Mismatches are dropped and
// counted; any other failure aborts the run and no result is returned.
func (r *Reconciler) Reconcile(candidates []*variant.Candidate) (*Result, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyInput
	}

	r.recorder.Record(audit.Event{
		Kind:    audit.Start,
		Message: fmt.Sprintf("Processing %d SNPs...", len(candidates)),
	})

	seqs := newSequenceScope(r.provider, candidates)
	defer seqs.closeAll()

	res := &Result{Total: len(candidates)}

	for i, c := range candidates {
		out := r.process(seqs, c)
		seqs.release(i)

		if out.Fatal() {
			return nil, out.Err
		}

		switch out.Disposition {
		case Accepted:
			res.Accepted = append(res.Accepted, out.Validated)
		case RejectedMismatch:
			res.Rejected++
			r.recorder.Record(audit.Event{
				Kind: audit.Rejection,
				Message: fmt.Sprintf("%s (%s): %s = %s, REF = %s, ALT = %s, removed",
					c.ID, c.Location(), r.assembly, out.Base, c.AlleleA, c.AlleleB),
			})
		}

		if r.observe != nil {
			r.observe(Decision{Index: i, Candidate: c, Outcome: out})
		}
	}

	if res.Rejected > 0 {
		r.recorder.Record(audit.Event{
			Kind:    audit.Summary,
			Message: fmt.Sprintf("Removed %d SNPs with alleles not matching the reference.", res.Rejected),
		})
	} else {
		r.recorder.Record(audit.Event{
			Kind:    audit.Summary,
			Message: "All SNPs match the reference.",
		})
	}

	return res, nil
}

// process resolves the base for one record and classifies it.
func (r *Reconciler) process(seqs *sequenceScope, c *variant.Candidate) Outcome {
	seq, err := seqs.get(c.Chrom)
	if err != nil {
		if errors.Is(err, reference.ErrNoSequence) {
			return Outcome{Err: &MissingReferenceError{Chrom: c.Chrom, Err: err}}
		}
		return Outcome{Err: &RecordFetchError{ID: c.ID, Chrom: c.Chrom, Pos: c.Pos, Err: err}}
	}

	// 1-based position -> 0-based half-open [pos-1, pos)
	base, err := seq.Fetch(c.Pos-1, c.Pos)
	if err != nil {
		return Outcome{Err: &RecordFetchError{ID: c.ID, Chrom: c.Chrom, Pos: c.Pos, Err: err}}
	}

	r.logger.Debug("fetched reference base",
		zap.String("id", c.ID),
		zap.String("chrom", c.Chrom),
		zap.Int64("pos", c.Pos),
		zap.String("base", base))

	return Classify(c, strings.ToUpper(base))
}

// sequenceScope opens each chromosome once and closes it after the last
// record that needs it.
type sequenceScope struct {
	provider reference.Provider
	open     map[string]reference.Sequence
	lastUse  map[string]int
	names    []string // sequence name per record index
}

func newSequenceScope(p reference.Provider, candidates []*variant.Candidate) *sequenceScope {
	s := &sequenceScope{
		provider: p,
		open:     make(map[string]reference.Sequence),
		lastUse:  make(map[string]int),
		names:    make([]string, len(candidates)),
	}
	for i, c := range candidates {
		name := reference.SequenceName(c.Chrom)
		s.names[i] = name
		s.lastUse[name] = i
	}
	return s
}

func (s *sequenceScope) get(chrom string) (reference.Sequence, error) {
	name := reference.SequenceName(chrom)
	if seq, ok := s.open[name]; ok {
		return seq, nil
	}
	seq, err := s.provider.Open(chrom)
	if err != nil {
		return nil, err
	}
	s.open[name] = seq
	return seq, nil
}

// release closes the sequence used by record i if no later record needs it.
func (s *sequenceScope) release(i int) {
	name := s.names[i]
	if s.lastUse[name] != i {
		return
	}
	if seq, ok := s.open[name]; ok {
		seq.Close()
		delete(s.open, name)
	}
}

func (s *sequenceScope) closeAll() {
	for name, seq := range s.open {
		seq.Close()
		delete(s.open, name)
	}
}
