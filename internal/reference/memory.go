package reference

// MemorySequence is a sequence held entirely in memory.
type MemorySequence struct {
	name string
	seq  string
}

// NewMemorySequence wraps bases as a Sequence.
func NewMemorySequence(name, seq string) *MemorySequence {
	return &MemorySequence{name: name, seq: seq}
}

// Name returns the sequence name.
func (s *MemorySequence) Name() string {
	return s.name
}

// Len returns the sequence length.
func (s *MemorySequence) Len() int64 {
	return int64(len(s.seq))
}

// Fetch returns the bases in [start, end).
func (s *MemorySequence) Fetch(start, end int64) (string, error) {
	if err := checkRange(s.name, start, end, s.Len()); err != nil {
		return "", err
	}
	return s.seq[start:end], nil
}

// Close is a no-op.
func (s *MemorySequence) Close() error {
	return nil
}

// Memory is a Provider over a fixed set of in-memory sequences keyed by
// "chr<N>" name.
type Memory struct {
	sequences map[string]string
	opened    map[string]int
}

// NewMemory creates a provider from name -> bases.
func NewMemory(sequences map[string]string) *Memory {
	return &Memory{
		sequences: sequences,
		opened:    make(map[string]int),
	}
}

// Open returns the sequence for chrom.
func (m *Memory) Open(chrom string) (Sequence, error) {
	name := SequenceName(chrom)
	seq, ok := m.sequences[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	m.opened[name]++
	return NewMemorySequence(name, seq), nil
}

// OpenCount returns how many times the named sequence has been opened.
func (m *Memory) OpenCount(name string) int {
	return m.opened[name]
}
