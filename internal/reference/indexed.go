package reference

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/fai"
)

// IndexedSequence reads bases on demand from a plain FASTA file through a
// samtools-style fai index.
type IndexedSequence struct {
	name   string
	path   string
	file   *os.File
	fasta  *fai.File
	length int64
}

// OpenIndexed opens the sequence called name in the FASTA file at path.
// An existing path+".fai" index is used; otherwise the index is built in
// memory by scanning the file once.
func OpenIndexed(path, name string) (*IndexedSequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}

	idx, err := loadIndex(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	rec, ok := idx[name]
	if !ok {
		f.Close()
		return nil, fmt.Errorf("sequence %q not found in %s", name, path)
	}

	return &IndexedSequence{
		name:   name,
		path:   path,
		file:   f,
		fasta:  fai.NewFile(f, idx),
		length: int64(rec.Length),
	}, nil
}

// loadIndex reads path+".fai" when present, otherwise indexes f and rewinds it.
func loadIndex(path string, f *os.File) (fai.Index, error) {
	idxFile, err := os.Open(path + ".fai")
	if err == nil {
		defer idxFile.Close()
		idx, err := fai.ReadFrom(idxFile)
		if err != nil {
			return nil, fmt.Errorf("read fai index: %w", err)
		}
		return idx, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open fai index: %w", err)
	}

	idx, err := fai.NewIndex(f)
	if err != nil {
		return nil, fmt.Errorf("index FASTA file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind FASTA file: %w", err)
	}
	return idx, nil
}

// Name returns the sequence name.
func (s *IndexedSequence) Name() string {
	return s.name
}

// Len returns the sequence length.
func (s *IndexedSequence) Len() int64 {
	return s.length
}

// Fetch returns the bases in [start, end).
func (s *IndexedSequence) Fetch(start, end int64) (string, error) {
	if err := checkRange(s.name, start, end, s.length); err != nil {
		return "", err
	}

	seq, err := s.fasta.SeqRange(s.name, int(start), int(end))
	if err != nil {
		return "", fmt.Errorf("fetch %s:%d-%d: %w", s.name, start, end, err)
	}
	b, err := io.ReadAll(seq)
	if err != nil {
		return "", fmt.Errorf("read %s:%d-%d: %w", s.name, start, end, err)
	}
	return string(b), nil
}

// Close closes the underlying FASTA file.
func (s *IndexedSequence) Close() error {
	return s.file.Close()
}
