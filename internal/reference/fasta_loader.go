package reference

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single FASTA line; unwrapped chromosome files keep
// the whole sequence on one line.
const maxLineSize = 512 * 1024 * 1024

// FASTALoader loads whole sequences from a FASTA file into memory.
type FASTALoader struct {
	path      string
	sequences map[string]string // sequence name -> bases
}

// NewFASTALoader creates a new FASTA loader.
func NewFASTALoader(path string) *FASTALoader {
	return &FASTALoader{
		path:      path,
		sequences: make(map[string]string),
	}
}

// Load parses the FASTA file and stores sequences indexed by name.
func (l *FASTALoader) Load() error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.parseFASTA(reader)
}

// parseFASTA parses FASTA content. Headers look like:
// >chr1  AC:CM000663.2  gi:568336023  LN:248956422  rl:Chromosome  M5:...
func (l *FASTALoader) parseFASTA(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	var currentName string
	var currentSeq strings.Builder
	var inRecord bool

	flush := func() {
		if inRecord {
			l.sequences[currentName] = currentSeq.String()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, ">") {
			flush()
			currentName = parseHeader(line)
			currentSeq.Reset()
			inRecord = true
			continue
		}
		currentSeq.WriteString(strings.TrimSpace(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan FASTA: %w", err)
	}

	return nil
}

// parseHeader extracts the sequence name: the header up to the first
// whitespace, as samtools faidx does.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if fields := strings.Fields(header); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Sequence returns an in-memory handle on the named sequence.
func (l *FASTALoader) Sequence(name string) (*MemorySequence, bool) {
	seq, ok := l.sequences[name]
	if !ok {
		return nil, false
	}
	return NewMemorySequence(name, seq), true
}

