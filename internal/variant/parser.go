package variant

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ColumnIndices holds the indices of the normalized table columns.
type ColumnIndices struct {
	Chrom int
	Pos   int
	ID    int
	Ref   int
	Alt   int
}

// Parser reads candidates from a normalized tab-delimited table.
// A VCF-style "#CHROM" header and "##" meta lines are accepted, so a
// reconciled VCF can be read back as input.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	columns    ColumnIndices
}

// NewParser creates a new parser for the given file.
// Supports both plain and gzipped tables.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read table header: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek table: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// readLine returns the next line without its terminator. It returns io.EOF
// only when no bytes remain.
func (p *Parser) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if err != io.EOF || line == "" {
			return "", err
		}
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

// parseHeader reads the header line and resolves column indices.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.readLine()
		if err != nil {
			if err == io.EOF {
				return &ParseError{
					Line:    p.lineNumber,
					Message: "no header line found",
				}
			}
			return fmt.Errorf("read header: %w", err)
		}

		// Skip meta lines and blank lines
		if strings.HasPrefix(line, "##") || strings.TrimSpace(line) == "" {
			continue
		}

		return p.parseColumnIndices(strings.TrimPrefix(line, "#"))
	}
}

// parseColumnIndices parses the header line to find column indices.
func (p *Parser) parseColumnIndices(headerLine string) error {
	p.columns = ColumnIndices{Chrom: -1, Pos: -1, ID: -1, Ref: -1, Alt: -1}

	for i, col := range strings.Split(headerLine, "\t") {
		switch strings.TrimSpace(col) {
		case ColChrom:
			p.columns.Chrom = i
		case ColPos:
			p.columns.Pos = i
		case ColID:
			p.columns.ID = i
		case ColRef:
			p.columns.Ref = i
		case ColAlt:
			p.columns.Alt = i
		}
	}

	required := []struct {
		name string
		idx  int
	}{
		{ColChrom, p.columns.Chrom},
		{ColPos, p.columns.Pos},
		{ColID, p.columns.ID},
		{ColRef, p.columns.Ref},
		{ColAlt, p.columns.Alt},
	}
	for _, r := range required {
		if r.idx == -1 {
			return &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", r.name),
			}
		}
	}

	return nil
}

// Next reads the next candidate from the table.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Candidate, error) {
	for {
		line, err := p.readLine()
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read record line: %w", err)
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		return p.parseLine(line)
	}
}

// parseLine parses a single data line into a Candidate.
func (p *Parser) parseLine(line string) (*Candidate, error) {
	fields := strings.Split(line, "\t")

	minCols := max(p.columns.Chrom, p.columns.Pos, p.columns.ID, p.columns.Ref, p.columns.Alt)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	pos, err := strconv.ParseInt(strings.TrimSpace(fields[p.columns.Pos]), 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[p.columns.Pos]),
		}
	}

	return &Candidate{
		Chrom:   fields[p.columns.Chrom],
		Pos:     pos,
		ID:      fields[p.columns.ID],
		AlleleA: fields[p.columns.Ref],
		AlleleB: fields[p.columns.Alt],
	}, nil
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
