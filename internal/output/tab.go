// Package output provides writers for reconciled SNP tables.
package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/inodb/vibe-fpsnp/internal/variant"
)

// VariantWriter defines the interface for writing validated records.
type VariantWriter interface {
	WriteHeader() error
	Write(v *variant.Validated) error
	Flush() error
}

// TabWriter writes records in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer with the
// CHROM POS ID REF ALT header.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w:       bufio.NewWriter(w),
		columns: variant.Columns,
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	return tw.WriteRecord(tw.columns)
}

// Write writes a single validated record.
func (tw *TabWriter) Write(v *variant.Validated) error {
	return tw.WriteRecord(v.Fields())
}

// WriteRecord writes one row of already formatted fields.
func (tw *TabWriter) WriteRecord(fields []string) error {
	_, err := tw.w.WriteString(strings.Join(fields, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
