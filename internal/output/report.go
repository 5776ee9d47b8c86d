package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/inodb/vibe-fpsnp/internal/reconcile"
)

// ReportWriter writes an aligned per-record disposition report.
type ReportWriter struct {
	w        *tabwriter.Writer
	accepted int
	swapped  int
	rejected int
	total    int
	showAll  bool // if false, only show rejections
}

// NewReportWriter creates a new disposition report writer.
func NewReportWriter(w io.Writer, showAll bool) *ReportWriter {
	return &ReportWriter{
		w:       tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		showAll: showAll,
	}
}

// WriteHeader writes the report header.
func (r *ReportWriter) WriteHeader() error {
	_, err := fmt.Fprintln(r.w, "ID\tLocation\tAllele_A\tAllele_B\tReference\tREF\tALT\tDisposition")
	return err
}

// WriteDecision writes one reconciled record.
func (r *ReportWriter) WriteDecision(d reconcile.Decision) error {
	r.total++

	ref, alt := "-", "-"
	switch d.Disposition {
	case reconcile.Accepted:
		r.accepted++
		ref, alt = d.Validated.Ref, d.Validated.Alt
		if ref != d.Candidate.AlleleA {
			r.swapped++
		}
	case reconcile.RejectedMismatch:
		r.rejected++
	}

	if !r.showAll && d.Disposition == reconcile.Accepted {
		return nil
	}

	c := d.Candidate
	_, err := fmt.Fprintf(r.w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		c.ID,
		c.Location(),
		c.AlleleA,
		c.AlleleB,
		d.Base,
		ref,
		alt,
		d.Disposition,
	)
	return err
}

// Flush flushes the writer.
func (r *ReportWriter) Flush() error {
	return r.w.Flush()
}

// WriteSummary writes a summary of the reconciliation.
func (r *ReportWriter) WriteSummary(w io.Writer) {
	acceptRate := float64(0)
	if r.total > 0 {
		acceptRate = float64(r.accepted) / float64(r.total) * 100
	}
	fmt.Fprintf(w, "\nReconciliation Summary:\n")
	fmt.Fprintf(w, "  Total SNPs:      %d\n", r.total)
	fmt.Fprintf(w, "  Accepted:        %d (%.1f%%)\n", r.accepted, acceptRate)
	fmt.Fprintf(w, "    REF/ALT swapped: %d\n", r.swapped)
	fmt.Fprintf(w, "  Rejected:        %d (%.1f%%)\n", r.rejected, 100-acceptRate)
}
