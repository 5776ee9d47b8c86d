package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/inodb/vibe-fpsnp/internal/variant"
)

// VCFWriter writes validated records as a sites-only VCF.
type VCFWriter struct {
	w        *bufio.Writer
	assembly string
	source   string
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer, assembly, source string) *VCFWriter {
	return &VCFWriter{
		w:        bufio.NewWriter(w),
		assembly: assembly,
		source:   source,
	}
}

// WriteHeader writes the meta lines and the #CHROM line.
func (vw *VCFWriter) WriteHeader() error {
	lines := []string{"##fileformat=VCFv4.2"}
	if vw.source != "" {
		lines = append(lines, "##source="+vw.source)
	}
	if vw.assembly != "" {
		lines = append(lines, "##reference="+vw.assembly)
	}
	lines = append(lines, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO")

	for _, line := range lines {
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes one data line with empty QUAL, FILTER and INFO.
func (vw *VCFWriter) Write(v *variant.Validated) error {
	id := v.ID
	if id == "" {
		id = "."
	}
	_, err := fmt.Fprintf(vw.w, "%s\t%d\t%s\t%s\t%s\t.\t.\t.\n", v.Chrom, v.Pos, id, v.Ref, v.Alt)
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}
