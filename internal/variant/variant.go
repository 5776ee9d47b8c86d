// Package variant provides the fingerprinting SNP data model and the
// normalized variant table reader.
package variant

import "fmt"

// Normalized table column names. REF and ALT hold the unordered candidate
// alleles until the table has been reconciled against a reference.
const (
	ColChrom = "CHROM"
	ColPos   = "POS"
	ColID    = "ID"
	ColRef   = "REF"
	ColAlt   = "ALT"
)

// Columns is the header of both the normalized and the validated table.
var Columns = []string{ColChrom, ColPos, ColID, ColRef, ColAlt}

// Candidate is a normalized SNP whose two alleles have not yet been
// assigned reference and alternate roles.
type Candidate struct {
	Chrom   string // Chromosome name (e.g., "chr12")
	Pos     int64  // 1-based position in the target assembly
	ID      string // rs identifier (e.g., "rs123")
	AlleleA string // First candidate allele as declared by the source
	AlleleB string // Second candidate allele as declared by the source
}

// Validated is a SNP whose Ref equals the assembly base at its position.
type Validated struct {
	Chrom string
	Pos   int64
	ID    string
	Ref   string
	Alt   string
}

// Location returns the chrom:pos form used in log lines.
func (c *Candidate) Location() string {
	return fmt.Sprintf("%s:%d", c.Chrom, c.Pos)
}

// Fields returns the record in table column order.
func (v *Validated) Fields() []string {
	return []string{v.Chrom, fmt.Sprintf("%d", v.Pos), v.ID, v.Ref, v.Alt}
}
