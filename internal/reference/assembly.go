package reference

import (
	"fmt"
	"strings"
)

// Assembly names a reference genome build.
type Assembly string

const (
	GRCh38 Assembly = "GRCh38"
	GRCh37 Assembly = "GRCh37"
)

// ParseAssembly returns the known assembly matching s, case-insensitively.
func ParseAssembly(s string) (Assembly, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grch38", "hg38":
		return GRCh38, nil
	case "grch37", "hg19":
		return GRCh37, nil
	default:
		return "", fmt.Errorf("unknown assembly %q (expected GRCh38 or GRCh37)", s)
	}
}
