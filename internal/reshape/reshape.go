// Package reshape converts a raw fingerprinting-SNP table into the
// normalized CHROM POS ID REF ALT table.
package reshape

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/inodb/vibe-fpsnp/internal/output"
	"github.com/inodb/vibe-fpsnp/internal/variant"
)

// Raw table column names.
const (
	ColChromosome = "chromosome"
	ColGB37       = "GB37_position"
	ColGB38       = "GB38_position"
	ColRsID       = "rs#"
	ColAllele1    = "allele1"
	ColAllele2    = "allele2"
)

// OutputName is the fixed name of the normalized table, written next to the
// raw input.
const OutputName = "FP_SNPs_10k_GB38_twoAllelsFormat.tsv"

// excludedChromosome is the sex chromosome code; it has no general-build
// support and is dropped.
const excludedChromosome = "23"

var requiredColumns = []string{ColChromosome, ColGB37, ColGB38, ColRsID, ColAllele1, ColAllele2}

// Stats counts rows through a reshape.
type Stats struct {
	Read     int
	Written  int
	Excluded int
}

// Reshape reads a tab-delimited raw table from r and writes the normalized
// table to w. Values are carried as text; nothing is re-formatted.
func Reshape(r io.Reader, w io.Writer) (Stats, error) {
	df, err := load(r)
	if err != nil {
		return Stats{}, err
	}
	if df.Ncol() == 0 {
		return Stats{}, writeRecords(w, [][]string{variant.Columns})
	}
	stats := Stats{Read: df.Nrow()}

	df, err = transform(df)
	if err != nil {
		return Stats{}, err
	}
	stats.Written = df.Nrow()
	stats.Excluded = stats.Read - stats.Written

	// Records() starts with the header row, already in table column order.
	if err := writeRecords(w, df.Records()); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func writeRecords(w io.Writer, records [][]string) error {
	tw := output.NewTabWriter(w)
	for _, rec := range records {
		if err := tw.WriteRecord(rec); err != nil {
			return fmt.Errorf("write normalized table: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush normalized table: %w", err)
	}
	return nil
}

// ReshapeFile reshapes the raw table at inputPath and writes OutputName in
// the same directory. It returns the absolute output path.
func ReshapeFile(inputPath string) (string, Stats, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return "", Stats{}, &variant.InputReadError{Path: inputPath, Err: err}
	}
	defer f.Close()

	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return "", Stats{}, fmt.Errorf("resolve input path: %w", err)
	}
	outPath := filepath.Join(filepath.Dir(abs), OutputName)

	var stats Stats
	err = output.WriteFile(outPath, func(w io.Writer) error {
		var err error
		stats, err = Reshape(f, w)
		return err
	})
	if err != nil {
		var ire *variant.InputReadError
		if errors.As(err, &ire) && ire.Path == "" {
			ire.Path = inputPath
		}
		return "", Stats{}, err
	}

	return outPath, stats, nil
}

// load parses the raw table with every column typed as string and no
// value treated as missing. The header is read as a data row so a table
// without records still has its columns checked; it is then returned as an
// empty DataFrame with no columns.
func load(r io.Reader) (dataframe.DataFrame, error) {
	raw := dataframe.ReadCSV(r,
		dataframe.WithDelimiter('\t'),
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if raw.Err != nil {
		return raw, &variant.InputReadError{Err: raw.Err}
	}

	names := raw.Names()
	header := make([]string, len(names))
	present := make(map[string]bool)
	for i, name := range names {
		header[i] = raw.Col(name).Elem(0).String()
		present[header[i]] = true
	}
	for _, name := range requiredColumns {
		if !present[name] {
			return raw, &variant.InputReadError{Err: fmt.Errorf("required column '%s' not found in header", name)}
		}
	}

	if raw.Nrow() == 1 {
		return dataframe.DataFrame{}, nil
	}
	rows := make([]int, raw.Nrow()-1)
	for i := range rows {
		rows[i] = i + 1
	}
	df := raw.Subset(rows)
	if err := df.SetNames(header...); err != nil {
		return df, &variant.InputReadError{Err: err}
	}
	if df.Err != nil {
		return df, &variant.InputReadError{Err: df.Err}
	}
	return df, nil
}

// transform drops the GRCh37 position, filters chromosome 23, and derives
// the CHROM POS ID REF ALT columns.
func transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	df = df.Drop(ColGB37)
	df = df.Filter(dataframe.F{
		Colname:    ColChromosome,
		Comparator: series.Neq,
		Comparando: excludedChromosome,
	})

	df = df.Mutate(prefixed(df.Col(ColChromosome), "chr", variant.ColChrom))
	df = df.Mutate(prefixed(df.Col(ColRsID), "rs", variant.ColID))
	df = df.Rename(variant.ColPos, ColGB38)
	df = df.Rename(variant.ColRef, ColAllele1)
	df = df.Rename(variant.ColAlt, ColAllele2)
	df = df.Select(variant.Columns)

	if df.Err != nil {
		return df, &variant.InputReadError{Err: df.Err}
	}
	return df, nil
}

// prefixed returns a string series named name holding prefix+value.
func prefixed(s series.Series, prefix, name string) series.Series {
	values := s.Records()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = prefix + v
	}
	return series.New(out, series.String, name)
}
