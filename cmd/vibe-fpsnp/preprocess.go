package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-fpsnp/internal/reshape"
)

func newPreprocessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preprocess <raw-table>",
		Short: "Reshape the raw SNP panel into a CHROM POS ID REF ALT table",
		Long: `Reshape the raw tab-delimited SNP panel (chromosome, GB37_position,
GB38_position, rs#, allele1, allele2) into a normalized table.

Chromosome 23 rows are dropped. The result is written as
` + reshape.OutputName + ` in the directory of the input file.`,
		Example: `  vibe-fpsnp preprocess FP_SNPs.txt`,
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPreprocess(args[0])
		},
	}
}

func (a *app) runPreprocess(inputPath string) error {
	outPath, stats, err := reshape.ReshapeFile(inputPath)
	if err != nil {
		return err
	}

	a.logger.Debug("reshaped raw table",
		zap.String("input", inputPath),
		zap.Int("read", stats.Read),
		zap.Int("written", stats.Written),
		zap.Int("excluded", stats.Excluded))

	fmt.Fprintf(a.stdout, "Preprocessed table saved: %s\n", outPath)
	return nil
}
