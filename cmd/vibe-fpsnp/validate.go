package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-fpsnp/internal/audit"
	"github.com/inodb/vibe-fpsnp/internal/duckdb"
	"github.com/inodb/vibe-fpsnp/internal/output"
	"github.com/inodb/vibe-fpsnp/internal/reconcile"
	"github.com/inodb/vibe-fpsnp/internal/reference"
	"github.com/inodb/vibe-fpsnp/internal/variant"
)

type validateOptions struct {
	output    string
	report    string
	reportAll bool
}

func newValidateCmd(a *app) *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate <normalized-table> <fasta-dir>",
		Short: "Validate SNP alleles against per-chromosome reference FASTA files",
		Long: `Validate each SNP of a normalized CHROM POS ID REF ALT table against the
reference base at its position, read from <fasta-dir>/chr<N>.fa (a .fai
index is used when present; chr<N>.fa.gz is accepted as a fallback).

The allele matching the reference base becomes REF. SNPs matching neither
allele are dropped and logged. An audit log with the output's base name
and a .log extension is appended beside the output and echoed to stdout.
Pass - as <normalized-table> to read it from standard input.

With --db the run and every SNP's disposition are recorded in a DuckDB
database; see the runs and lookup commands.`,
		Example: `  vibe-fpsnp validate FP_SNPs_10k_GB38_twoAllelsFormat.tsv /ref/hg38 -o fp_snps.tsv
  vibe-fpsnp validate --format vcf -o fp_snps.vcf table.tsv /ref/hg38
  vibe-fpsnp validate --report rejected.txt --db runs.duckdb -o fp_snps.tsv table.tsv /ref/hg38`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output == "" {
				return &usageError{errors.New("required flag \"output\" not set")}
			}
			return a.runValidate(args[0], args[1], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output table path (required)")
	f.String("format", "tsv", "Output format: tsv, vcf")
	f.StringVar(&opts.report, "report", "", "Write a per-SNP disposition report to this path")
	f.BoolVar(&opts.reportAll, "report-all", false, "Include accepted SNPs in the report (default: rejections only)")
	f.String("db", "", "Record the run and its dispositions in this DuckDB database")
	bindFlags(f, map[string]string{
		"format": "validate.format",
		"db":     "validate.db",
	})

	return cmd
}

func (a *app) runValidate(inputPath, fastaDir string, opts validateOptions) (err error) {
	assembly, err := reference.ParseAssembly(viper.GetString("assembly"))
	if err != nil {
		return &usageError{err}
	}
	format := strings.ToLower(viper.GetString("validate.format"))
	if format != "tsv" && format != "vcf" {
		return &usageError{fmt.Errorf("unknown output format %q (expected tsv or vcf)", format)}
	}

	outPath, err := filepath.Abs(opts.output)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	logPath := audit.LogPath(outPath)
	if logPath == outPath {
		return &usageError{fmt.Errorf("output %s would be overwritten by its own audit log", opts.output)}
	}
	if opts.report != "" {
		reportPath, err := filepath.Abs(opts.report)
		if err != nil {
			return fmt.Errorf("resolve report path: %w", err)
		}
		if reportPath == outPath || reportPath == logPath {
			return &usageError{fmt.Errorf("report %s collides with the output or its audit log", opts.report)}
		}
	}

	log, err := audit.Open(logPath, a.stdout)
	if err != nil {
		return err
	}
	defer log.Close()
	defer func() {
		if err != nil {
			log.Record(audit.Event{Kind: audit.Fatal, Message: fatalMessage(err)})
		}
	}()

	a.logger.Debug("starting validation",
		zap.String("input", inputPath),
		zap.String("fasta_dir", fastaDir),
		zap.String("output", outPath),
		zap.String("assembly", string(assembly)))

	parser, err := variant.NewParser(inputPath)
	if err != nil {
		return &variant.InputReadError{Path: inputPath, Err: err}
	}
	defer parser.Close()

	// The input is fingerprinted before it is consumed so that a run read
	// from stdin is recorded as such.
	dbPath := viper.GetString("validate.db")
	var (
		store *duckdb.Store
		run   *duckdb.Run
	)
	if dbPath != "" {
		fp, err := duckdb.StatFile(inputPath)
		if err != nil {
			return &variant.InputReadError{Path: inputPath, Err: err}
		}
		if store, err = duckdb.Open(dbPath); err != nil {
			return err
		}
		defer store.Close()
		run = duckdb.NewRun(fp, fastaDir, string(assembly))
	}

	provider := reference.NewDir(fastaDir)
	provider.SetLogger(a.logger)

	rec := reconcile.New(provider, log)
	rec.SetAssembly(string(assembly))
	rec.SetLogger(a.logger)

	var decisions []reconcile.Decision
	if opts.report != "" || store != nil {
		rec.SetObserver(func(d reconcile.Decision) {
			decisions = append(decisions, d)
		})
	}

	res, err := rec.ReconcileFrom(parser)
	if err != nil {
		var ire *variant.InputReadError
		if errors.As(err, &ire) && ire.Path == "" {
			ire.Path = inputPath
		}
		return err
	}

	if store != nil {
		if err = a.recordRun(store, run, res, decisions); err != nil {
			return err
		}
	}

	var report *output.ReportWriter
	err = output.WriteFile(outPath, func(w io.Writer) error {
		return output.WriteAll(newVariantWriter(w, format, assembly), res.Accepted)
	})
	if err != nil {
		err = fmt.Errorf("write output: %w", err)
	} else if opts.report != "" {
		report, err = writeReport(opts.report, opts.reportAll, decisions)
	}
	if err != nil {
		if store != nil {
			if derr := store.DeleteRun(run.ID); derr != nil {
				a.logger.Warn("could not remove recorded run", zap.String("run_id", run.ID), zap.Error(derr))
			}
		}
		return err
	}

	if report != nil {
		report.WriteSummary(a.stderr)
	}
	log.Record(audit.Event{
		Kind: audit.Files,
		Message: fmt.Sprintf("Files %s and %s saved to: %s",
			filepath.Base(outPath), filepath.Base(log.Path()), filepath.Dir(outPath)),
	})
	return nil
}

func newVariantWriter(w io.Writer, format string, assembly reference.Assembly) output.VariantWriter {
	if format == "vcf" {
		return output.NewVCFWriter(w, string(assembly), "vibe-fpsnp "+version)
	}
	return output.NewTabWriter(w)
}

func writeReport(path string, showAll bool, decisions []reconcile.Decision) (*output.ReportWriter, error) {
	var rw *output.ReportWriter
	err := output.WriteFile(path, func(w io.Writer) error {
		rw = output.NewReportWriter(w, showAll)
		if err := rw.WriteHeader(); err != nil {
			return err
		}
		for _, d := range decisions {
			if err := rw.WriteDecision(d); err != nil {
				return err
			}
		}
		return rw.Flush()
	})
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return rw, nil
}

func (a *app) recordRun(store *duckdb.Store, run *duckdb.Run, res *reconcile.Result, decisions []reconcile.Decision) error {
	run.Total = res.Total
	run.Accepted = len(res.Accepted)
	run.Rejected = res.Rejected

	records := make([]duckdb.DispositionRecord, len(decisions))
	for i, d := range decisions {
		records[i] = duckdb.FromDecision(run.ID, d)
	}

	if err := store.SaveRun(run, records); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	a.logger.Info("recorded run",
		zap.String("run_id", run.ID),
		zap.Int("dispositions", len(records)))
	return nil
}

// fatalMessage renders err as the audit line recorded when a run aborts.
func fatalMessage(err error) string {
	var (
		notFound *reference.NotFoundError
		fetchErr *reconcile.RecordFetchError
		readErr  *variant.InputReadError
	)
	switch {
	case errors.Is(err, reconcile.ErrEmptyInput):
		return "Input file is empty."
	case errors.As(err, &notFound) && notFound.Path != "":
		return fmt.Sprintf("Error: file %s not found", notFound.Path)
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("Error processing %s: %v", fetchErr.ID, fetchErr.Err)
	case errors.As(err, &readErr):
		return fmt.Sprintf("Error reading file: %v", readErr.Err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
