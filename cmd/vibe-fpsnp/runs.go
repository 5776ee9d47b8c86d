package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-fpsnp/internal/duckdb"
)

func newRunsCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List validate runs recorded in a DuckDB database",
		Long: `List the validate runs recorded with --db, oldest first.

The database defaults to the validate.db setting.`,
		Example: `  vibe-fpsnp runs --db runs.duckdb
  vibe-fpsnp runs show 0b7f0c9e-3c52-4e0e-a0b5-5d1f3c1f8f7a --db runs.duckdb`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(dbPath, a.runRunsList)
		},
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "DuckDB database written by validate --db")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a recorded run and its rejected SNPs",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(dbPath, func(s *duckdb.Store) error {
				return a.runRunsShow(s, args[0])
			})
		},
	})

	return cmd
}

func newLookupCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "lookup <snp-id>",
		Short: "Show how a SNP was reconciled in every recorded run",
		Example: `  vibe-fpsnp lookup rs1042522 --db runs.duckdb`,
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(dbPath, func(s *duckdb.Store) error {
				return a.runLookup(s, args[0])
			})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database written by validate --db")

	return cmd
}

// withStore opens an existing run database, from flag or config, for fn.
func (a *app) withStore(dbPath string, fn func(*duckdb.Store) error) error {
	if dbPath == "" {
		dbPath = viper.GetString("validate.db")
	}
	if dbPath == "" {
		return &usageError{errors.New("no database given: pass --db or set validate.db")}
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("open run database: %w", err)
	}

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (a *app) runRunsList(s *duckdb.Store) error {
	runs, err := s.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tASSEMBLY\tTOTAL\tACCEPTED\tREJECTED\tINPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.Assembly,
			r.Total, r.Accepted, r.Rejected, r.Input.Path)
	}
	return tw.Flush()
}

func (a *app) runRunsShow(s *duckdb.Store, id string) error {
	r, err := s.GetRun(id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("run %s not found", id)
	}

	fmt.Fprintf(a.stdout, "Run:        %s\n", r.ID)
	fmt.Fprintf(a.stdout, "Started:    %s\n", r.StartedAt.Format(time.DateTime))
	fmt.Fprintf(a.stdout, "Input:      %s\n", r.Input.Path)
	fmt.Fprintf(a.stdout, "Reference:  %s (%s)\n", r.ReferenceDir, r.Assembly)
	fmt.Fprintf(a.stdout, "SNPs:       %d total, %d accepted, %d rejected\n", r.Total, r.Accepted, r.Rejected)

	rejections, err := s.Rejections(id)
	if err != nil {
		return err
	}
	if len(rejections) == 0 {
		return nil
	}

	fmt.Fprintln(a.stdout)
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLOCATION\tALLELES\tREF BASE")
	for _, d := range rejections {
		fmt.Fprintf(tw, "%s\t%s:%d\t%s/%s\t%s\n", d.ID, d.Chrom, d.Pos, d.AlleleA, d.AlleleB, d.RefBase)
	}
	return tw.Flush()
}

func (a *app) runLookup(s *duckdb.Store, id string) error {
	found, err := s.LookupSNP(id)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintf(a.stdout, "%s not found in any run.\n", id)
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tLOCATION\tALLELES\tREF BASE\tREF\tALT\tDISPOSITION")
	for _, d := range found {
		ref, alt := d.Ref, d.Alt
		if ref == "" {
			ref, alt = "-", "-"
		}
		fmt.Fprintf(tw, "%s\t%s:%d\t%s/%s\t%s\t%s\t%s\t%s\n",
			d.RunID, d.Chrom, d.Pos, d.AlleleA, d.AlleleB, d.RefBase, ref, alt, d.Disposition)
	}
	return tw.Flush()
}
