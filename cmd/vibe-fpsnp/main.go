// Package main provides the vibe-fpsnp command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// configName is the config file base name looked up in the home directory.
const configName = ".vibe-fpsnp"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries the process-wide writers and the diagnostics logger.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	logger  *zap.Logger
	cfgFile string
}

// usageError marks a command-line mistake, reported with exit code 2.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, logger: zap.NewNop()}
	root := newRootCmd(a)
	root.SetArgs(args)

	cmd, err := root.ExecuteC()
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintf(stderr, "\n%s", cmd.UsageString())
		return ExitUsage
	}
	return ExitError
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "vibe-fpsnp",
		Short: "Fingerprinting SNP panel preparation",
		Long: `vibe-fpsnp prepares a fingerprinting SNP panel for GRCh38.

It reshapes the raw panel table into a CHROM POS ID REF ALT table, then
validates each SNP against per-chromosome reference FASTA files, ordering
the two alleles so that REF is the reference base and dropping SNPs whose
alleles match neither.`,
		Example: `  # Reshape the raw panel (writes FP_SNPs_10k_GB38_twoAllelsFormat.tsv next to it)
  vibe-fpsnp preprocess FP_SNPs.txt

  # Validate against chr<N>.fa files in a directory
  vibe-fpsnp validate FP_SNPs_10k_GB38_twoAllelsFormat.tsv /ref/hg38 -o fp_snps.tsv

  # Record runs and query a SNP's history
  vibe-fpsnp validate --db runs.duckdb table.tsv /ref/hg38 -o fp_snps.tsv
  vibe-fpsnp lookup rs1042522 --db runs.duckdb`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(a.cfgFile); err != nil {
				return err
			}
			a.logger = newLogger(a.stderr, viper.GetBool("verbose"))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetVersionTemplate("vibe-fpsnp version {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default: ~/"+configName+".yaml)")
	pf.BoolP("verbose", "v", false, "Enable debug logging on stderr")
	pf.String("assembly", "GRCh38", "Reference assembly: GRCh38 or GRCh37")
	bindFlags(pf, map[string]string{
		"verbose":  "verbose",
		"assembly": "assembly",
	})

	root.AddCommand(newPreprocessCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newRunsCmd(a))
	root.AddCommand(newLookupCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

// bindFlags binds flags of fs, by name, to viper keys.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		_ = viper.BindPFlag(key, fs.Lookup(name))
	}
}

// initConfig reads the optional config file and FPSNP_* environment.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FPSNP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("assembly", "GRCh38")
	viper.SetDefault("validate.format", "tsv")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// defaultConfigPath returns ~/.vibe-fpsnp.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// newLogger builds the stderr diagnostics logger.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}
