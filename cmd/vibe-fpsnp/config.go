package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-fpsnp/internal/reference"
)

// configKey is a setting that may be stored in the config file.
type configKey struct {
	name  string
	usage string
	parse func(string) (any, error)
}

var configKeys = []configKey{
	{"assembly", "reference assembly: GRCh38 or GRCh37", parseAssemblyValue},
	{"verbose", "debug logging on stderr", parseBoolValue},
	{"validate.format", "validate output format: tsv or vcf", parseFormatValue},
	{"validate.db", "DuckDB database recording validate runs", parseStringValue},
}

func lookupConfigKey(name string) (configKey, error) {
	names := make([]string, len(configKeys))
	for i, k := range configKeys {
		if k.name == name {
			return k, nil
		}
		names[i] = k.name
	}
	return configKey{}, &usageError{fmt.Errorf("unknown config key %q (known: %s)", name, strings.Join(names, ", "))}
}

func parseAssemblyValue(s string) (any, error) {
	asm, err := reference.ParseAssembly(s)
	return string(asm), err
}

func parseBoolValue(s string) (any, error) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}

func parseFormatValue(s string) (any, error) {
	format := strings.ToLower(s)
	if format != "tsv" && format != "vcf" {
		return nil, fmt.Errorf("unknown output format %q (expected tsv or vcf)", s)
	}
	return format, nil
}

func parseStringValue(s string) (any, error) { return s, nil }

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-fpsnp configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/` + configName + `.yaml.

Without a subcommand, prints the effective settings: the config file
merged with FPSNP_* environment variables and built-in defaults.`,
		Example: `  vibe-fpsnp config                             # show effective settings
  vibe-fpsnp config set validate.format vcf      # write VCF by default
  vibe-fpsnp config set assembly hg38            # stored as GRCh38
  vibe-fpsnp config set validate.db ~/fpsnp.duckdb
  vibe-fpsnp config get assembly`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd(a))
	cmd.AddCommand(newConfigGetCmd(a))

	return cmd
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get the effective value of a setting",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigGet(args[0])
		},
	}
}

func (a *app) runConfigShow() error {
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		cfgFile = "none"
	}
	fmt.Fprintf(a.stdout, "# Config file: %s\n", cfgFile)

	doc := &yaml.Node{Kind: yaml.MappingNode}
	sections := map[string]*yaml.Node{}
	for _, k := range configKeys {
		parent, leaf := doc, k.name
		if section, rest, ok := strings.Cut(k.name, "."); ok {
			if sections[section] == nil {
				sections[section] = &yaml.Node{Kind: yaml.MappingNode}
				doc.Content = append(doc.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Value: section}, sections[section])
			}
			parent, leaf = sections[section], rest
		}

		val := &yaml.Node{}
		if err := val.Encode(effectiveValue(k.name)); err != nil {
			return fmt.Errorf("encoding %s: %w", k.name, err)
		}
		val.LineComment = k.usage
		parent.Content = append(parent.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: leaf}, val)
	}

	enc := yaml.NewEncoder(a.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return enc.Close()
}

func (a *app) runConfigSet(name, value string) error {
	key, err := lookupConfigKey(name)
	if err != nil {
		return err
	}
	parsed, err := key.parse(value)
	if err != nil {
		return &usageError{fmt.Errorf("%s: %w", name, err)}
	}
	viper.Set(name, parsed)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		if cfgFile, err = defaultConfigPath(); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(a.stdout, "Set %s = %v in %s\n", name, parsed, cfgFile)
	return nil
}

func (a *app) runConfigGet(name string) error {
	if _, err := lookupConfigKey(name); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, effectiveValue(name))
	return nil
}

// effectiveValue returns the typed value viper resolves for a known key.
func effectiveValue(name string) any {
	if name == "verbose" {
		return viper.GetBool(name)
	}
	return viper.GetString(name)
}
