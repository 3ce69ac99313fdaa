// Package main provides the pilecall command-line tool.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
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

// logger is replaced by the root command before any subcommand runs.
var logger = zap.NewNop()

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	logger.Sync()
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if isUsageError(err) {
		return ExitUsage
	}
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
	}
	return ExitError
}

// usageError marks errors caused by bad arguments or flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	var ue *usageError
	if errors.As(err, &ue) {
		return true
	}
	// cobra reports unknown subcommands as plain errors
	return strings.HasPrefix(err.Error(), "unknown command")
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "pilecall",
		Short: "Call genotypes from samtools pileup files",
		Long: `pilecall calls diploid genotypes from samtools mpileup text output using a
likelihood model over the two most frequent alleles at each position, and
writes them as VCF or a tab-delimited summary.`,
		Example: `  pilecall call sample.pileup > sample.vcf
  pilecall call --fai ref.fa.fai --db calls.duckdb -o sample.vcf sample.pileup.gz
  pilecall compare truth.vcf sample.vcf
  pilecall query calls.duckdb 21:9483000-9484000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			logger = l
			return initConfig(cfgFile)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.pilecall.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newRunsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// newLogger builds a stderr logger; verbose selects the development
// configuration with debug level enabled.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// initConfig loads ~/.pilecall.yaml (or cfgFile) and PILECALL_* environment
// variables into viper. A missing config file is not an error so that
// "config set" can create it.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".pilecall")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PILECALL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	logger.Debug("loaded config", zap.String("file", viper.ConfigFileUsed()))
	return nil
}

// bindFlags binds the named flags of cmd to viper keys of the same name.
func bindFlags(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  exactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pilecall version %s (%s) built %s\n", version, commit, date)
		},
	}
}
