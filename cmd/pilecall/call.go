package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/pilecall/internal/caller"
	"github.com/inodb/pilecall/internal/duckdb"
	"github.com/inodb/pilecall/internal/fai"
	"github.com/inodb/pilecall/internal/output"
	"github.com/inodb/pilecall/internal/pileup"
)

// callOptions collects the call command settings after flag, env and
// config file resolution.
type callOptions struct {
	Probability   float64
	UseQuality    bool
	Sample        string
	Fai           string
	OutputFormat  string
	Output        string
	Workers       int
	VariantsOnly  bool
	SkipMalformed bool
	DB            string
}

func newCallCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "call <pileup>",
		Short: "Call genotypes from a pileup file",
		Long: `Call a genotype at every position of a samtools mpileup text file.

The input may be plain or gzip-compressed; use '-' for stdin.`,
		Example: `  pilecall call sample.pileup
  pilecall call -f tab --variants-only sample.pileup.gz
  pilecall call --use-quality --fai ref.fa.fai -o sample.vcf sample.pileup
  samtools mpileup -f ref.fa -Q 0 sample.bam | pilecall call --db calls.duckdb -`,
		Args: exactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, configKeyNames()...)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := callOptionsFromConfig()
			opts.Output = outputFile
			return runCall(args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Float64("probability", caller.DefaultProbability, "Per-base correctness probability, in (0, 1)")
	cmd.Flags().Bool("use-quality", false, "Use average Phred base quality per position when available")
	cmd.Flags().String("sample", output.DefaultSample, "Sample name for the VCF column")
	cmd.Flags().String("fai", "", "Reference .fai index for ##contig header lines")
	cmd.Flags().StringP("output-format", "f", "vcf", "Output format: vcf, tab")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().Int("workers", 0, "Calling workers (0 = number of CPUs)")
	cmd.Flags().Bool("variants-only", false, "Only write positions with a called variant")
	cmd.Flags().Bool("skip-malformed", false, "Log and skip malformed pileup lines instead of failing")
	cmd.Flags().String("db", "", "Also store calls in this DuckDB database")

	return cmd
}

func callOptionsFromConfig() callOptions {
	return callOptions{
		Probability:   viper.GetFloat64("probability"),
		UseQuality:    viper.GetBool("use-quality"),
		Sample:        viper.GetString("sample"),
		Fai:           viper.GetString("fai"),
		OutputFormat:  viper.GetString("output-format"),
		Workers:       viper.GetInt("workers"),
		VariantsOnly:  viper.GetBool("variants-only"),
		SkipMalformed: viper.GetBool("skip-malformed"),
		DB:            viper.GetString("db"),
	}
}

func runCall(input string, opts callOptions, stdout io.Writer) error {
	c, err := caller.NewCaller(caller.Config{
		Probability:   opts.Probability,
		UseQuality:    opts.UseQuality,
		VariantsOnly:  opts.VariantsOnly,
		SkipMalformed: opts.SkipMalformed,
		Workers:       opts.Workers,
	})
	if err != nil {
		if errors.Is(err, caller.ErrInvalidProbability) {
			return &usageError{err}
		}
		return err
	}
	c.SetLogger(logger)

	var contigs []fai.Contig
	if opts.Fai != "" {
		contigs, err = fai.Load(opts.Fai)
		if err != nil {
			return err
		}
		logger.Debug("loaded reference index", zap.String("path", opts.Fai), zap.Int("contigs", len(contigs)))
	}

	reader, err := pileup.NewReader(input, pileup.DecodeOptions{Quality: opts.UseQuality})
	if err != nil {
		return err
	}
	defer reader.Close()

	out := stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	writer, err := newCallWriter(opts.OutputFormat, out, opts.Sample, contigs)
	if err != nil {
		return err
	}

	if opts.DB != "" {
		store, err := duckdb.Open(opts.DB)
		if err != nil {
			return err
		}
		defer store.Close()

		fp, err := duckdb.StatFile(input)
		if err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
		runID, err := store.BeginRun(duckdb.RunInfo{
			Input:       fp,
			Probability: opts.Probability,
			UseQuality:  opts.UseQuality,
			Sample:      opts.Sample,
		})
		if err != nil {
			return err
		}
		logger.Info("storing calls", zap.String("db", opts.DB), zap.String("run", runID))
		writer = output.NewMultiWriter(writer, duckdb.NewCallWriter(store, runID, 0))
	}

	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	summary, err := c.CallAll(reader, writer)
	if err != nil {
		return err
	}

	logger.Info("calling complete",
		zap.Int("positions", summary.Positions),
		zap.Int("written", summary.Written),
		zap.Int("variants", summary.Variants),
		zap.Int("snvs", summary.SNVs),
		zap.Int("indels", summary.Indels),
		zap.Int("skipped", summary.Skipped))
	return nil
}

// newCallWriter selects the output writer for format.
func newCallWriter(format string, w io.Writer, sample string, contigs []fai.Contig) (caller.CallWriter, error) {
	switch format {
	case "vcf", "":
		return output.NewVCFWriter(w, sample, contigs), nil
	case "tab":
		return output.NewTabWriter(w), nil
	default:
		return nil, &usageError{fmt.Errorf("unknown output format %q (want vcf or tab)", format)}
	}
}
