package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/pilecall/internal/concordance"
	"github.com/inodb/pilecall/internal/vcf"
)

func newCompareCmd() *cobra.Command {
	var opts concordance.Options

	cmd := &cobra.Command{
		Use:   "compare <truth.vcf> <calls.vcf>",
		Short: "Score a call set against a truth call set",
		Long: `Compare genotype calls against a truth VCF position by position and report
TP, FP, FN and TN counts with precision, recall, F1, accuracy and MCC,
split by SNV and INDEL.`,
		Example: `  pilecall compare truth.vcf.gz sample.vcf
  pilecall compare --truth-sample HCC1143BL --call-sample SAMPLE1 truth.vcf sample.vcf`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Logger = logger
			return runCompare(args[0], args[1], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.TruthSample, "truth-sample", "", "Truth sample column (default: first sample)")
	cmd.Flags().StringVar(&opts.CallSample, "call-sample", "", "Call sample column (default: first sample)")

	return cmd
}

func runCompare(truthPath, callPath string, opts concordance.Options, stdout io.Writer) error {
	truth, err := vcf.NewParser(truthPath)
	if err != nil {
		return err
	}
	defer truth.Close()

	calls, err := vcf.NewParser(callPath)
	if err != nil {
		return err
	}
	defer calls.Close()

	report, err := concordance.Compare(truth, calls, opts)
	if err != nil {
		return err
	}

	total := report.Total()
	logger.Debug("comparison complete",
		zap.Int("tp", total.TP), zap.Int("fp", total.FP),
		zap.Int("fn", total.FN), zap.Int("tn", total.TN))

	return report.WriteSummary(stdout)
}
