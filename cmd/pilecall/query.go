package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/pilecall/internal/duckdb"
	"github.com/inodb/pilecall/internal/output"
)

// region is a 1-based inclusive interval; End 0 means to the end of Chrom.
type region struct {
	Chrom string
	Start int64
	End   int64
}

// parseRegion parses "chrom", "chrom:pos" or "chrom:start-end".
func parseRegion(s string) (region, error) {
	chrom, span, hasSpan := strings.Cut(s, ":")
	if chrom == "" {
		return region{}, fmt.Errorf("invalid region %q: missing chromosome", s)
	}
	r := region{Chrom: chrom}
	if !hasSpan {
		return r, nil
	}

	startStr, endStr, hasEnd := strings.Cut(strings.ReplaceAll(span, ",", ""), "-")
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 1 {
		return region{}, fmt.Errorf("invalid region %q: bad start", s)
	}
	r.Start, r.End = start, start
	if hasEnd {
		end, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < start {
			return region{}, fmt.Errorf("invalid region %q: bad end", s)
		}
		r.End = end
	}
	return r, nil
}

func newQueryCmd() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "query <db> <chrom>[:start-end]",
		Short: "Show stored calls in a region",
		Example: `  pilecall query calls.duckdb 21
  pilecall query --variants-only calls.duckdb 21:9483000-9484000
  pilecall query --run 1b4e28ba-2fa1-11d2-883f-0016d3cca427 calls.duckdb 22:41616770`,
		Args: exactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, "variants-only")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRegion(args[1])
			if err != nil {
				return &usageError{err}
			}
			return runQuery(args[0], r, runID, viper.GetBool("variants-only"), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run id (default: most recent run)")
	cmd.Flags().Bool("variants-only", false, "Only show positions with a called variant")

	return cmd
}

// openExisting opens a DuckDB store that must already exist on disk.
func openExisting(path string) (*duckdb.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return duckdb.Open(path)
}

func runQuery(dbPath string, r region, runID string, variantsOnly bool, stdout io.Writer) error {
	store, err := openExisting(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if runID == "" {
		runID, err = store.LatestRun()
		if err != nil {
			return err
		}
		if runID == "" {
			return fmt.Errorf("no runs stored in %s", dbPath)
		}
	}

	calls, err := store.QueryRegion(runID, r.Chrom, r.Start, r.End, variantsOnly)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHROM\tPOS\tREF\tALT\tGT\tVAF\tDP")
	for _, c := range calls {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%d\n",
			c.Chrom, c.Pos, c.Ref, c.Alt, c.Genotype, output.FormatVAF(c.VAF), c.Depth)
	}
	return tw.Flush()
}

func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs <db>",
		Short: "List stored calling runs",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(args[0], cmd.OutOrStdout())
		},
	}
}

func runRuns(dbPath string, stdout io.Writer) error {
	store, err := openExisting(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tINPUT\tPROBABILITY\tQUALITY\tSAMPLE\tCALLS")
	for _, r := range runs {
		n, err := store.CountCalls(r.ID, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%t\t%s\t%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Input.Path,
			r.Probability, r.UseQuality, r.Sample, n)
	}
	return tw.Flush()
}
