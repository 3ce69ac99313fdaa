package concordance

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteSummary renders the report as an aligned table with one row per
// variant class and a total row.
func (r *Report) WriteSummary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Type\tTP\tFP\tFN\tTN\tPrecision\tRecall\tF1\tAccuracy\tMCC")

	rows := []struct {
		name string
		c    Counts
	}{
		{"SNV", r.SNV},
		{"INDEL", r.Indel},
		{"ALL", r.Total()},
	}
	for _, row := range rows {
		c := row.c
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			row.name, c.TP, c.FP, c.FN, c.TN,
			FormatMetric(c.Precision()),
			FormatMetric(c.Recall()),
			FormatMetric(c.F1()),
			FormatMetric(c.Accuracy()),
			FormatMetric(c.MCC()),
		)
	}
	return tw.Flush()
}
