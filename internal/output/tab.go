package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/pilecall/internal/caller"
	"github.com/inodb/pilecall/internal/pileup"
)

// TabWriter writes calls in tab-delimited format, one row per position.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Location",
			"REF",
			"ALT",
			"Kind",
			"GT",
			"VAF",
			"Depth",
			"A",
			"C",
			"G",
			"T",
			"Insertions",
			"Deletions",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single call.
func (tw *TabWriter) Write(c *caller.Call) error {
	rec := c.Record

	alts := "-"
	kinds := "-"
	if c.IsVariant() {
		alts = strings.Join(c.Alts, ",")
		names := make([]string, len(c.AltKinds))
		for i, k := range c.AltKinds {
			names[i] = k.String()
		}
		kinds = strings.Join(names, ",")
	}

	values := []string{
		fmt.Sprintf("%s:%d", rec.Chrom, rec.Pos),
		c.Ref,
		alts,
		kinds,
		c.GenotypeString(),
		FormatVAF(c.VAF),
		strconv.Itoa(rec.ReadCount),
		strconv.Itoa(rec.Counts.A),
		strconv.Itoa(rec.Counts.C),
		strconv.Itoa(rec.Counts.G),
		strconv.Itoa(rec.Counts.T),
		formatIndels(rec.Insertions),
		formatIndels(rec.Deletions),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// formatIndels renders indels as "SEQ:COUNT" pairs, "-" when empty.
func formatIndels(indels []pileup.Indel) string {
	if len(indels) == 0 {
		return "-"
	}
	parts := make([]string, len(indels))
	for i, in := range indels {
		parts[i] = in.Bases + ":" + strconv.Itoa(in.Count)
	}
	return strings.Join(parts, ",")
}
