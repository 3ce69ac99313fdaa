// Package output provides call output formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/pilecall/internal/caller"
	"github.com/inodb/pilecall/internal/fai"
)

// DefaultSample is the sample column name used when none is configured.
const DefaultSample = "SAMPLE1"

// VCFWriter writes calls as single-sample VCF records with GT and VAF
// FORMAT fields.
type VCFWriter struct {
	w       *bufio.Writer
	sample  string
	contigs []fai.Contig
	date    time.Time
}

// NewVCFWriter creates a new VCF output writer. contigs may be nil, in which
// case no ##contig lines are written.
func NewVCFWriter(w io.Writer, sample string, contigs []fai.Contig) *VCFWriter {
	if sample == "" {
		sample = DefaultSample
	}
	return &VCFWriter{
		w:       bufio.NewWriter(w),
		sample:  sample,
		contigs: contigs,
		date:    time.Now(),
	}
}

// SetDate overrides the ##fileDate header value.
func (vw *VCFWriter) SetDate(t time.Time) {
	vw.date = t
}

// WriteHeader writes the meta-information lines and the #CHROM line.
func (vw *VCFWriter) WriteHeader() error {
	lines := []string{
		"##fileformat=VCFv4.2",
		"##fileDate=" + vw.date.Format("20060102"),
		"##source=pilecall",
	}
	for _, c := range vw.contigs {
		lines = append(lines, fmt.Sprintf("##contig=<ID=%s,length=%d>", c.Name, c.Length))
	}
	lines = append(lines,
		`##ALT=<ID=*,Description="Different allele than reference">`,
		`##INFO=<ID=DP,Number=1,Type=Integer,Description="Read depth">`,
		`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
		`##FORMAT=<ID=VAF,Number=1,Type=Float,Description="Posterior probability of the called genotype">`,
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t"+vw.sample,
	)

	for _, line := range lines {
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes one call as a VCF data line. Calls without a variant get ALT
// "." and genotype 0/0.
func (vw *VCFWriter) Write(c *caller.Call) error {
	rec := c.Record

	alt := "."
	if c.IsVariant() {
		alt = strings.Join(c.Alts, ",")
	}

	var lb strings.Builder
	lb.Grow(64)

	lb.WriteString(rec.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(rec.Pos, 10))
	lb.WriteString("\t.\t")
	lb.WriteString(c.Ref)
	lb.WriteByte('\t')
	lb.WriteString(alt)
	lb.WriteString("\t.\t.\tDP=")
	lb.WriteString(strconv.Itoa(rec.ReadCount))
	lb.WriteString("\tGT:VAF\t")
	lb.WriteString(c.GenotypeString())
	lb.WriteByte(':')
	lb.WriteString(FormatVAF(c.VAF))
	lb.WriteByte('\n')

	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// FormatVAF renders a VAF with the shortest exact representation.
func FormatVAF(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
