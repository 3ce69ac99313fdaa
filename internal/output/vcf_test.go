package output

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/pilecall/internal/caller"
	"github.com/inodb/pilecall/internal/fai"
	"github.com/inodb/pilecall/internal/pileup"
)

func TestVCFWriter_Header(t *testing.T) {
	contigs := []fai.Contig{
		{Name: "21", Length: 48129895},
		{Name: "22", Length: 51304566},
	}

	var buf bytes.Buffer
	w := NewVCFWriter(&buf, "", contigs)
	w.SetDate(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, "##fileformat=VCFv4.2", lines[0])
	assert.Equal(t, "##fileDate=20261017", lines[1])
	assert.Equal(t, "##source=pilecall", lines[2])
	assert.Equal(t, "##contig=<ID=21,length=48129895>", lines[3])
	assert.Equal(t, "##contig=<ID=22,length=51304566>", lines[4])

	last := lines[len(lines)-1]
	assert.Equal(t, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tSAMPLE1", last)

	out := buf.String()
	assert.Contains(t, out, "##FORMAT=<ID=GT,")
	assert.Contains(t, out, "##FORMAT=<ID=VAF,")
	assert.Contains(t, out, "##ALT=<ID=*,")
}

func TestVCFWriter_Write(t *testing.T) {
	tests := []struct {
		name string
		rec  *pileup.Record
		want string // line up to and including the genotype
		vaf  float64
	}{
		{
			name: "snv het",
			rec: &pileup.Record{
				Chrom: "21", Pos: 9483252, RefBase: "G", ReadCount: 17,
				Counts: pileup.BaseCounts{A: 1, G: 7, C: 1, T: 8},
			},
			want: "21\t9483252\t.\tG\tT\t.\t.\tDP=17\tGT:VAF\t0/1:",
			vaf:  0.9191506535035915,
		},
		{
			name: "multi-allelic",
			rec: &pileup.Record{
				Chrom: "21", Pos: 10, RefBase: "A", ReadCount: 17,
				Counts: pileup.BaseCounts{A: 1, G: 7, C: 1, T: 8},
			},
			want: "21\t10\t.\tA\tT,G\t.\t.\tDP=17\tGT:VAF\t1/2:",
			vaf:  0.9191506535035915,
		},
		{
			name: "no variant",
			rec: &pileup.Record{
				Chrom: "22", Pos: 5, RefBase: "C", ReadCount: 3,
				Counts: pileup.BaseCounts{C: 3},
			},
			want: "22\t5\t.\tC\t.\t.\t.\tDP=3\tGT:VAF\t0/0:",
			vaf:  1,
		},
		{
			name: "deletion",
			rec: &pileup.Record{
				Chrom: "22", Pos: 41616770, RefBase: "G", ReadCount: 13,
				Counts:    pileup.BaseCounts{G: 6},
				Deletions: []pileup.Indel{{Bases: "AT", Count: 7}},
			},
			want: "22\t41616770\t.\tGAT\tG\t.\t.\tDP=13\tGT:VAF\t0/1:",
			vaf:  0.8791680616770935,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewVCFWriter(&buf, "NA12878", nil)
			require.NoError(t, w.Write(caller.CallRecord(tt.rec, 0.8)))
			require.NoError(t, w.Flush())

			line := buf.String()
			require.True(t, strings.HasPrefix(line, tt.want), "got %q", line)
			vaf, err := strconv.ParseFloat(strings.TrimSuffix(line[len(tt.want):], "\n"), 64)
			require.NoError(t, err)
			assert.InDelta(t, tt.vaf, vaf, 1e-9)
		})
	}
}

func TestFormatVAF(t *testing.T) {
	assert.Equal(t, "1", FormatVAF(1.0))
	assert.Equal(t, "0.5", FormatVAF(0.5))
}
