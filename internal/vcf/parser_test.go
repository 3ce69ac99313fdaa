package vcf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const truthVCF = `##fileformat=VCFv4.2
##contig=<ID=21,length=48129895>
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	NA12878	NA12891
21	9483252	rs1	G	T	50	PASS	DP=17;DB	GT:VAF	0/1:0.91	1/1:0.99
21	10	.	A	T,G	.	PASS	.	GT	1|2	./.

22	41616770	.	GAT	G	.	.	.	GT	0/0	0/1
`

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readAll(t *testing.T, p *Parser) []*Variant {
	t.Helper()
	var out []*Variant
	for {
		v, err := p.Next()
		require.NoError(t, err)
		if v == nil {
			return out
		}
		out = append(out, v)
	}
}

func TestParser_Variants(t *testing.T) {
	p, err := NewParser(writeTemp(t, "truth.vcf", []byte(truthVCF)))
	require.NoError(t, err)
	defer p.Close()

	variants := readAll(t, p)
	require.Len(t, variants, 3)

	v := variants[0]
	assert.Equal(t, "21", v.Chrom)
	assert.Equal(t, int64(9483252), v.Pos)
	assert.Equal(t, "rs1", v.ID)
	assert.Equal(t, "G", v.Ref)
	assert.Equal(t, "T", v.Alt)
	assert.Equal(t, 50.0, v.Qual)
	assert.Equal(t, "17", v.Info["DP"])
	assert.Equal(t, true, v.Info["DB"])
	assert.Equal(t, []string{"GT", "VAF"}, v.Format)
	assert.Equal(t, []string{"0/1:0.91", "1/1:0.99"}, v.Samples)

	assert.Equal(t, []string{"T", "G"}, variants[1].Alts())
	assert.Equal(t, int64(41616770), variants[2].Pos)
}

func TestParser_Header(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(truthVCF))
	require.NoError(t, err)

	header := p.Header()
	require.Len(t, header, 4)
	assert.Equal(t, "##fileformat=VCFv4.2", header[0])
	assert.True(t, strings.HasPrefix(header[3], "#CHROM"))
	assert.Equal(t, []string{"NA12878", "NA12891"}, p.SampleNames())
}

func TestParser_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(truthVCF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	p, err := NewParser(writeTemp(t, "truth.vcf.gz", buf.Bytes()))
	require.NoError(t, err)
	defer p.Close()

	assert.Len(t, readAll(t, p), 3)
}

func TestParser_SampleIndex(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(truthVCF))
	require.NoError(t, err)

	idx, err := p.SampleIndex("")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = p.SampleIndex("NA12891")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = p.SampleIndex("HG002")
	assert.ErrorContains(t, err, "HG002")

	sitesOnly := "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"
	p, err = NewParserFromReader(strings.NewReader(sitesOnly))
	require.NoError(t, err)
	_, err = p.SampleIndex("")
	assert.Error(t, err)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"missing header", "21\t1\t.\tA\tC\t.\t.\t.\n", 1},
		{"empty", "", 0},
		{"short line", "#CHROM\tPOS\n21\t1\t.\tA\n", 2},
		{"bad position", "#CHROM\tPOS\n21\tx\t.\tA\tC\t.\t.\t.\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParserFromReader(strings.NewReader(tt.input))
			if err == nil {
				_, err = p.Next()
			}
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestParser_MissingFile(t *testing.T) {
	_, err := NewParser(filepath.Join(t.TempDir(), "nope.vcf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseError(t *testing.T) {
	err := &ParseError{Line: 42, Message: "test error"}
	assert.Equal(t, "vcf parse error at line 42: test error", err.Error())
}
