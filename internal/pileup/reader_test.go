package pileup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePileup = `21	9483252	T	1	.	B
21	9483266	T	3	..^<.	@@>

21	9483270	C	2	.A	II
`

func readAll(t *testing.T, r *Reader) []*Record {
	t.Helper()
	var recs []*Record
	for {
		rec, err := r.Next()
		require.NoError(t, err)
		if rec == nil {
			return recs
		}
		recs = append(recs, rec)
	}
}

func TestReader_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.pileup")
	require.NoError(t, os.WriteFile(path, []byte(samplePileup), 0o644))

	r, err := NewReader(path, DecodeOptions{})
	require.NoError(t, err)
	defer r.Close()

	recs := readAll(t, r)
	require.Len(t, recs, 3)
	assert.Equal(t, int64(9483252), recs[0].Pos)
	assert.Equal(t, BaseCounts{T: 1}, recs[0].Counts)
	assert.Equal(t, BaseCounts{T: 3}, recs[1].Counts)
	assert.Equal(t, BaseCounts{A: 1, C: 1}, recs[2].Counts)
	assert.Equal(t, 4, r.LineNumber())
}

func TestReader_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.pileup.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(samplePileup))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	r, err := NewReader(path, DecodeOptions{Quality: true})
	require.NoError(t, err)
	defer r.Close()

	recs := readAll(t, r)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.True(t, rec.HasQuality)
	}
}

func TestReader_NoTrailingNewline(t *testing.T) {
	r, err := NewReaderFrom(strings.NewReader("1\t10\tA\t1\t,\tI"), DecodeOptions{})
	require.NoError(t, err)

	recs := readAll(t, r)
	require.Len(t, recs, 1)
	assert.Equal(t, BaseCounts{A: 1}, recs[0].Counts)
}

func TestReader_MalformedLineCarriesLineNumber(t *testing.T) {
	input := "1\t10\tA\t1\t.\tI\n1\t11\tA\n1\t12\tC\t1\t.\tI\n"
	r, err := NewReaderFrom(strings.NewReader(input), DecodeOptions{})
	require.NoError(t, err)

	rec, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)

	rec, err = r.Next()
	assert.Nil(t, rec)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, pe.Error(), "line 2")

	// The reader continues past a malformed line.
	rec, err = r.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(12), rec.Pos)
}

func TestNewReader_MissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.pileup"), DecodeOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
