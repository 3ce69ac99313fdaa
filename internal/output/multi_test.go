package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/pilecall/internal/caller"
	"github.com/inodb/pilecall/internal/pileup"
)

type failingWriter struct{ flushErr error }

func (f *failingWriter) WriteHeader() error { return nil }
func (f *failingWriter) Write(*caller.Call) error { return errors.New("write failed") }
func (f *failingWriter) Flush() error { return f.flushErr }

func TestMultiWriter(t *testing.T) {
	var vcfBuf, tabBuf bytes.Buffer
	m := NewMultiWriter(NewVCFWriter(&vcfBuf, "", nil), NewTabWriter(&tabBuf))

	rec := &pileup.Record{Chrom: "1", Pos: 5, RefBase: "A", ReadCount: 4, Counts: pileup.BaseCounts{A: 4}}
	require.NoError(t, m.WriteHeader())
	require.NoError(t, m.Write(caller.CallRecord(rec, 0.999)))
	require.NoError(t, m.Flush())

	assert.True(t, strings.HasPrefix(vcfBuf.String(), "##fileformat=VCFv4.2\n"))
	assert.Contains(t, vcfBuf.String(), "1\t5\t.\tA\t.\t")
	assert.Contains(t, tabBuf.String(), "1:5\tA\t-")
}

func TestMultiWriter_Errors(t *testing.T) {
	var buf bytes.Buffer
	flushErr := errors.New("flush failed")
	m := NewMultiWriter(&failingWriter{flushErr: flushErr}, NewTabWriter(&buf))

	rec := &pileup.Record{Chrom: "1", Pos: 5, RefBase: "A"}
	assert.EqualError(t, m.Write(caller.CallRecord(rec, 0.999)), "write failed")
	assert.Empty(t, buf.String(), "later writers are skipped after an error")
	assert.ErrorIs(t, m.Flush(), flushErr)
}
