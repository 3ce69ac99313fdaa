package duckdb

import (
	"github.com/inodb/pilecall/internal/caller"
)

// DefaultBatchSize is the number of calls buffered before an append.
const DefaultBatchSize = 10000

// CallWriter streams calls of one run into the store in batches.
type CallWriter struct {
	store     *Store
	runID     string
	batchSize int
	buf       []*caller.Call
}

// NewCallWriter creates a writer for runID. batchSize <= 0 uses
// DefaultBatchSize.
func NewCallWriter(store *Store, runID string, batchSize int) *CallWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &CallWriter{
		store:     store,
		runID:     runID,
		batchSize: batchSize,
		buf:       make([]*caller.Call, 0, batchSize),
	}
}

// WriteHeader is a no-op; the schema is created by Open.
func (w *CallWriter) WriteHeader() error {
	return nil
}

// Write buffers a call, appending the batch when it is full.
func (w *CallWriter) Write(c *caller.Call) error {
	w.buf = append(w.buf, c)
	if len(w.buf) >= w.batchSize {
		return w.Flush()
	}
	return nil
}

// Flush appends any buffered calls.
func (w *CallWriter) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	err := w.store.WriteCalls(w.runID, w.buf)
	w.buf = w.buf[:0]
	return err
}
