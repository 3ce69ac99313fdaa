package output

import (
	"errors"

	"github.com/inodb/pilecall/internal/caller"
)

// MultiWriter fans every call out to several writers in order.
type MultiWriter struct {
	writers []caller.CallWriter
}

// NewMultiWriter creates a writer that forwards to all of writers.
func NewMultiWriter(writers ...caller.CallWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteHeader writes the header of each writer, stopping at the first error.
func (m *MultiWriter) WriteHeader() error {
	for _, w := range m.writers {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

// Write forwards c to each writer, stopping at the first error.
func (m *MultiWriter) Write(c *caller.Call) error {
	for _, w := range m.writers {
		if err := w.Write(c); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every writer and joins their errors.
func (m *MultiWriter) Flush() error {
	var errs []error
	for _, w := range m.writers {
		errs = append(errs, w.Flush())
	}
	return errors.Join(errs...)
}
