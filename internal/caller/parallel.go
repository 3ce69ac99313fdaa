package caller

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/pilecall/internal/pileup"
)

// RecordSource yields decoded pileup records.
// Next returns nil, nil when there are no more records.
type RecordSource interface {
	Next() (*pileup.Record, error)
	LineNumber() int
}

// CallWriter defines the interface for writing calls.
type CallWriter interface {
	WriteHeader() error
	Write(c *Call) error
	Flush() error
}

// WorkItem holds a decoded record ready for calling.
type WorkItem struct {
	Seq    int
	Record *pileup.Record
}

// WorkResult holds the call for a single record.
type WorkResult struct {
	Seq    int
	Record *pileup.Record
	Call   *Call
	Err    error
}

// Summary counts what CallAll processed.
type Summary struct {
	Positions int // records called
	Written   int // calls handed to the writer
	Variants  int // calls with at least one alt
	SNVs      int // variant calls with only SNV alts
	Indels    int // variant calls with an insertion or deletion alt
	Skipped   int // malformed lines skipped
}

func (s *Summary) add(c *Call) {
	s.Positions++
	if !c.IsVariant() {
		return
	}
	s.Variants++
	if c.IsIndel() {
		s.Indels++
	} else {
		s.SNVs++
	}
}

// ParallelCall calls work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (c *Caller) ParallelCall(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				call, err := c.Call(item.Record)
				results <- WorkResult{
					Seq:    item.Seq,
					Record: item.Record,
					Call:   call,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// CallAll calls every record from src and writes the calls in input order.
// Malformed lines abort with the *pileup.ParseError unless SkipMalformed is set.
func (c *Caller) CallAll(src RecordSource, writer CallWriter) (*Summary, error) {
	workers := c.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	items := make(chan WorkItem, 2*workers)
	summary := &Summary{}
	var readErr error

	go func() {
		defer close(items)
		seq := 0
		for {
			rec, err := src.Next()
			if err != nil {
				var pe *pileup.ParseError
				if c.cfg.SkipMalformed && errors.As(err, &pe) {
					c.logger.Warn("skipping malformed pileup line",
						zap.Int("line", pe.Line),
						zap.String("reason", pe.Message))
					summary.Skipped++
					continue
				}
				readErr = fmt.Errorf("read pileup: %w", err)
				return
			}
			if rec == nil {
				return
			}
			items <- WorkItem{Seq: seq, Record: rec}
			seq++
		}
	}()

	results := c.ParallelCall(items, workers)

	if err := OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			return fmt.Errorf("call record %d: %w", r.Seq, r.Err)
		}
		summary.add(r.Call)
		if c.cfg.VariantsOnly && !r.Call.IsVariant() {
			return nil
		}
		if err := writer.Write(r.Call); err != nil {
			return fmt.Errorf("write call: %w", err)
		}
		summary.Written++
		return nil
	}); err != nil {
		return summary, errors.Join(err, writer.Flush())
	}

	// Calls before a malformed line are kept.
	if readErr != nil {
		return summary, errors.Join(readErr, writer.Flush())
	}

	if summary.Positions == 0 {
		c.logger.Info("0 positions processed")
	}

	return summary, writer.Flush()
}
