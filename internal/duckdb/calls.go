package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/pilecall/internal/caller"
)

// StoredCall is one row of the calls table.
type StoredCall struct {
	RunID    string
	Chrom    string
	Pos      int64
	Ref      string
	Alt      string // comma-separated alternates, "." when none
	Genotype string
	VAF      float64
	Depth    int64
	Variant  bool
	Indel    bool
}

// callKey is the composite key for deduplicating calls before writing.
type callKey struct {
	chrom string
	pos   int64
}

// WriteCalls batch-inserts calls for a run using the Appender API.
// Duplicate (chrom, pos) entries within the batch keep the first call.
func (s *Store) WriteCalls(runID string, calls []*caller.Call) error {
	if len(calls) == 0 {
		return nil
	}

	seen := make(map[callKey]bool, len(calls))
	deduped := make([]*caller.Call, 0, len(calls))
	for _, c := range calls {
		k := callKey{c.Record.Chrom, c.Record.Pos}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, c)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "calls")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, c := range deduped {
		rec := c.Record
		if err := appender.AppendRow(
			runID, rec.Chrom, rec.Pos, c.Ref, altString(c),
			c.GenotypeString(), c.VAF, int64(rec.ReadCount),
			c.IsVariant(), c.IsIndel(),
		); err != nil {
			return fmt.Errorf("append call: %w", err)
		}
	}

	return appender.Flush()
}

func altString(c *caller.Call) string {
	if !c.IsVariant() {
		return "."
	}
	return strings.Join(c.Alts, ",")
}

const callColumns = `run_id, chrom, pos, ref, alt, genotype, vaf, depth, is_variant, is_indel`

// LookupCall returns the call stored for a position, or nil when absent.
func (s *Store) LookupCall(runID, chrom string, pos int64) (*StoredCall, error) {
	rows, err := s.db.Query(`SELECT `+callColumns+`
		FROM calls
		WHERE run_id=? AND chrom=? AND pos=?`,
		runID, chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query call: %w", err)
	}
	defer rows.Close()

	calls, err := scanCalls(rows)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return nil, nil
	}
	return &calls[0], nil
}

// QueryRegion returns calls on chrom with start <= pos <= end, ordered by
// position. end <= 0 leaves the region open-ended.
func (s *Store) QueryRegion(runID, chrom string, start, end int64, variantsOnly bool) ([]StoredCall, error) {
	query := `SELECT ` + callColumns + `
		FROM calls
		WHERE run_id=? AND chrom=? AND pos>=?`
	args := []any{runID, chrom, start}
	if end > 0 {
		query += ` AND pos<=?`
		args = append(args, end)
	}
	if variantsOnly {
		query += ` AND is_variant`
	}
	query += ` ORDER BY pos`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query region: %w", err)
	}
	defer rows.Close()

	return scanCalls(rows)
}

// CountCalls counts the calls stored for a run.
func (s *Store) CountCalls(runID string, variantsOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM calls WHERE run_id=?`
	if variantsOnly {
		query += ` AND is_variant`
	}
	var n int64
	if err := s.db.QueryRow(query, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count calls: %w", err)
	}
	return n, nil
}

// scanCalls scans rows into StoredCall slices.
func scanCalls(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]StoredCall, error) {
	var calls []StoredCall
	for rows.Next() {
		var c StoredCall
		if err := rows.Scan(
			&c.RunID, &c.Chrom, &c.Pos, &c.Ref, &c.Alt,
			&c.Genotype, &c.VAF, &c.Depth, &c.Variant, &c.Indel,
		); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}
