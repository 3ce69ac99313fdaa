package duckdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunInfo describes one invocation of the caller.
type RunInfo struct {
	Input       FileFingerprint
	Probability float64
	UseQuality  bool
	Sample      string
}

// Run is a stored RunInfo with its id and creation time.
type Run struct {
	ID        string
	CreatedAt time.Time
	RunInfo
}

// BeginRun registers a new run and returns its id.
func (s *Store) BeginRun(info RunInfo) (string, error) {
	id := uuid.NewString()

	var mtime any
	if !info.Input.ModTime.IsZero() {
		mtime = info.Input.ModTime.UTC()
	}

	_, err := s.db.Exec(`INSERT INTO runs
		(run_id, created_at, input_path, input_size, input_mtime, probability, use_quality, sample)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC(), info.Input.Path, info.Input.Size, mtime,
		info.Probability, info.UseQuality, info.Sample)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT
		run_id, created_at, input_path, input_size, input_mtime,
		probability, use_quality, sample
		FROM runs
		ORDER BY created_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var mtime sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.CreatedAt, &r.Input.Path, &r.Input.Size, &mtime,
			&r.Probability, &r.UseQuality, &r.Sample,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if mtime.Valid {
			r.Input.ModTime = mtime.Time
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the id of the most recent run, or "" when the store is
// empty.
func (s *Store) LatestRun() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT run_id FROM runs ORDER BY created_at DESC, run_id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return id, nil
}
