// Package results keeps a history of benchmark runs in a SQLite database.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/funvibe/tapevm/internal/bench"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	recorded_at INTEGER NOT NULL,
	case_name   TEXT NOT NULL,
	backend     TEXT NOT NULL,
	iterations  INTEGER NOT NULL,
	elapsed_ns  INTEGER NOT NULL,
	cpu_ns      INTEGER NOT NULL,
	value       INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS runs_recorded_at ON runs (recorded_at)`,
}

// Run is one recorded benchmark result.
type Run struct {
	ID         string
	RecordedAt time.Time
	Case       string
	Backend    string
	Iterations int
	Elapsed    time.Duration
	CPU        time.Duration
	Value      int64
}

// NsPerOp returns the mean wall time of one iteration in nanoseconds.
func (r Run) NsPerOp() int64 {
	if r.Iterations == 0 {
		return 0
	}
	return r.Elapsed.Nanoseconds() / int64(r.Iterations)
}

// FromResult converts a bench result into an unrecorded run.
func FromResult(res bench.Result) Run {
	return Run{
		Case:       res.Case,
		Backend:    res.Backend,
		Iterations: res.Iterations,
		Elapsed:    res.Elapsed,
		CPU:        res.CPU,
		Value:      res.Value,
	}
}

// Store is a handle on a results database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening results %s: %w", path, err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initialising results %s: %w", path, err)
		}
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores runs in one transaction, filling in their ID and
// RecordedAt when unset.
func (s *Store) Record(ctx context.Context, runs ...*Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO runs
		(id, recorded_at, case_name, backend, iterations, elapsed_ns, cpu_ns, value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range runs {
		if r.ID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("generating run id: %w", err)
			}
			r.ID = id.String()
		}
		if r.RecordedAt.IsZero() {
			r.RecordedAt = s.now()
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.RecordedAt.UnixNano(), r.Case, r.Backend,
			r.Iterations, int64(r.Elapsed), int64(r.CPU), r.Value); err != nil {
			return fmt.Errorf("recording run %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// RecordResults stores bench results and returns them as runs.
func (s *Store) RecordResults(ctx context.Context, results []bench.Result) ([]Run, error) {
	runs := make([]Run, len(results))
	ptrs := make([]*Run, len(results))
	for i, res := range results {
		runs[i] = FromResult(res)
		ptrs[i] = &runs[i]
	}
	if err := s.Record(ctx, ptrs...); err != nil {
		return nil, err
	}
	return runs, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, recorded_at, case_name, backend, iterations, elapsed_ns, cpu_ns, value
		FROM runs ORDER BY recorded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var recorded, elapsed, cpu int64
		if err := rows.Scan(&r.ID, &recorded, &r.Case, &r.Backend, &r.Iterations, &elapsed, &cpu, &r.Value); err != nil {
			return nil, err
		}
		r.RecordedAt = time.Unix(0, recorded)
		r.Elapsed = time.Duration(elapsed)
		r.CPU = time.Duration(cpu)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
