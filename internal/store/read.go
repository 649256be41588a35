package store

import (
	"context"
	"fmt"

	"github.com/roach88/epinet/internal/prevalence"
)

// ReadRun retrieves a run's metadata by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, disease, modes, steps, seed
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.Disease, &run.Modes, &run.Steps, &run.Seed)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns all stored runs in creation order. UUIDv7 ids sort by
// creation time under binary collation.
//
// Returns an empty slice (not nil) when the store holds no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, disease, modes, steps, seed
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Disease, &run.Modes, &run.Steps, &run.Seed); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: iterate: %w", err)
	}
	return runs, nil
}

// ReadTable reconstructs a run's full prevalence table. Rows order by
// step, columns by their recorded position, so a round trip through the
// store reproduces the engine's output exactly.
//
// Returns an empty table (no columns, no rows) when the run has no
// recorded steps.
func (s *Store) ReadTable(ctx context.Context, runID string) (*prevalence.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT at, series, ord, count
		FROM prevalence
		WHERE run_id = ?
		ORDER BY at ASC, ord ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	defer rows.Close()

	tb := &prevalence.Table{}
	var cur *prevalence.Row
	for rows.Next() {
		var (
			at, ord, count int
			series         string
		)
		if err := rows.Scan(&at, &series, &ord, &count); err != nil {
			return nil, fmt.Errorf("read table: scan: %w", err)
		}
		if cur == nil || cur.At != at {
			tb.Rows = append(tb.Rows, prevalence.Row{At: at})
			cur = &tb.Rows[len(tb.Rows)-1]
		}
		// The first row defines the column layout; later rows must agree.
		if len(tb.Rows) == 1 {
			tb.Columns = append(tb.Columns, series)
		} else if ord >= len(tb.Columns) || tb.Columns[ord] != series {
			return nil, fmt.Errorf("read table: run %s step %d has series %q at position %d", runID, at, series, ord)
		}
		cur.Counts = append(cur.Counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read table: iterate: %w", err)
	}

	if len(tb.Columns) > 0 {
		tb.Columns = append([]string{"at"}, tb.Columns...)
	}
	return tb, nil
}

// ReadSeries returns one series' counts over all recorded steps, in step
// order.
func (s *Store) ReadSeries(ctx context.Context, runID, series string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT count
		FROM prevalence
		WHERE run_id = ? AND series = ?
		ORDER BY at ASC
	`, runID, series)
	if err != nil {
		return nil, fmt.Errorf("read series %q: %w", series, err)
	}
	defer rows.Close()

	counts := []int{}
	for rows.Next() {
		var c int
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("read series %q: scan: %w", series, err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read series %q: iterate: %w", series, err)
	}
	return counts, nil
}
