package store

import (
	"context"
	"fmt"

	"github.com/roach88/epinet/internal/prevalence"
)

// Run is one simulation run's stored metadata.
type Run struct {
	ID      string
	Disease string
	Modes   int
	Steps   int
	Seed    int64
}

// WriteRun inserts a run metadata record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate ids are
// silently ignored. Other constraint violations still return errors.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, disease, modes, steps, seed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Disease,
		run.Modes,
		run.Steps,
		run.Seed,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteRow persists one step's prevalence counts, one cell per series.
// Columns must exclude the leading step column and be parallel to the
// row's counts.
//
// Uses ON CONFLICT(run_id, at, series) DO NOTHING: a recorded cell is
// write-once, so re-persisting an already stored step is a silent no-op
// rather than an overwrite. All cells of the row commit in one
// transaction.
//
// Note: the run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteRow(ctx context.Context, runID string, columns []string, row prevalence.Row) error {
	if len(columns) != len(row.Counts) {
		return fmt.Errorf("write row: %d columns for %d counts", len(columns), len(row.Counts))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write row: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prevalence (run_id, at, series, ord, count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, at, series) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write row: prepare: %w", err)
	}
	defer stmt.Close()

	for ord, series := range columns {
		if _, err := stmt.ExecContext(ctx, runID, row.At, series, ord, row.Counts[ord]); err != nil {
			return fmt.Errorf("write row: at %d series %q: %w", row.At, series, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write row: commit: %w", err)
	}
	return nil
}

// WriteTable persists a full prevalence table for a run, one row per
// step. Idempotent like WriteRow.
func (s *Store) WriteTable(ctx context.Context, runID string, tb *prevalence.Table) error {
	if len(tb.Columns) == 0 || tb.Columns[0] != "at" {
		return fmt.Errorf("write table: first column must be \"at\", got %v", tb.Columns)
	}
	series := tb.Columns[1:]
	for _, row := range tb.Rows {
		if err := s.WriteRow(ctx, runID, series, row); err != nil {
			return err
		}
	}
	return nil
}
