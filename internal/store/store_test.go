package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/epinet/internal/prevalence"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "epinet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(id string) Run {
	return Run{ID: id, Disease: "SIR", Modes: 1, Steps: 3, Seed: 42}
}

func TestOpen_Pragmas(t *testing.T) {
	s := testStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epinet.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	var version int
	require.NoError(t, s2.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestWriteRun_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	want := testRun("run-1")
	require.NoError(t, s.WriteRun(ctx, want))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1")))

	// A second write with different metadata is silently ignored.
	dup := testRun("run-1")
	dup.Steps = 99
	require.NoError(t, s.WriteRun(ctx, dup))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Steps)
}

func TestReadRun_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListRuns_CreationOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// UUIDv7-style ids sort by their time prefix.
	require.NoError(t, s.WriteRun(ctx, testRun("0191-b")))
	require.NoError(t, s.WriteRun(ctx, testRun("0191-a")))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "0191-a", runs[0].ID)
	assert.Equal(t, "0191-b", runs[1].ID)
}

func TestListRuns_Empty(t *testing.T) {
	s := testStore(t)
	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func sampleTable() *prevalence.Table {
	return &prevalence.Table{
		Columns: []string{"at", "s.num", "i.num", "num"},
		Rows: []prevalence.Row{
			{At: 1, Counts: []int{9, 1, 10}},
			{At: 2, Counts: []int{8, 2, 10}},
		},
	}
}

func TestWriteTable_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1")))
	require.NoError(t, s.WriteTable(ctx, "run-1", sampleTable()))

	got, err := s.ReadTable(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), got)
}

func TestWriteRow_WriteOnce(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1")))
	cols := []string{"s.num", "i.num", "num"}
	require.NoError(t, s.WriteRow(ctx, "run-1", cols, prevalence.Row{At: 1, Counts: []int{9, 1, 10}}))

	// A conflicting rewrite of the same step never overwrites.
	require.NoError(t, s.WriteRow(ctx, "run-1", cols, prevalence.Row{At: 1, Counts: []int{0, 0, 0}}))

	counts, err := s.ReadSeries(ctx, "run-1", "i.num")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, counts)
}

func TestWriteRow_ColumnMismatch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1")))
	err := s.WriteRow(ctx, "run-1", []string{"s.num"}, prevalence.Row{At: 1, Counts: []int{1, 2}})
	assert.Error(t, err)
}

func TestReadSeries_StepOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1")))
	require.NoError(t, s.WriteTable(ctx, "run-1", sampleTable()))

	counts, err := s.ReadSeries(ctx, "run-1", "i.num")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, counts)
}

func TestReadTable_Empty(t *testing.T) {
	s := testStore(t)
	tb, err := s.ReadTable(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, tb.Columns)
	assert.Empty(t, tb.Rows)
}
