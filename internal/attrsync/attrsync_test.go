package attrsync

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/formula"
	"github.com/roach88/epinet/internal/graph"
	"github.com/roach88/epinet/internal/population"
)

func testSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()
	snap := &graph.Snapshot{
		IDs:    []int{1, 2, 3, 4},
		Active: []bool{true, true, true, false},
		Status: []disease.Status{0, 0, 1, 0},
	}
	snap.SetAttr("risk", population.NewCategorical([]string{"low", "high", "low", "high"}))
	return snap
}

// TestExtractFormulaAttributes verifies the formula-to-covariate
// extraction.
func TestExtractFormulaAttributes(t *testing.T) {
	f, err := formula.Parse(`~edges + nodematch("risk") + nodefactor("group")`)
	require.NoError(t, err)
	assert.Equal(t, []string{"risk", "group"}, ExtractFormulaAttributes(f))

	f, err = formula.Parse(`~edges`)
	require.NoError(t, err)
	assert.Nil(t, ExtractFormulaAttributes(f))
}

// TestCopyToStore verifies graph attributes overwrite the store's copy and
// the step-1 call captures the baseline.
func TestCopyToStore(t *testing.T) {
	snap := testSnapshot(t)
	st := population.New(4)
	// Stale copy that must be overwritten.
	require.NoError(t, st.DefineColumn("risk", population.NewCategorical([]string{"x", "x", "x", "x"})))

	s := New()
	require.NoError(t, s.CopyToStore(snap, 1, []string{"risk", "absent"}, st))

	v, err := st.CatAt("risk", 2)
	require.NoError(t, err)
	assert.Equal(t, "high", v)

	base := s.Baseline()
	require.Contains(t, base, "risk")
	// Distribution is over active nodes: low, high, low.
	require.Len(t, base["risk"].Levels, 2)
	assert.Equal(t, "high", base["risk"].Levels[0].Label)
	assert.InDelta(t, 1.0/3.0, base["risk"].Levels[0].Prob, 1e-12)
}

// TestCopyToStore_LaterStepsKeepBaseline verifies only step 1 snapshots
// the baseline.
func TestCopyToStore_LaterStepsKeepBaseline(t *testing.T) {
	snap := testSnapshot(t)
	st := population.New(4)
	s := New()
	require.NoError(t, s.CopyToStore(snap, 1, []string{"risk"}, st))
	want := s.Baseline()

	snap.SetAttr("risk", population.NewCategorical([]string{"low", "low", "low", "low"}))
	require.NoError(t, s.CopyToStore(snap, 2, []string{"risk"}, st))

	if diff := cmp.Diff(want, s.Baseline()); diff != "" {
		t.Fatalf("baseline changed after step 1 (-want +got):\n%s", diff)
	}
}

// TestAttributeDistribution_Idempotent verifies round-trip stability over
// an unchanged graph.
func TestAttributeDistribution_Idempotent(t *testing.T) {
	snap := testSnapshot(t)

	d1, err := AttributeDistribution(snap, []string{"risk"})
	require.NoError(t, err)
	d2, err := AttributeDistribution(snap, []string{"risk"})
	require.NoError(t, err)

	if diff := cmp.Diff(d1, d2); diff != "" {
		t.Fatalf("distribution not stable (-first +second):\n%s", diff)
	}
}

// TestAttributeDistribution_SkipsAbsent verifies names missing from the
// graph are skipped, not errors.
func TestAttributeDistribution_SkipsAbsent(t *testing.T) {
	d, err := AttributeDistribution(testSnapshot(t), []string{"ghost"})
	require.NoError(t, err)
	assert.Empty(t, d)
}

// TestAttributeDistribution_LengthMismatch verifies malformed graph
// attribute vectors are rejected.
func TestAttributeDistribution_LengthMismatch(t *testing.T) {
	snap := testSnapshot(t)
	snap.SetAttr("bad", population.NewCategorical([]string{"a"}))
	_, err := AttributeDistribution(snap, []string{"bad"})
	require.Error(t, err)
}

// TestBaseline_PerRun verifies two synchronizers never share baseline
// state.
func TestBaseline_PerRun(t *testing.T) {
	snap := testSnapshot(t)
	st1, st2 := population.New(4), population.New(4)

	s1, s2 := New(), New()
	require.NoError(t, s1.CopyToStore(snap, 1, []string{"risk"}, st1))

	other := &graph.Snapshot{
		IDs:    []int{1, 2, 3, 4},
		Active: []bool{true, true, true, true},
		Status: []disease.Status{0, 0, 0, 0},
	}
	other.SetAttr("risk", population.NewCategorical([]string{"mid", "mid", "mid", "mid"}))
	require.NoError(t, s2.CopyToStore(other, 1, []string{"risk"}, st2))

	assert.NotEqual(t, s1.Baseline()["risk"], s2.Baseline()["risk"])
}
