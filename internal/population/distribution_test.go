package population

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDistribution_Categorical verifies frequencies are computed over
// active nodes only.
func TestDistribution_Categorical(t *testing.T) {
	s := New(4)
	require.NoError(t, s.DefineColumn("risk", NewCategorical([]string{"low", "high", "low", "low"})))
	require.NoError(t, s.Deactivate(4))

	d, err := s.Distribution("risk")
	require.NoError(t, err)
	require.Len(t, d.Levels, 2)
	assert.Equal(t, "high", d.Levels[0].Label)
	assert.InDelta(t, 1.0/3.0, d.Levels[0].Prob, 1e-12)
	assert.Equal(t, "low", d.Levels[1].Label)
	assert.InDelta(t, 2.0/3.0, d.Levels[1].Prob, 1e-12)
}

// TestDistribution_Idempotent verifies recomputing the table from an
// unchanged population yields an identical result.
func TestDistribution_Idempotent(t *testing.T) {
	s := New(6)
	require.NoError(t, s.DefineColumn("age", NewNumeric([]float64{20, 30, 20, 40, 30, 20})))

	d1, err := s.Distribution("age")
	require.NoError(t, err)
	d2, err := s.Distribution("age")
	require.NoError(t, err)

	if diff := cmp.Diff(d1, d2); diff != "" {
		t.Fatalf("distribution not stable across recomputation (-first +second):\n%s", diff)
	}
}

// TestDistribution_NumericOrdering verifies numeric levels are ordered by
// value, not by label string.
func TestDistribution_NumericOrdering(t *testing.T) {
	s := New(3)
	require.NoError(t, s.DefineColumn("age", NewNumeric([]float64{10, 2, 30})))

	d, err := s.Distribution("age")
	require.NoError(t, err)
	require.Len(t, d.Levels, 3)
	assert.Equal(t, []float64{2, 10, 30}, []float64{d.Levels[0].Value, d.Levels[1].Value, d.Levels[2].Value})
}

// TestDistribution_Sample verifies sampling respects the empirical support.
func TestDistribution_Sample(t *testing.T) {
	s := New(4)
	require.NoError(t, s.DefineColumn("risk", NewCategorical([]string{"a", "a", "a", "b"})))

	d, err := s.Distribution("risk")
	require.NoError(t, err)

	r := rand.New(rand.NewSource(42))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		lv, ok := d.Sample(r)
		require.True(t, ok)
		seen[lv.Label] = true
		assert.Contains(t, []string{"a", "b"}, lv.Label)
	}
	assert.True(t, seen["a"], "dominant level should be drawn")
}

// TestDistribution_Empty verifies sampling from a distribution built over
// zero active nodes reports failure instead of panicking.
func TestDistribution_Empty(t *testing.T) {
	s := New(1)
	require.NoError(t, s.DefineColumn("x", NewNumeric([]float64{1})))
	require.NoError(t, s.Deactivate(1))

	d, err := s.Distribution("x")
	require.NoError(t, err)
	_, ok := d.Sample(rand.New(rand.NewSource(1)))
	assert.False(t, ok)
}

// TestDistribution_UnknownAttribute verifies the error path.
func TestDistribution_UnknownAttribute(t *testing.T) {
	s := New(1)
	_, err := s.Distribution("nope")
	require.Error(t, err)
}
