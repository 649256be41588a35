package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/population"
)

// TestFromStore verifies the node-side snapshot mirrors the store in mode
// order.
func TestFromStore(t *testing.T) {
	st := population.NewBipartite(2, 2)
	require.NoError(t, st.SetStatus(3, disease.Infected))
	require.NoError(t, st.DefineColumn("risk", population.NewCategorical([]string{"a", "b", "a", "b"})))

	snap, err := FromStore(st, []string{"risk"})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4}, snap.IDs)
	assert.Equal(t, 2, snap.M1Size)
	assert.Equal(t, disease.Infected, snap.Status[2])
	col, ok := snap.Attr("risk")
	require.True(t, ok)
	assert.Equal(t, "b", col.Cat(3))
}

// TestSyncNodes_AfterBirths verifies refreshing node vectors after a birth
// keeps edges intact and picks up the new layout.
func TestSyncNodes_AfterBirths(t *testing.T) {
	st := population.NewBipartite(2, 2)
	snap, err := FromStore(st, nil)
	require.NoError(t, err)
	snap.Edges = append(snap.Edges, Edge{Head: 1, Tail: 3, Onset: 1, Terminus: Ongoing})

	_, err = st.AddNode(population.Mode1)
	require.NoError(t, err)
	require.NoError(t, snap.SyncNodes(st))

	assert.Equal(t, []int{1, 2, 5, 3, 4}, snap.IDs)
	assert.Equal(t, 3, snap.M1Size)
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, 1, snap.Edges[0].Head)
}

// TestTerminateIncident verifies departures close their ongoing edges.
func TestTerminateIncident(t *testing.T) {
	snap := &Snapshot{
		IDs:    []int{1, 2, 3},
		Active: []bool{true, true, true},
		Status: []disease.Status{0, 0, 0},
		Edges: []Edge{
			{Head: 1, Tail: 2, Onset: 1, Terminus: Ongoing},
			{Head: 2, Tail: 3, Onset: 1, Terminus: 4},
			{Head: 1, Tail: 3, Onset: 2, Terminus: Ongoing},
		},
	}

	snap.TerminateIncident([]int{3}, 6)

	assert.Equal(t, Ongoing, snap.Edges[0].Terminus, "edge without departed endpoint stays open")
	assert.Equal(t, 4.0, snap.Edges[1].Terminus, "already closed edge untouched")
	assert.Equal(t, 6.0, snap.Edges[2].Terminus)
}

// TestMeanPartnershipAge verifies the age aggregation over active spells.
func TestMeanPartnershipAge(t *testing.T) {
	snap := &Snapshot{Edges: []Edge{
		{Head: 1, Tail: 2, Onset: 1, Terminus: Ongoing},
		{Head: 2, Tail: 3, Onset: 3, Terminus: Ongoing},
		{Head: 1, Tail: 3, Onset: 1, Terminus: 4}, // dissolved before at=5
	}}

	// Ages at step 5: 4 and 2.
	assert.InDelta(t, 3.0, snap.MeanPartnershipAge(5), 1e-12)

	empty := &Snapshot{}
	assert.True(t, math.IsNaN(empty.MeanPartnershipAge(5)))
}

// TestCensoring verifies spell classification against a window.
func TestCensoring(t *testing.T) {
	snap := &Snapshot{Edges: []Edge{
		{Onset: 0, Terminus: 5},       // left censored for window [2,8]
		{Onset: 3, Terminus: Ongoing}, // right censored
		{Onset: 1, Terminus: Ongoing}, // both
		{Onset: 3, Terminus: 6},       // uncensored
		{Onset: 0, Terminus: 1},       // outside window, ignored
	}}

	tab := snap.Censoring(2, 8)
	assert.Equal(t, 1, tab.LeftCensored)
	assert.Equal(t, 1, tab.RightCensored)
	assert.Equal(t, 1, tab.BothCensored)
	assert.Equal(t, 1, tab.Uncensored)
	assert.Equal(t, 4, tab.Total())
}
