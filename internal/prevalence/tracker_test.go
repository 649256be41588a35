package prevalence

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/population"
)

func sirStore(t *testing.T) *population.Store {
	t.Helper()
	st := population.New(4)
	require.NoError(t, st.SetStatus(3, disease.Infected))
	require.NoError(t, st.SetStatus(4, disease.Recovered))
	return st
}

// TestRecord_SIRCounts verifies the canonical SIR tally: statuses
// {0,0,1,2} yield s.num=2, i.num=1, r.num=1, num=4.
func TestRecord_SIRCounts(t *testing.T) {
	p, err := disease.NewProfile(disease.SIR, false)
	require.NoError(t, err)
	tr := NewTracker(p, "")

	require.NoError(t, tr.Record(1, sirStore(t)))

	tbl := tr.Table()
	assert.Equal(t, []string{"at", "s.num", "i.num", "r.num", "num"}, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []int{2, 1, 1, 4}, tbl.Rows[0].Counts)
}

// TestRecord_ExcludesInactive verifies the active filter intersects every
// tally.
func TestRecord_ExcludesInactive(t *testing.T) {
	st := sirStore(t)
	require.NoError(t, st.Deactivate(3))

	p, err := disease.NewProfile(disease.SIR, false)
	require.NoError(t, err)
	tr := NewTracker(p, "")
	require.NoError(t, tr.Record(1, st))

	assert.Equal(t, []int{2, 0, 1, 3}, tr.Rows()[0].Counts)
}

// TestRecord_Bipartite verifies every series is computed per mode, with
// mode-2 columns suffixed.
func TestRecord_Bipartite(t *testing.T) {
	st := population.NewBipartite(5, 5)
	require.NoError(t, st.SetStatus(1, disease.Infected))
	require.NoError(t, st.SetStatus(6, disease.Infected))
	require.NoError(t, st.SetStatus(7, disease.Infected))

	p, err := disease.NewProfile(disease.SI, true)
	require.NoError(t, err)
	tr := NewTracker(p, "")
	require.NoError(t, tr.Record(1, st))

	tbl := tr.Table()
	assert.Equal(t, []string{"at", "s.num", "i.num", "num", "s.num.m2", "i.num.m2", "num.m2"}, tbl.Columns)
	assert.Equal(t, []int{4, 1, 5, 3, 2, 5}, tbl.Rows[0].Counts)
}

// TestRecord_Stratified verifies stratified series are produced per
// baseline covariate value and frozen there: values first appearing
// through later births match no stratum.
func TestRecord_Stratified(t *testing.T) {
	st := population.New(4)
	require.NoError(t, st.DefineColumn("risk", population.NewCategorical([]string{"high", "low", "high", "low"})))
	require.NoError(t, st.SetStatus(1, disease.Infected))

	p, err := disease.NewProfile(disease.SI, false)
	require.NoError(t, err)
	tr := NewTracker(p, "risk")
	require.NoError(t, tr.Record(1, st))

	tbl := tr.Table()
	assert.Equal(t, []string{
		"at", "s.num", "i.num", "num",
		"s.num.high", "i.num.high", "num.high",
		"s.num.low", "i.num.low", "num.low",
	}, tbl.Columns)
	assert.Equal(t, []int{3, 1, 4, 1, 1, 2, 2, 0, 2}, tbl.Rows[0].Counts)

	// A birth introducing an unseen covariate value is counted in the
	// unstratified series only.
	id, err := st.AddNode(population.ModeAll)
	require.NoError(t, err)
	require.NoError(t, st.SetCat("risk", id, "medium"))
	require.NoError(t, tr.Record(2, st))

	assert.Equal(t, []int{4, 1, 5, 1, 1, 2, 2, 0, 2}, tr.Rows()[1].Counts)
}

// TestRecord_AppendOnly verifies rows are written exactly once, in order.
func TestRecord_AppendOnly(t *testing.T) {
	p, err := disease.NewProfile(disease.SIR, false)
	require.NoError(t, err)
	tr := NewTracker(p, "")
	st := sirStore(t)

	require.NoError(t, tr.Record(1, st))
	require.Error(t, tr.Record(1, st), "rewriting a recorded row must fail")
	require.Error(t, tr.Record(3, st), "skipping a step must fail")
	require.NoError(t, tr.Record(2, st))
}

// TestRecord_MissingStratAttr verifies the error path for an undefined
// stratification covariate.
func TestRecord_MissingStratAttr(t *testing.T) {
	p, err := disease.NewProfile(disease.SI, false)
	require.NoError(t, err)
	tr := NewTracker(p, "ghost")
	err = tr.Record(1, population.New(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

// TestWriteCSV verifies the delimited rendering.
func TestWriteCSV(t *testing.T) {
	p, err := disease.NewProfile(disease.SIR, false)
	require.NoError(t, err)
	tr := NewTracker(p, "")
	st := sirStore(t)
	require.NoError(t, tr.Record(1, st))
	require.NoError(t, tr.Record(2, st))

	var buf bytes.Buffer
	require.NoError(t, tr.Table().WriteCSV(&buf))
	assert.Equal(t, "at,s.num,i.num,r.num,num\n1,2,1,1,4\n2,2,1,1,4\n", buf.String())
}
