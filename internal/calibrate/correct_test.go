package calibrate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/formula"
	"github.com/roach88/epinet/internal/population"
)

func newCalibration(t *testing.T, typ disease.Type, bipartite, vital bool, coefs ...float64) *Calibration {
	t.Helper()
	p, err := disease.NewProfile(typ, bipartite)
	require.NoError(t, err)
	f, err := formula.Parse("~edges")
	require.NoError(t, err)
	if len(coefs) == 0 {
		coefs = []float64{-4.5}
	}
	c, err := NewCalibration(p, f, coefs, vital)
	require.NoError(t, err)
	return c
}

// TestEdgesCorrect_SingleMode verifies the single-population correction:
// 100 -> 80 active nodes adds ln(100) - ln(80) to the edges coefficient.
func TestEdgesCorrect_SingleMode(t *testing.T) {
	c := newCalibration(t, disease.SI, false, true, -4.5)

	delta := c.EdgesCorrect(Counts{Mode1: 100}, Counts{Mode1: 80})
	assert.InDelta(t, math.Log(100)-math.Log(80), delta, 1e-12)
	assert.InDelta(t, 0.22314, delta, 1e-4)
	assert.InDelta(t, -4.5+delta, c.Formation()[0], 1e-12)
}

// TestEdgesCorrect_NoVital verifies the correction is a no-op when vital
// dynamics are disabled.
func TestEdgesCorrect_NoVital(t *testing.T) {
	c := newCalibration(t, disease.SI, false, false, -4.5)

	delta := c.EdgesCorrect(Counts{Mode1: 100}, Counts{Mode1: 80})
	assert.Zero(t, delta)
	assert.Equal(t, []float64{-4.5}, c.Formation())
}

// TestEdgesCorrect_Bipartite verifies the two-mode correction uses the
// 2*m1*m2/(m1+m2) edge-count proxy.
func TestEdgesCorrect_Bipartite(t *testing.T) {
	c := newCalibration(t, disease.SI, true, true, -4.5)

	old := Counts{Mode1: 50, Mode2: 50}
	now := Counts{Mode1: 40, Mode2: 50}
	proxy := func(n Counts) float64 {
		return 2 * float64(n.Mode1) * float64(n.Mode2) / float64(n.Mode1+n.Mode2)
	}
	delta := c.EdgesCorrect(old, now)
	assert.InDelta(t, math.Log(proxy(old))-math.Log(proxy(now)), delta, 1e-12)
}

// TestEdgesCorrect_EmptiedPopulation verifies a run whose population dies
// out leaves the coefficient finite instead of pushing it to infinity.
func TestEdgesCorrect_EmptiedPopulation(t *testing.T) {
	c := newCalibration(t, disease.SI, false, true, -4.5)

	delta := c.EdgesCorrect(Counts{Mode1: 100}, Counts{Mode1: 0})
	assert.Zero(t, delta)
	assert.Equal(t, []float64{-4.5}, c.Formation())
}

// TestNewCalibration_Validation verifies the coefficient/term pairing
// checks.
func TestNewCalibration_Validation(t *testing.T) {
	p, err := disease.NewProfile(disease.SI, false)
	require.NoError(t, err)

	f, err := formula.Parse("~edges")
	require.NoError(t, err)
	_, err = NewCalibration(p, f, []float64{1, 2}, true)
	assert.Error(t, err, "coefficient count must match term count")

	f, err = formula.Parse(`~nodematch("risk")`)
	require.NoError(t, err)
	_, err = NewCalibration(p, f, []float64{1}, true)
	assert.Error(t, err, "formation must carry an edges term")
}

// TestActiveCounts_SIRIncludesRecovered verifies recovered nodes count
// toward the active population under SIR.
func TestActiveCounts_SIRIncludesRecovered(t *testing.T) {
	st := population.New(4)
	require.NoError(t, st.SetStatus(2, disease.Infected))
	require.NoError(t, st.SetStatus(3, disease.Recovered))
	require.NoError(t, st.Deactivate(4))

	sir, err := disease.NewProfile(disease.SIR, false)
	require.NoError(t, err)
	n, err := ActiveCounts(st, sir)
	require.NoError(t, err)
	assert.Equal(t, Counts{Mode1: 3}, n)

	// Under SI the recovered status is not a tracked compartment.
	si, err := disease.NewProfile(disease.SI, false)
	require.NoError(t, err)
	n, err = ActiveCounts(st, si)
	require.NoError(t, err)
	assert.Equal(t, Counts{Mode1: 2}, n)
}

// TestActiveCounts_Bipartite verifies per-mode tallies.
func TestActiveCounts_Bipartite(t *testing.T) {
	st := population.NewBipartite(3, 2)
	require.NoError(t, st.Deactivate(5))

	p, err := disease.NewProfile(disease.SIS, true)
	require.NoError(t, err)
	n, err := ActiveCounts(st, p)
	require.NoError(t, err)
	assert.Equal(t, Counts{Mode1: 3, Mode2: 1}, n)
}
