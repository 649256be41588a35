package calibrate

import (
	"fmt"
	"math"

	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/formula"
	"github.com/roach88/epinet/internal/population"
)

// Counts holds per-mode active population sizes used by the edges
// correction. Mode2 is 0 for single-mode populations.
type Counts struct {
	Mode1 int
	Mode2 int
}

// Calibration holds the formation-model coefficients being recalibrated
// each step. It is the mutable companion of the immutable Dissolution
// record: the edges coefficient moves every step under vital dynamics,
// nothing else does.
type Calibration struct {
	profile   disease.Profile
	vital     bool
	formation []float64
	edgesIdx  int
}

// NewCalibration binds formation coefficients to their formula terms.
// The coefficient vector must be parallel to the formula's terms, and the
// formula must contain an edges term for the correction to target.
func NewCalibration(p disease.Profile, form formula.Formula, coefs []float64, vital bool) (*Calibration, error) {
	if len(coefs) != len(form.Terms) {
		return nil, fmt.Errorf("formation has %d terms but %d coefficients", len(form.Terms), len(coefs))
	}
	edgesIdx := -1
	for i, t := range form.Terms {
		if t.Name == "edges" {
			edgesIdx = i
			break
		}
	}
	if edgesIdx < 0 {
		return nil, fmt.Errorf("formation formula %q has no edges term", form.String())
	}
	return &Calibration{
		profile:   p,
		vital:     vital,
		formation: append([]float64(nil), coefs...),
		edgesIdx:  edgesIdx,
	}, nil
}

// Formation returns a copy of the current formation coefficients.
func (c *Calibration) Formation() []float64 {
	return append([]float64(nil), c.formation...)
}

// EdgesCorrect recalibrates the formation edges coefficient after a
// population size change, so the coefficient fit for the old size still
// targets the same mean degree at the new size. Returns the applied delta.
//
// Single-mode populations use ln(old) - ln(new) over the active counts.
// Bipartite populations use the harmonic-mean-like edge-count proxy
// 2*m1*m2/(m1+m2) evaluated at old and new per-mode counts.
//
// The correction only applies under vital dynamics: static populations
// never change size, so the call is a no-op for them.
func (c *Calibration) EdgesCorrect(old, new Counts) float64 {
	if !c.vital {
		return 0
	}
	var oldN, newN float64
	if c.profile.Bipartite {
		oldN, newN = bipartiteProxy(old), bipartiteProxy(new)
	} else {
		oldN, newN = float64(old.Mode1), float64(new.Mode1)
	}
	// An emptied (or initially empty) population has no mean degree to
	// preserve; leave the coefficient alone rather than push it to infinity.
	if oldN <= 0 || newN <= 0 {
		return 0
	}
	delta := math.Log(oldN) - math.Log(newN)
	c.formation[c.edgesIdx] += delta
	return delta
}

// bipartiteProxy is the expected edge-count proxy for a two-mode
// population of the given active sizes.
func bipartiteProxy(n Counts) float64 {
	m1, m2 := float64(n.Mode1), float64(n.Mode2)
	return 2 * m1 * m2 / (m1 + m2)
}

// ActiveCounts tallies active nodes whose status belongs to the profile's
// compartment set, per mode. Under SIR this includes recovered nodes,
// since they still hold edges; SI and SIS sum susceptible and infected.
func ActiveCounts(st *population.Store, p disease.Profile) (Counts, error) {
	var n Counts
	if p.Bipartite {
		for _, c := range p.Compartments {
			m1, err := st.CountStatus(c, population.Mode1)
			if err != nil {
				return Counts{}, err
			}
			m2, err := st.CountStatus(c, population.Mode2)
			if err != nil {
				return Counts{}, err
			}
			n.Mode1 += m1
			n.Mode2 += m2
		}
		return n, nil
	}
	for _, c := range p.Compartments {
		m, err := st.CountStatus(c, population.ModeAll)
		if err != nil {
			return Counts{}, err
		}
		n.Mode1 += m
	}
	return n, nil
}
