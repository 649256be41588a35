package prevalence

import (
	"fmt"

	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/population"
)

// Tracker appends one row of compartment counts per simulation step.
//
// The tracked series are fixed at step 1: compartments come from the
// disease profile, the mode split from the population structure, and the
// stratum set from the distinct stratification-covariate values observed
// at baseline. Covariate values appearing for the first time through later
// births match no stratum filter and are excluded from stratified tallies;
// the unstratified series still count them.
type Tracker struct {
	profile   disease.Profile
	stratAttr string

	keys []SeriesKey // fixed column order, built at step 1
	rows []Row
}

// Row is one recorded step: counts parallel to the tracker's series keys.
type Row struct {
	At     int
	Counts []int
}

// NewTracker creates a tracker for the given disease profile. stratAttr
// optionally names the covariate to stratify by; empty disables
// stratification.
func NewTracker(p disease.Profile, stratAttr string) *Tracker {
	return &Tracker{profile: p, stratAttr: stratAttr}
}

// Keys returns the tracked series keys in column order. Empty before the
// first Record call.
func (t *Tracker) Keys() []SeriesKey {
	return append([]SeriesKey(nil), t.keys...)
}

// Rows returns the recorded rows in step order.
func (t *Tracker) Rows() []Row {
	return append([]Row(nil), t.rows...)
}

// Record tallies the store's current compartment counts as row `at`.
//
// Rows are append-only and strictly time-ordered: `at` must be exactly one
// past the last recorded row, starting at 1. The first call freezes the
// series set.
func (t *Tracker) Record(at int, st *population.Store) error {
	if at != len(t.rows)+1 {
		return fmt.Errorf("prevalence row %d out of order: next writable row is %d", at, len(t.rows)+1)
	}
	if at == 1 {
		if err := t.buildKeys(st); err != nil {
			return err
		}
	}

	row := Row{At: at, Counts: make([]int, len(t.keys))}
	for i, k := range t.keys {
		n, err := t.count(st, k)
		if err != nil {
			return err
		}
		row.Counts[i] = n
	}
	t.rows = append(t.rows, row)
	return nil
}

// buildKeys fixes the series set from the baseline population: per mode,
// the unstratified compartment block followed by one block per baseline
// stratum value.
func (t *Tracker) buildKeys(st *population.Store) error {
	var strata []string
	if t.stratAttr != "" {
		if !st.HasColumn(t.stratAttr) {
			return fmt.Errorf("stratification attribute %q not defined", t.stratAttr)
		}
		d, err := st.Distribution(t.stratAttr)
		if err != nil {
			return err
		}
		for _, lv := range d.Levels {
			strata = append(strata, lv.Label)
		}
	}

	modes := []population.Mode{population.ModeAll}
	if t.profile.Bipartite {
		modes = []population.Mode{population.Mode1, population.Mode2}
	}

	comps := make([]Compartment, 0, len(t.profile.Compartments)+1)
	for _, c := range t.profile.Compartments {
		comps = append(comps, compartmentOf(c))
	}
	comps = append(comps, CompTotal)

	for _, mode := range modes {
		for _, comp := range comps {
			t.keys = append(t.keys, SeriesKey{Comp: comp, Mode: mode})
		}
		for _, stratum := range strata {
			for _, comp := range comps {
				t.keys = append(t.keys, SeriesKey{Comp: comp, Mode: mode, Stratum: stratum})
			}
		}
	}
	return nil
}

// count evaluates one series key against the store: status filter (unless
// total) intersected with active, mode, and stratum filters.
func (t *Tracker) count(st *population.Store, k SeriesKey) (int, error) {
	ids, err := st.ActiveIDs(k.Mode)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if k.Comp != CompTotal {
			status, err := st.StatusOf(id)
			if err != nil {
				return 0, err
			}
			if status != k.Comp.status() {
				continue
			}
		}
		if k.Stratum != "" {
			label, err := st.LabelAt(t.stratAttr, id)
			if err != nil {
				return 0, err
			}
			if label != k.Stratum {
				continue
			}
		}
		n++
	}
	return n, nil
}
