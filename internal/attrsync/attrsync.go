// Package attrsync keeps the attribute store aligned with the covariates
// the active model formula references on the graph, and records the
// baseline attribute distributions used for t1-rule birth sampling.
package attrsync

import (
	"fmt"

	"github.com/roach88/epinet/internal/formula"
	"github.com/roach88/epinet/internal/graph"
	"github.com/roach88/epinet/internal/population"
)

// ExtractFormulaAttributes returns the distinct quoted nodal-covariate
// names referenced by a formation-model formula. Terms without a quoted
// covariate argument contribute nothing; a formula with none returns nil.
func ExtractFormulaAttributes(f formula.Formula) []string {
	return f.Attrs()
}

// Synchronizer pulls formula-referenced attributes off graph snapshots
// into the attribute store.
//
// The baseline snapshot taken at step 1 is held on the Synchronizer
// itself: one per simulation run, never shared process-wide.
type Synchronizer struct {
	baseline map[string]population.Distribution
}

// New creates a Synchronizer with no baseline captured yet.
func New() *Synchronizer {
	return &Synchronizer{}
}

// CopyToStore copies the current per-node value vector of every named
// attribute present on the graph into the attribute store, overwriting any
// stale copy. At step 1 it additionally snapshots each copied attribute's
// empirical distribution for later t1-rule sampling.
func (s *Synchronizer) CopyToStore(snap *graph.Snapshot, at int, names []string, st *population.Store) error {
	for _, name := range names {
		col, ok := snap.Attr(name)
		if !ok {
			continue
		}
		if err := st.DefineColumn(name, col); err != nil {
			return fmt.Errorf("sync attribute %q at step %d: %w", name, at, err)
		}
	}
	if at == 1 {
		dists, err := AttributeDistribution(snap, names)
		if err != nil {
			return fmt.Errorf("baseline snapshot: %w", err)
		}
		s.baseline = dists
	}
	return nil
}

// Baseline returns the step-1 attribute distributions, keyed by attribute
// name. Nil before the first step-1 CopyToStore call.
func (s *Synchronizer) Baseline() map[string]population.Distribution {
	return s.baseline
}

// AttributeDistribution returns, per named attribute present on the graph,
// the normalized frequency table of its values among active nodes. The
// level ordering is deterministic, so recomputation over an unchanged
// graph yields an identical table.
func AttributeDistribution(snap *graph.Snapshot, names []string) (map[string]population.Distribution, error) {
	out := make(map[string]population.Distribution)
	for _, name := range names {
		col, ok := snap.Attr(name)
		if !ok {
			continue
		}
		if col.Len() != len(snap.Active) {
			return nil, fmt.Errorf("attribute %q has %d values for %d nodes", name, col.Len(), len(snap.Active))
		}
		out[name] = population.ColumnDistribution(col, snap.Active)
	}
	return out, nil
}
