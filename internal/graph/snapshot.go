// Package graph holds the contact-graph snapshot exchanged with the
// external graph-evolution model, plus read-only aggregations over edge
// activity spells.
//
// A snapshot's node-side vectors are in mode order (mode-1 block first for
// bipartite layouts), parallel to population.Store.OrderedIDs. Edges
// reference node ids, not positions, so they survive births.
package graph

import (
	"math"

	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/population"
)

// Ongoing marks an edge whose dissolution has not been observed.
const Ongoing = math.MaxFloat64

// Edge is one partnership spell between two node ids.
type Edge struct {
	Head int
	Tail int
	// Onset is the step at which the edge formed.
	Onset float64
	// Terminus is the step at which the edge dissolved, or Ongoing.
	Terminus float64
}

// ActiveAt reports whether the edge exists at step `at`.
func (e Edge) ActiveAt(at float64) bool {
	return e.Onset <= at && at < e.Terminus
}

// Snapshot is the graph state handed to and returned by the evolution
// black box.
type Snapshot struct {
	// IDs is the node-id sequence in mode order.
	IDs []int
	// M1Size is the length of the mode-1 block; 0 for single-mode graphs.
	M1Size int
	// Active flags, parallel to IDs.
	Active []bool
	// Status codes, parallel to IDs.
	Status []disease.Status
	// Edges holds every partnership spell observed so far, dissolved ones
	// included.
	Edges []Edge

	attrs map[string]*population.Column
}

// FromStore builds a node-side snapshot from the population store,
// carrying over the given attribute columns. Edges start empty.
func FromStore(st *population.Store, attrNames []string) (*Snapshot, error) {
	snap := &Snapshot{
		IDs:    st.OrderedIDs(),
		Active: st.ActiveFlags(),
		Status: st.Statuses(),
	}
	if st.Bipartite() {
		snap.M1Size = st.M1Size()
	}
	for _, name := range attrNames {
		col, err := st.ColumnValues(name)
		if err != nil {
			return nil, err
		}
		snap.SetAttr(name, col)
	}
	return snap, nil
}

// SyncNodes refreshes the snapshot's node-side vectors from the store
// after demographic updates, preserving edges and attributes already on
// the graph that the store also carries.
func (s *Snapshot) SyncNodes(st *population.Store) error {
	s.IDs = st.OrderedIDs()
	s.Active = st.ActiveFlags()
	s.Status = st.Statuses()
	if st.Bipartite() {
		s.M1Size = st.M1Size()
	}
	for name := range s.attrs {
		if !st.HasColumn(name) {
			continue
		}
		col, err := st.ColumnValues(name)
		if err != nil {
			return err
		}
		s.attrs[name] = col
	}
	return nil
}

// SetAttr installs a per-node attribute vector (mode order, parallel to
// IDs).
func (s *Snapshot) SetAttr(name string, col *population.Column) {
	if s.attrs == nil {
		s.attrs = make(map[string]*population.Column)
	}
	s.attrs[name] = col
}

// Attr returns the named per-node attribute vector.
func (s *Snapshot) Attr(name string) (*population.Column, bool) {
	c, ok := s.attrs[name]
	return c, ok
}

// HasAttr reports whether the named attribute vector is present.
func (s *Snapshot) HasAttr(name string) bool {
	_, ok := s.attrs[name]
	return ok
}

// ActiveIDs returns the ids of active nodes in mode order.
func (s *Snapshot) ActiveIDs() []int {
	var out []int
	for i, id := range s.IDs {
		if s.Active[i] {
			out = append(out, id)
		}
	}
	return out
}

// TerminateIncident closes every ongoing edge incident to one of the given
// node ids at step `at`. Used when nodes exit the population: their
// partnerships end with them.
func (s *Snapshot) TerminateIncident(ids []int, at float64) {
	gone := make(map[int]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	for i := range s.Edges {
		e := &s.Edges[i]
		if e.Terminus == Ongoing && (gone[e.Head] || gone[e.Tail]) {
			e.Terminus = at
		}
	}
}
