package population

import (
	"fmt"

	"github.com/roach88/epinet/internal/disease"
)

// Mode identifies a population partition in a bipartite (two-mode)
// contact structure. ModeAll selects both partitions.
type Mode int

const (
	ModeAll Mode = 0
	Mode1   Mode = 1
	Mode2   Mode = 2
)

// rowRef locates a node inside its mode sub-arena.
type rowRef struct {
	arena int8
	row   int32
}

// subarena holds the rows of one mode in position order.
// All slices and every column have identical length at all times.
type subarena struct {
	ids    []int
	active []bool
	status []disease.Status
	cols   map[string]*Column
}

func newSubarena() *subarena {
	return &subarena{cols: make(map[string]*Column)}
}

func (a *subarena) addRow(id int) {
	a.ids = append(a.ids, id)
	a.active = append(a.active, true)
	a.status = append(a.status, disease.Susceptible)
	for _, c := range a.cols {
		c.grow()
	}
}

// Store is the attribute store: per-node attribute columns plus the mode
// index resolving stable node ids to (mode, row).
//
// Ids are 1-based and assigned in allocation order. The initial allocation
// places mode-1 nodes at ids [1, m1] and mode-2 nodes at [m1+1, m1+m2];
// later births receive fresh ids at the end of the id space while the
// mode-ordered layout is recovered through the index map (see OrderedIDs).
type Store struct {
	bipartite bool
	arenas    []*subarena
	index     []rowRef // index[id-1]
	colNames  []string // declaration order
}

// New creates a single-mode population of n nodes, all active and
// susceptible.
func New(n int) *Store {
	s := &Store{arenas: []*subarena{newSubarena()}}
	for i := 0; i < n; i++ {
		s.allocate(0)
	}
	return s
}

// NewBipartite creates a two-mode population with m1 mode-1 nodes followed
// by m2 mode-2 nodes, all active and susceptible.
func NewBipartite(m1, m2 int) *Store {
	s := &Store{bipartite: true, arenas: []*subarena{newSubarena(), newSubarena()}}
	for i := 0; i < m1; i++ {
		s.allocate(0)
	}
	for i := 0; i < m2; i++ {
		s.allocate(1)
	}
	return s
}

// allocate appends a fresh node to the given sub-arena and returns its id.
func (s *Store) allocate(arena int8) int {
	a := s.arenas[arena]
	id := len(s.index) + 1
	s.index = append(s.index, rowRef{arena: arena, row: int32(len(a.ids))})
	a.addRow(id)
	return id
}

// N returns the total node count, active and inactive.
func (s *Store) N() int { return len(s.index) }

// Bipartite reports whether the population has two modes.
func (s *Store) Bipartite() bool { return s.bipartite }

// M1Size returns the number of mode-1 nodes (total population size for
// single-mode stores).
func (s *Store) M1Size() int { return len(s.arenas[0].ids) }

func (s *Store) ref(id int) (rowRef, error) {
	if id < 1 || id > len(s.index) {
		return rowRef{}, errOutOfRange(id, len(s.index))
	}
	return s.index[id-1], nil
}

// checkMode validates a mode filter against the population structure.
func (s *Store) checkMode(mode Mode) error {
	switch mode {
	case ModeAll:
		return nil
	case Mode1, Mode2:
		if !s.bipartite {
			return errInvalidMode(mode)
		}
		return nil
	default:
		return errInvalidMode(mode)
	}
}

// ModeOf resolves a node id to its mode. Every node of a non-bipartite
// population is in mode 1.
func (s *Store) ModeOf(id int) (Mode, error) {
	r, err := s.ref(id)
	if err != nil {
		return 0, err
	}
	return Mode(r.arena + 1), nil
}

// ModeIDs returns all ids (active and inactive) in the given mode, in
// position order. ModeAll returns the full mode-ordered id sequence.
func (s *Store) ModeIDs(mode Mode) ([]int, error) {
	if err := s.checkMode(mode); err != nil {
		return nil, err
	}
	if mode == ModeAll {
		return s.OrderedIDs(), nil
	}
	a := s.arenas[mode-1]
	return append([]int(nil), a.ids...), nil
}

// ActiveIDs returns the ids with active == true, optionally filtered to one
// mode, in position order.
func (s *Store) ActiveIDs(mode Mode) ([]int, error) {
	if err := s.checkMode(mode); err != nil {
		return nil, err
	}
	var out []int
	for _, a := range s.selected(mode) {
		for i, id := range a.ids {
			if a.active[i] {
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// Count returns the number of active nodes under the given mode filter.
func (s *Store) Count(mode Mode) (int, error) {
	if err := s.checkMode(mode); err != nil {
		return 0, err
	}
	n := 0
	for _, a := range s.selected(mode) {
		for _, act := range a.active {
			if act {
				n++
			}
		}
	}
	return n, nil
}

// CountStatus returns the number of active nodes with the given status
// under the given mode filter.
func (s *Store) CountStatus(st disease.Status, mode Mode) (int, error) {
	if err := s.checkMode(mode); err != nil {
		return 0, err
	}
	n := 0
	for _, a := range s.selected(mode) {
		for i, act := range a.active {
			if act && a.status[i] == st {
				n++
			}
		}
	}
	return n, nil
}

func (s *Store) selected(mode Mode) []*subarena {
	if mode == ModeAll {
		return s.arenas
	}
	return s.arenas[mode-1 : mode]
}

// OrderedIDs returns all ids in mode order: the mode-1 block followed by
// the mode-2 block. This is the serialization order handed to graph
// snapshots, so bipartite layouts always see mode-1 rows as a contiguous
// prefix regardless of birth history.
func (s *Store) OrderedIDs() []int {
	out := make([]int, 0, len(s.index))
	for _, a := range s.arenas {
		out = append(out, a.ids...)
	}
	return out
}

// PositionOf returns the 1-based mode-ordered position of a node id.
func (s *Store) PositionOf(id int) (int, error) {
	r, err := s.ref(id)
	if err != nil {
		return 0, err
	}
	pos := int(r.row) + 1
	if r.arena == 1 {
		pos += len(s.arenas[0].ids)
	}
	return pos, nil
}

// AddNode appends a fresh active susceptible node to the given mode and
// returns its id. Mode2 is rejected for single-mode populations; ModeAll
// is shorthand for Mode1.
func (s *Store) AddNode(mode Mode) (int, error) {
	switch mode {
	case ModeAll, Mode1:
		return s.allocate(0), nil
	case Mode2:
		if !s.bipartite {
			return 0, errInvalidMode(mode)
		}
		return s.allocate(1), nil
	default:
		return 0, errInvalidMode(mode)
	}
}

// IsActive reports whether the node is active.
func (s *Store) IsActive(id int) (bool, error) {
	r, err := s.ref(id)
	if err != nil {
		return false, err
	}
	return s.arenas[r.arena].active[r.row], nil
}

// Deactivate marks a node inactive. Deactivating an already inactive node
// is a no-op.
func (s *Store) Deactivate(id int) error {
	r, err := s.ref(id)
	if err != nil {
		return err
	}
	s.arenas[r.arena].active[r.row] = false
	return nil
}

// StatusOf returns the node's disease status.
func (s *Store) StatusOf(id int) (disease.Status, error) {
	r, err := s.ref(id)
	if err != nil {
		return 0, err
	}
	return s.arenas[r.arena].status[r.row], nil
}

// SetStatus overwrites the node's disease status.
func (s *Store) SetStatus(id int, st disease.Status) error {
	r, err := s.ref(id)
	if err != nil {
		return err
	}
	s.arenas[r.arena].status[r.row] = st
	return nil
}

// Statuses returns all statuses in mode order, parallel to OrderedIDs.
func (s *Store) Statuses() []disease.Status {
	out := make([]disease.Status, 0, len(s.index))
	for _, a := range s.arenas {
		out = append(out, a.status...)
	}
	return out
}

// ActiveFlags returns all active flags in mode order, parallel to
// OrderedIDs.
func (s *Store) ActiveFlags() []bool {
	out := make([]bool, 0, len(s.index))
	for _, a := range s.arenas {
		out = append(out, a.active...)
	}
	return out
}

// Verify checks the column-length invariant across both sub-arenas.
// A violation is reported as INCONSISTENT_ATTRIBUTE_LENGTH and must be
// treated as fatal by the caller.
func (s *Store) Verify() error {
	for mi, a := range s.arenas {
		n := len(a.ids)
		if len(a.active) != n || len(a.status) != n {
			return &Error{
				Code:    ErrCodeInconsistentAttributeLength,
				Message: fmt.Sprintf("mode %d core columns diverged (ids=%d active=%d status=%d)", mi+1, n, len(a.active), len(a.status)),
			}
		}
		for name, c := range a.cols {
			if c.Len() != n {
				return &Error{
					Code:    ErrCodeInconsistentAttributeLength,
					Message: fmt.Sprintf("mode %d column length %d, want %d", mi+1, c.Len(), n),
					Attr:    name,
				}
			}
		}
	}
	return nil
}
