// Package disease defines the disease-model variants supported by the
// simulation core and the per-variant strategy table.
//
// A variant is the pair (disease type, population structure). Everything
// that depends on the variant - which compartments exist, which compartments
// hold network edges, how the edge-count proxy is computed for coefficient
// recalibration - is resolved exactly once into a Profile at setup time.
// Downstream code switches on the Profile, never on raw strings.
package disease

import "fmt"

// Type identifies the disease progression model.
type Type int

const (
	// SI is susceptible-infected: infection is an absorbing state.
	SI Type = iota + 1
	// SIS is susceptible-infected-susceptible: recovery returns nodes to
	// the susceptible compartment.
	SIS
	// SIR is susceptible-infected-recovered: recovered is an absorbing
	// state and a distinct compartment.
	SIR
)

// String returns the canonical short name of the type.
func (t Type) String() string {
	switch t {
	case SI:
		return "SI"
	case SIS:
		return "SIS"
	case SIR:
		return "SIR"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType converts a configuration string into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "SI":
		return SI, nil
	case "SIS":
		return SIS, nil
	case "SIR":
		return SIR, nil
	default:
		return 0, fmt.Errorf("unknown disease type %q (want SI, SIS or SIR)", s)
	}
}

// Status is a node's current compartment.
//
// The numeric values are part of the on-disk and cross-package contract:
// they match the status codes stored in attribute columns and snapshots.
type Status int8

const (
	Susceptible Status = 0
	Infected    Status = 1
	// Recovered is only a valid status under the SIR type.
	Recovered Status = 2
)

// String returns the single-letter compartment name.
func (s Status) String() string {
	switch s {
	case Susceptible:
		return "s"
	case Infected:
		return "i"
	case Recovered:
		return "r"
	default:
		return fmt.Sprintf("Status(%d)", int8(s))
	}
}

// Profile is the resolved strategy record for one (type, structure) variant.
//
// Compartments lists every compartment a node may occupy under the variant,
// in tally order. All of them hold network edges: under SIR, recovered
// nodes keep their partnerships, so they count toward the active population
// used by edge-coefficient recalibration.
type Profile struct {
	Type      Type
	Bipartite bool

	// Compartments in fixed tally order (susceptible, infected[, recovered]).
	Compartments []Status
}

// NewProfile resolves the strategy table entry for the given variant.
func NewProfile(t Type, bipartite bool) (Profile, error) {
	switch t {
	case SI, SIS:
		return Profile{Type: t, Bipartite: bipartite, Compartments: []Status{Susceptible, Infected}}, nil
	case SIR:
		return Profile{Type: t, Bipartite: bipartite, Compartments: []Status{Susceptible, Infected, Recovered}}, nil
	default:
		return Profile{}, fmt.Errorf("unknown disease type %d", int(t))
	}
}

// ValidStatus reports whether st is a legal status under the profile.
func (p Profile) ValidStatus(st Status) bool {
	for _, c := range p.Compartments {
		if c == st {
			return true
		}
	}
	return false
}
