// Package prevalence tallies compartment counts into an append-only,
// stratified time series.
//
// Every tracked quantity is identified by a structured SeriesKey rather
// than a runtime-assembled column-name string; the string form is rendered
// once, through an explicit table, when output is produced.
package prevalence

import (
	"fmt"

	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/population"
)

// Compartment identifies a tallied quantity: one disease compartment or
// the total active count.
type Compartment int

const (
	CompSusceptible Compartment = iota
	CompInfected
	CompRecovered
	CompTotal
)

// base returns the column-name stem for the compartment.
func (c Compartment) base() string {
	switch c {
	case CompSusceptible:
		return "s.num"
	case CompInfected:
		return "i.num"
	case CompRecovered:
		return "r.num"
	case CompTotal:
		return "num"
	default:
		return fmt.Sprintf("comp%d.num", int(c))
	}
}

// status returns the disease status the compartment filters on.
// Only meaningful for non-total compartments.
func (c Compartment) status() disease.Status {
	switch c {
	case CompInfected:
		return disease.Infected
	case CompRecovered:
		return disease.Recovered
	default:
		return disease.Susceptible
	}
}

// compartmentOf maps a disease status to its tally compartment.
func compartmentOf(st disease.Status) Compartment {
	switch st {
	case disease.Infected:
		return CompInfected
	case disease.Recovered:
		return CompRecovered
	default:
		return CompSusceptible
	}
}

// SeriesKey identifies one tracked time series.
type SeriesKey struct {
	// Comp is the tallied compartment.
	Comp Compartment
	// Mode restricts the tally to one population partition. ModeAll for
	// single-mode populations; Mode1 or Mode2 for bipartite ones.
	Mode population.Mode
	// Stratum restricts the tally to nodes whose stratification covariate
	// renders to this label; empty for unstratified series.
	Stratum string
}

// Column renders the key's output column name. Mode-1 and single-mode
// series are unsuffixed; mode-2 series carry the ".m2" suffix; stratified
// series interleave the stratum label before the mode suffix.
func (k SeriesKey) Column() string {
	name := k.Comp.base()
	if k.Stratum != "" {
		name += "." + k.Stratum
	}
	if k.Mode == population.Mode2 {
		name += ".m2"
	}
	return name
}
