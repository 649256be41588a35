// Package config compiles CUE simulation definitions into the typed run
// configuration consumed by the simulation engine.
package config

import (
	"fmt"
	"math/rand"

	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/formula"
	"github.com/roach88/epinet/internal/population"
	"github.com/roach88/epinet/internal/vital"
)

// Config is one simulation run's full configuration.
type Config struct {
	Disease disease.Type
	Modes   int // 1 or 2
	Steps   int
	Seed    int64

	Population  Population
	Formation   Formation
	Dissolution Dissolution
	Vital       Vital

	// BirthRules maps attribute name to its birth-assignment rule;
	// attributes absent from the map default to the current-distribution
	// rule.
	BirthRules vital.Rules

	// StratifyBy optionally names the covariate for stratified prevalence
	// output.
	StratifyBy string
}

// Population describes the initial population.
type Population struct {
	N  int // mode-1 size
	M2 int // mode-2 size, 0 unless bipartite

	// Statuses optionally fixes every node's initial status explicitly,
	// in mode order. When empty, Infected/InfectedM2 (and Recovered under
	// SIR) nodes are placed by seeded draw.
	Statuses []disease.Status

	Infected    int
	InfectedM2  int
	Recovered   int
	RecoveredM2 int

	Attributes []Attribute
}

// Attribute describes one initial covariate column. Exactly one of the
// explicit value lists or Levels must be set.
type Attribute struct {
	Name string
	Kind population.Kind

	// CatValues / NumValues give every node's value explicitly, in mode
	// order.
	CatValues []string
	NumValues []float64

	// Levels samples each node's value from a weighted level set.
	Levels []Level
}

// Level is one weighted level of a sampled initial attribute.
type Level struct {
	Cat    string
	Num    float64
	Weight float64
}

// Formation is the formation-model side of the configuration.
type Formation struct {
	Formula formula.Formula
	Coefs   []float64
}

// Dissolution is the dissolution-model side of the configuration.
type Dissolution struct {
	Formula  formula.Formula
	Duration float64
	ExitRate float64
}

// Vital configures demographic turnover.
type Vital struct {
	Enabled     bool
	BirthRate   float64
	BirthRateM2 float64
	DeathRate   float64
}

// Bipartite reports whether the run uses a two-mode population.
func (c *Config) Bipartite() bool { return c.Modes == 2 }

// BuildPopulation materializes the initial attribute store: sizes,
// statuses, and covariate columns. Sampled placements (infection seeds,
// weighted attribute levels) draw from rng, so a fixed seed reproduces the
// same initial population.
func (c *Config) BuildPopulation(rng *rand.Rand) (*population.Store, error) {
	var st *population.Store
	if c.Bipartite() {
		st = population.NewBipartite(c.Population.N, c.Population.M2)
	} else {
		st = population.New(c.Population.N)
	}

	if err := c.assignStatuses(st, rng); err != nil {
		return nil, err
	}

	for _, attr := range c.Population.Attributes {
		col, err := attr.column(st.N(), rng)
		if err != nil {
			return nil, err
		}
		if err := st.DefineColumn(attr.Name, col); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (c *Config) assignStatuses(st *population.Store, rng *rand.Rand) error {
	if len(c.Population.Statuses) > 0 {
		ids := st.OrderedIDs()
		if len(c.Population.Statuses) != len(ids) {
			return fmt.Errorf("statuses has %d entries for %d nodes", len(c.Population.Statuses), len(ids))
		}
		for i, id := range ids {
			if err := st.SetStatus(id, c.Population.Statuses[i]); err != nil {
				return err
			}
		}
		return nil
	}

	if err := seedStatuses(st, rng, population.Mode1, c.Bipartite(), c.Population.Infected, c.Population.Recovered); err != nil {
		return err
	}
	if c.Bipartite() {
		return seedStatuses(st, rng, population.Mode2, true, c.Population.InfectedM2, c.Population.RecoveredM2)
	}
	return nil
}

// seedStatuses places nInf infected and nRec recovered nodes in one mode
// by seeded draw without replacement.
func seedStatuses(st *population.Store, rng *rand.Rand, mode population.Mode, bipartite bool, nInf, nRec int) error {
	filter := population.ModeAll
	if bipartite {
		filter = mode
	}
	ids, err := st.ModeIDs(filter)
	if err != nil {
		return err
	}
	if nInf+nRec > len(ids) {
		return fmt.Errorf("mode %d seeds %d exceed mode size %d", mode, nInf+nRec, len(ids))
	}
	perm := rng.Perm(len(ids))
	for i := 0; i < nInf; i++ {
		if err := st.SetStatus(ids[perm[i]], disease.Infected); err != nil {
			return err
		}
	}
	for i := nInf; i < nInf+nRec; i++ {
		if err := st.SetStatus(ids[perm[i]], disease.Recovered); err != nil {
			return err
		}
	}
	return nil
}

// column materializes one attribute column of length n.
func (a Attribute) column(n int, rng *rand.Rand) (*population.Column, error) {
	switch {
	case len(a.CatValues) > 0:
		return population.NewCategorical(a.CatValues), nil
	case len(a.NumValues) > 0:
		return population.NewNumeric(a.NumValues), nil
	case len(a.Levels) > 0:
		return a.sampled(n, rng)
	default:
		return nil, fmt.Errorf("attribute %q has neither values nor levels", a.Name)
	}
}

func (a Attribute) sampled(n int, rng *rand.Rand) (*population.Column, error) {
	total := 0.0
	for _, lv := range a.Levels {
		if lv.Weight < 0 {
			return nil, fmt.Errorf("attribute %q has negative level weight", a.Name)
		}
		total += lv.Weight
	}
	if total == 0 {
		return nil, fmt.Errorf("attribute %q has zero total level weight", a.Name)
	}

	pick := func() Level {
		u := rng.Float64() * total
		acc := 0.0
		for _, lv := range a.Levels {
			acc += lv.Weight
			if u < acc {
				return lv
			}
		}
		return a.Levels[len(a.Levels)-1]
	}

	if a.Kind == population.KindCategorical {
		vals := make([]string, n)
		for i := range vals {
			vals[i] = pick().Cat
		}
		return population.NewCategorical(vals), nil
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = pick().Num
	}
	return population.NewNumeric(vals), nil
}
