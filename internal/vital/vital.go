// Package vital applies demographic turnover to the population: births
// grow the attribute store with new nodes, deaths deactivate existing
// ones.
//
// Birth-cohort attribute assignment is governed per attribute by a Rule:
// sample from the current empirical distribution, sample from the baseline
// (step-1) distribution, or assign a fixed literal. Different attributes
// may use different rules in the same run.
package vital

import (
	"fmt"
	"math/rand"

	"github.com/roach88/epinet/internal/population"
)

// RuleKind selects the attribute-assignment strategy for new nodes.
type RuleKind int

const (
	// RuleCurrent samples with replacement from the attribute's empirical
	// distribution among nodes active at the time of the birth event.
	// This is the default when no rule is configured.
	RuleCurrent RuleKind = iota
	// RuleT1 samples from the distribution recorded at simulation step 1,
	// so birth cohorts resemble the original population rather than the
	// possibly-drifted current one.
	RuleT1
	// RuleFixed assigns the same constant value to every new node.
	RuleFixed
)

// Rule is one attribute's birth-assignment rule.
type Rule struct {
	Kind RuleKind
	// FixedCat / FixedNum carry the literal for RuleFixed, selected by
	// the attribute's column kind.
	FixedCat string
	FixedNum float64
}

// Rules maps attribute name to rule. Attributes absent from the map use
// RuleCurrent.
type Rules map[string]Rule

// Updater applies births and deaths to one population store.
//
// The baseline distributions backing the t1 rule are owned by the Updater,
// so independent simulation runs never share them.
type Updater struct {
	store    *population.Store
	baseline map[string]population.Distribution
	rng      *rand.Rand
}

// NewUpdater creates an updater over the given store. baseline holds the
// step-1 attribute distributions used by the t1 rule; it may be nil when
// no attribute uses t1.
func NewUpdater(st *population.Store, baseline map[string]population.Distribution, rng *rand.Rand) *Updater {
	return &Updater{store: st, baseline: baseline, rng: rng}
}

// ApplyDeaths deactivates the given nodes. Ids stay valid for
// back-reference; only active-filtered queries stop seeing them.
func (u *Updater) ApplyDeaths(ids []int) error {
	for _, id := range ids {
		if err := u.store.Deactivate(id); err != nil {
			return fmt.Errorf("apply deaths: %w", err)
		}
	}
	return nil
}

// ApplyBirths grows the population by n1 mode-1 and n2 mode-2 nodes and
// assigns their attributes per the rule table. n2 must be 0 for
// single-mode populations. Returns the new node ids.
//
// The two mode counts are independent inputs, not inferred from one
// another: each mode's sub-arena is extended with exactly the requested
// number of rows. Current-rule distributions are computed once, before any
// new node is added, so a birth cohort samples the pre-birth population.
func (u *Updater) ApplyBirths(n1, n2 int, rules Rules) ([]int, error) {
	if n1 < 0 || n2 < 0 {
		return nil, fmt.Errorf("apply births: negative birth count (%d, %d)", n1, n2)
	}
	if n2 > 0 && !u.store.Bipartite() {
		return nil, &population.Error{
			Code:    population.ErrCodeInvalidModeRequest,
			Message: "mode-2 births on non-bipartite population",
			Mode:    population.Mode2,
		}
	}
	if n1+n2 == 0 {
		return nil, nil
	}

	// Snapshot the sampling distributions before growing the arena.
	attrs := u.store.Columns()
	current := make(map[string]population.Distribution, len(attrs))
	for _, name := range attrs {
		rule := rules[name]
		if rule.Kind != RuleCurrent {
			continue
		}
		d, err := u.store.Distribution(name)
		if err != nil {
			return nil, fmt.Errorf("apply births: %w", err)
		}
		current[name] = d
	}

	// Mode-1 births first, then mode-2, so id assignment is deterministic.
	var ids []int
	for i := 0; i < n1; i++ {
		id, err := u.store.AddNode(addMode(u.store, population.Mode1))
		if err != nil {
			return nil, fmt.Errorf("apply births: %w", err)
		}
		ids = append(ids, id)
	}
	for i := 0; i < n2; i++ {
		id, err := u.store.AddNode(population.Mode2)
		if err != nil {
			return nil, fmt.Errorf("apply births: %w", err)
		}
		ids = append(ids, id)
	}

	for _, name := range attrs {
		if err := u.assign(name, ids, rules[name], current); err != nil {
			return nil, fmt.Errorf("apply births: %w", err)
		}
	}
	return ids, nil
}

// addMode maps the requested birth mode onto the store's structure:
// single-mode stores take every birth in their only arena.
func addMode(st *population.Store, mode population.Mode) population.Mode {
	if !st.Bipartite() {
		return population.ModeAll
	}
	return mode
}

// assign sets one attribute on every new node per its rule.
func (u *Updater) assign(name string, ids []int, rule Rule, current map[string]population.Distribution) error {
	kind, err := u.store.ColumnKind(name)
	if err != nil {
		return err
	}

	if rule.Kind == RuleFixed {
		for _, id := range ids {
			if kind == population.KindCategorical {
				err = u.store.SetCat(name, id, rule.FixedCat)
			} else {
				err = u.store.SetNum(name, id, rule.FixedNum)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	var d population.Distribution
	switch rule.Kind {
	case RuleCurrent:
		d = current[name]
	case RuleT1:
		var ok bool
		d, ok = u.baseline[name]
		if !ok {
			return fmt.Errorf("no baseline distribution for attribute %q", name)
		}
	default:
		return fmt.Errorf("unknown birth rule %d for attribute %q", rule.Kind, name)
	}

	for _, id := range ids {
		lv, ok := d.Sample(u.rng)
		if !ok {
			return fmt.Errorf("empty sampling distribution for attribute %q", name)
		}
		if kind == population.KindCategorical {
			err = u.store.SetCat(name, id, lv.Label)
		} else {
			err = u.store.SetNum(name, id, lv.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
