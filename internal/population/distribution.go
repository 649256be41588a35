package population

import (
	"math/rand"
	"sort"
)

// Level is one value of an empirical attribute distribution with its
// observed probability.
type Level struct {
	// Label is the level rendered as a string (categorical level name or
	// numeric label, see Column.Label).
	Label string
	// Value is the numeric level; meaningful only for numeric columns.
	Value float64
	// Prob is the relative frequency among the sampled nodes.
	Prob float64
}

// Distribution is a normalized frequency table of one attribute's values.
//
// Levels are ordered deterministically (categorical by label, numeric by
// value), so recomputing a distribution from an unchanged population yields
// an identical table.
type Distribution struct {
	Kind   Kind
	Levels []Level
}

// Sample draws one level with replacement according to the observed
// probabilities. Returns false when the distribution is empty (no nodes
// matched the filter when it was built).
func (d Distribution) Sample(r *rand.Rand) (Level, bool) {
	if len(d.Levels) == 0 {
		return Level{}, false
	}
	u := r.Float64()
	acc := 0.0
	for _, lv := range d.Levels {
		acc += lv.Prob
		if u < acc {
			return lv, true
		}
	}
	// Guard against accumulated rounding leaving u just above acc.
	return d.Levels[len(d.Levels)-1], true
}

// ColumnDistribution computes the normalized frequency table of a column
// over the rows flagged active. The two slices are parallel.
func ColumnDistribution(col *Column, active []bool) Distribution {
	counts := make(map[string]int)
	values := make(map[string]float64)
	total := 0
	for i := 0; i < col.Len(); i++ {
		if !active[i] {
			continue
		}
		label := col.Label(i)
		counts[label]++
		if col.Kind() == KindNumeric {
			values[label] = col.Num(i)
		}
		total++
	}
	d := Distribution{Kind: col.Kind()}
	if total == 0 {
		return d
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	if col.Kind() == KindNumeric {
		sort.Slice(labels, func(i, j int) bool { return values[labels[i]] < values[labels[j]] })
	} else {
		sort.Strings(labels)
	}
	for _, label := range labels {
		d.Levels = append(d.Levels, Level{
			Label: label,
			Value: values[label],
			Prob:  float64(counts[label]) / float64(total),
		})
	}
	return d
}

// Distribution computes the normalized frequency table of the named
// attribute among currently active nodes.
func (s *Store) Distribution(name string) (Distribution, error) {
	col, err := s.ColumnValues(name)
	if err != nil {
		return Distribution{}, err
	}
	return ColumnDistribution(col, s.ActiveFlags()), nil
}
