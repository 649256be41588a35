package graph

import "math"

// MeanPartnershipAge returns the mean age of edges active at step `at`:
// the average of at - onset over active spells. Returns NaN when no edge
// is active.
func (s *Snapshot) MeanPartnershipAge(at float64) float64 {
	sum := 0.0
	n := 0
	for _, e := range s.Edges {
		if e.ActiveAt(at) {
			sum += at - e.Onset
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// CensoringTable classifies partnership spells against an observation
// window [start, end].
type CensoringTable struct {
	// LeftCensored spells began before the window opened.
	LeftCensored int
	// RightCensored spells were still ongoing (or ended after) the window
	// closed.
	RightCensored int
	// BothCensored spells span the whole window.
	BothCensored int
	// Uncensored spells began and ended inside the window.
	Uncensored int
}

// Total returns the number of classified spells.
func (c CensoringTable) Total() int {
	return c.LeftCensored + c.RightCensored + c.BothCensored + c.Uncensored
}

// Censoring classifies every spell that overlaps the observation window
// [start, end]. Spells entirely outside the window are ignored.
func (s *Snapshot) Censoring(start, end float64) CensoringTable {
	var tab CensoringTable
	for _, e := range s.Edges {
		if e.Terminus <= start || e.Onset > end {
			continue
		}
		left := e.Onset < start
		right := e.Terminus == Ongoing || e.Terminus > end
		switch {
		case left && right:
			tab.BothCensored++
		case left:
			tab.LeftCensored++
		case right:
			tab.RightCensored++
		default:
			tab.Uncensored++
		}
	}
	return tab
}
