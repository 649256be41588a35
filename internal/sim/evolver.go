package sim

import (
	"context"

	"github.com/roach88/epinet/internal/calibrate"
	"github.com/roach88/epinet/internal/graph"
)

// Evolver is the external graph-evolution model: given the current graph,
// the calibrated coefficients and the active node set, it returns the next
// graph. The engine never inspects how edges are added or removed; it only
// supplies calibrated coefficients and reads the resulting edge spells.
type Evolver interface {
	Evolve(ctx context.Context, snap *graph.Snapshot, formation []float64, dissolution *calibrate.Dissolution, active []int) (*graph.Snapshot, error)
}

// StaticEvolver keeps the graph unchanged. Used by tests and the
// conformance harness, where only the bookkeeping around the black box is
// under inspection.
type StaticEvolver struct{}

// Evolve returns the snapshot unchanged.
func (StaticEvolver) Evolve(_ context.Context, snap *graph.Snapshot, _ []float64, _ *calibrate.Dissolution, _ []int) (*graph.Snapshot, error) {
	return snap, nil
}

// EvolverFunc adapts a function to the Evolver interface.
type EvolverFunc func(ctx context.Context, snap *graph.Snapshot, formation []float64, dissolution *calibrate.Dissolution, active []int) (*graph.Snapshot, error)

// Evolve calls f.
func (f EvolverFunc) Evolve(ctx context.Context, snap *graph.Snapshot, formation []float64, dissolution *calibrate.Dissolution, active []int) (*graph.Snapshot, error) {
	return f(ctx, snap, formation, dissolution, active)
}
