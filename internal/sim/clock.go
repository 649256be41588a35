package sim

import "sync/atomic"

// StepClock is the monotonic step counter for one simulation run.
//
// Every bookkeeping phase of a step is stamped with the same strictly
// increasing step number, so recorded output is deterministically ordered
// and a run can be resumed from a known position.
//
// Thread-safety: atomic operations make the clock safe for concurrent
// reads, though the engine's strictly sequential step loop means only one
// goroutine calls Next.
type StepClock struct {
	at atomic.Int64
}

// NewStepClock creates a clock positioned before step 1.
func NewStepClock() *StepClock {
	return &StepClock{}
}

// NewStepClockAt creates a clock positioned at a specific step, for
// resuming a run from persisted state.
func NewStepClockAt(at int64) *StepClock {
	c := &StepClock{}
	c.at.Store(at)
	return c
}

// Next advances to the next step and returns it. The first call returns 1.
func (c *StepClock) Next() int64 {
	return c.at.Add(1)
}

// Current returns the current step without advancing.
func (c *StepClock) Current() int64 {
	return c.at.Load()
}
