// Package sim is the per-timestep bookkeeping engine: it advances a
// population's disease-state attributes jointly with the contact graph,
// applies demographic turnover, recalibrates the formation coefficient,
// and appends stratified prevalence output.
//
// All mutation happens in the strictly sequential Step loop: step at+1
// never begins before step at's attribute sync, demographic update,
// recalibration, graph evolution and prevalence append have completed.
// Independent runs share no mutable state; baseline distributions, RNG
// and clock are all owned by the Simulation.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/roach88/epinet/internal/attrsync"
	"github.com/roach88/epinet/internal/calibrate"
	"github.com/roach88/epinet/internal/config"
	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/graph"
	"github.com/roach88/epinet/internal/population"
	"github.com/roach88/epinet/internal/prevalence"
	"github.com/roach88/epinet/internal/vital"
)

// Simulation owns the full per-run state: attribute store, graph
// snapshot, calibration records, prevalence tracker, RNG and step clock.
type Simulation struct {
	cfg     *config.Config
	id      string
	profile disease.Profile

	store       *population.Store
	snap        *graph.Snapshot
	synchro     *attrsync.Synchronizer
	tracker     *prevalence.Tracker
	dissolution *calibrate.Dissolution
	calib       *calibrate.Calibration

	evolver   Evolver
	rng       *rand.Rand
	clock     *StepClock
	logger    *slog.Logger
	attrNames []string
}

// Option customizes a Simulation.
type Option func(*Simulation)

// WithLogger sets the run's logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithRunID sets the run id generator. Defaults to UUIDv7Generator.
func WithRunID(gen RunIDGenerator) Option {
	return func(s *Simulation) { s.id = gen.Generate() }
}

// New builds a simulation from a validated configuration: initial
// population, empty-edge graph snapshot, dissolution coefficients and the
// formation calibration record.
func New(cfg *config.Config, ev Evolver, opts ...Option) (*Simulation, error) {
	if ev == nil {
		return nil, fmt.Errorf("sim: nil evolver")
	}
	profile, err := disease.NewProfile(cfg.Disease, cfg.Bipartite())
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:       cfg,
		id:        UUIDv7Generator{}.Generate(),
		profile:   profile,
		evolver:   ev,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		clock:     NewStepClock(),
		logger:    slog.Default(),
		synchro:   attrsync.New(),
		tracker:   prevalence.NewTracker(profile, cfg.StratifyBy),
		attrNames: attrsync.ExtractFormulaAttributes(cfg.Formation.Formula),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store, err = cfg.BuildPopulation(s.rng); err != nil {
		return nil, fmt.Errorf("sim: build population: %w", err)
	}
	if s.snap, err = graph.FromStore(s.store, s.attrNames); err != nil {
		return nil, fmt.Errorf("sim: build graph snapshot: %w", err)
	}
	if s.dissolution, err = calibrate.DissolutionCoefs(cfg.Dissolution.Formula, cfg.Dissolution.Duration, cfg.Dissolution.ExitRate); err != nil {
		return nil, err
	}
	if s.calib, err = calibrate.NewCalibration(profile, cfg.Formation.Formula, cfg.Formation.Coefs, cfg.Vital.Enabled); err != nil {
		return nil, err
	}
	return s, nil
}

// RunID returns the run's identifier.
func (s *Simulation) RunID() string { return s.id }

// Store returns the attribute store.
func (s *Simulation) Store() *population.Store { return s.store }

// Snapshot returns the current graph snapshot.
func (s *Simulation) Snapshot() *graph.Snapshot { return s.snap }

// Tracker returns the prevalence tracker.
func (s *Simulation) Tracker() *prevalence.Tracker { return s.tracker }

// Dissolution returns the immutable dissolution coefficient record.
func (s *Simulation) Dissolution() *calibrate.Dissolution { return s.dissolution }

// Formation returns the current (recalibrated) formation coefficients.
func (s *Simulation) Formation() []float64 { return s.calib.Formation() }

// Run executes every configured step and returns the prevalence table.
// Aborting via ctx discards in-progress state; there is no partial-step
// rollback because each step commits its mutations together.
func (s *Simulation) Run(ctx context.Context) (*prevalence.Table, error) {
	s.logger.Info("simulation starting",
		"run", s.id,
		"disease", s.cfg.Disease.String(),
		"modes", s.cfg.Modes,
		"steps", s.cfg.Steps,
		"seed", s.cfg.Seed,
	)
	for at := 1; at <= s.cfg.Steps; at++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := s.Step(ctx); err != nil {
			return nil, fmt.Errorf("step %d: %w", at, err)
		}
	}
	s.logger.Info("simulation finished", "run", s.id, "steps", s.clock.Current())
	return s.tracker.Table(), nil
}

// Step advances the simulation by one timestep.
//
// Step 1 is initialization: attributes are pulled from the graph (fixing
// the t1 baseline) and the initial compartment sizes are recorded. Every
// later step runs the full flow: attribute sync, demographic turnover,
// coefficient recalibration, graph evolution, prevalence append.
func (s *Simulation) Step(ctx context.Context) error {
	at := int(s.clock.Next())

	if err := s.synchro.CopyToStore(s.snap, at, s.attrNames, s.store); err != nil {
		return err
	}

	if at > 1 {
		if s.cfg.Vital.Enabled {
			if err := s.applyVital(at); err != nil {
				return err
			}
		}
		next, err := s.evolver.Evolve(ctx, s.snap, s.calib.Formation(), s.dissolution, s.snap.ActiveIDs())
		if err != nil {
			return fmt.Errorf("graph evolution: %w", err)
		}
		if next == nil {
			return fmt.Errorf("graph evolution returned no snapshot")
		}
		s.snap = next
	}

	// Length divergence here means a bookkeeping bug; the run must stop.
	if err := s.store.Verify(); err != nil {
		return err
	}
	if err := s.tracker.Record(at, s.store); err != nil {
		return err
	}
	s.logger.Debug("step recorded", "run", s.id, "at", at)
	return nil
}

// applyVital samples and applies this step's deaths and births, then
// recalibrates the formation edges coefficient for the new population
// size.
func (s *Simulation) applyVital(at int) error {
	old, err := calibrate.ActiveCounts(s.store, s.profile)
	if err != nil {
		return err
	}

	deaths, err := s.sampleDeaths()
	if err != nil {
		return err
	}
	updater := vital.NewUpdater(s.store, s.synchro.Baseline(), s.rng)
	if err := updater.ApplyDeaths(deaths); err != nil {
		return err
	}
	if len(deaths) > 0 {
		s.snap.TerminateIncident(deaths, float64(at))
	}

	n1, n2, err := s.sampleBirths(old)
	if err != nil {
		return err
	}
	births, err := updater.ApplyBirths(n1, n2, s.cfg.BirthRules)
	if err != nil {
		return err
	}

	now, err := calibrate.ActiveCounts(s.store, s.profile)
	if err != nil {
		return err
	}
	delta := s.calib.EdgesCorrect(old, now)
	s.logger.Debug("vital dynamics applied",
		"run", s.id,
		"at", at,
		"deaths", len(deaths),
		"births", len(births),
		"edges_delta", delta,
	)

	return s.snap.SyncNodes(s.store)
}

// sampleDeaths draws each active node's exit as an independent Bernoulli
// trial at the configured death rate.
func (s *Simulation) sampleDeaths() ([]int, error) {
	if s.cfg.Vital.DeathRate == 0 {
		return nil, nil
	}
	ids, err := s.store.ActiveIDs(population.ModeAll)
	if err != nil {
		return nil, err
	}
	var dead []int
	for _, id := range ids {
		if s.rng.Float64() < s.cfg.Vital.DeathRate {
			dead = append(dead, id)
		}
	}
	return dead, nil
}

// sampleBirths draws per-mode birth counts as binomials over the old
// active sizes.
func (s *Simulation) sampleBirths(old calibrate.Counts) (int, int, error) {
	n1 := s.binomial(old.Mode1, s.cfg.Vital.BirthRate)
	n2 := 0
	if s.cfg.Bipartite() {
		n2 = s.binomial(old.Mode2, s.cfg.Vital.BirthRateM2)
	}
	return n1, n2, nil
}

func (s *Simulation) binomial(n int, p float64) int {
	if p <= 0 || n <= 0 {
		return 0
	}
	k := 0
	for i := 0; i < n; i++ {
		if s.rng.Float64() < p {
			k++
		}
	}
	return k
}
