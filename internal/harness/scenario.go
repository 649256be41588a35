package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/epinet/internal/config"
	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/formula"
	"github.com/roach88/epinet/internal/population"
	"github.com/roach88/epinet/internal/vital"
)

// Scenario defines a conformance test scenario: one complete run
// definition plus assertions on its prevalence output.
type Scenario struct {
	// Name uniquely identifies this scenario. The golden file is stored
	// as testdata/golden/{Name}.golden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Disease string `yaml:"disease"`
	Modes   int    `yaml:"modes,omitempty"` // defaults to 1
	Steps   int    `yaml:"steps"`
	Seed    int64  `yaml:"seed,omitempty"`

	Population  ScenarioPopulation  `yaml:"population"`
	Formation   ScenarioFormation   `yaml:"formation"`
	Dissolution ScenarioDissolution `yaml:"dissolution"`
	Vital       *ScenarioVital      `yaml:"vital,omitempty"`

	// BirthRules maps attribute names to assignment rules for new nodes.
	BirthRules map[string]ScenarioRule `yaml:"birthRules,omitempty"`

	StratifyBy string `yaml:"stratifyBy,omitempty"`

	// Assertions validate individual series of the output table.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ScenarioPopulation describes the initial population.
type ScenarioPopulation struct {
	N        int   `yaml:"n"`
	M2       int   `yaml:"m2,omitempty"`
	Statuses []int `yaml:"statuses,omitempty"`

	Infected    int `yaml:"infected,omitempty"`
	InfectedM2  int `yaml:"infectedM2,omitempty"`
	Recovered   int `yaml:"recovered,omitempty"`
	RecoveredM2 int `yaml:"recoveredM2,omitempty"`

	Attributes []ScenarioAttribute `yaml:"attributes,omitempty"`
}

// ScenarioAttribute is one initial covariate column. Values are explicit
// and in mode order, keeping scenarios fully deterministic.
type ScenarioAttribute struct {
	Name      string    `yaml:"name"`
	Kind      string    `yaml:"kind"` // "categorical" or "numeric"
	Values    []string  `yaml:"values,omitempty"`
	NumValues []float64 `yaml:"numValues,omitempty"`
}

// ScenarioFormation is the formation model side.
type ScenarioFormation struct {
	Formula string    `yaml:"formula"`
	Coefs   []float64 `yaml:"coefs"`
}

// ScenarioDissolution is the dissolution model side.
type ScenarioDissolution struct {
	Formula  string  `yaml:"formula,omitempty"` // defaults to "~offset(edges)"
	Duration float64 `yaml:"duration"`
	ExitRate float64 `yaml:"exitRate,omitempty"`
}

// ScenarioVital configures demographic turnover.
type ScenarioVital struct {
	BirthRate   float64 `yaml:"birthRate"`
	BirthRateM2 float64 `yaml:"birthRateM2,omitempty"`
	DeathRate   float64 `yaml:"deathRate"`
}

// ScenarioRule is a birth-assignment rule for one attribute.
type ScenarioRule struct {
	Rule  string `yaml:"rule"` // "current", "t1" or "fixed"
	Value string `yaml:"value,omitempty"`
	Num   float64 `yaml:"num,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	return &sc, nil
}

// LoadScenarios loads every *.yaml scenario in a directory, sorted by
// file name for deterministic test ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// Compile converts a scenario into a validated run configuration.
func (sc *Scenario) Compile() (*config.Config, error) {
	typ, err := disease.ParseType(sc.Disease)
	if err != nil {
		return nil, err
	}

	modes := sc.Modes
	if modes == 0 {
		modes = 1
	}

	formation, err := formula.Parse(sc.Formation.Formula)
	if err != nil {
		return nil, fmt.Errorf("formation formula: %w", err)
	}
	dissFormula := sc.Dissolution.Formula
	if dissFormula == "" {
		dissFormula = "~offset(edges)"
	}
	dissolution, err := formula.Parse(dissFormula)
	if err != nil {
		return nil, fmt.Errorf("dissolution formula: %w", err)
	}

	cfg := &config.Config{
		Disease: typ,
		Modes:   modes,
		Steps:   sc.Steps,
		Seed:    sc.Seed,
		Population: config.Population{
			N:           sc.Population.N,
			M2:          sc.Population.M2,
			Infected:    sc.Population.Infected,
			InfectedM2:  sc.Population.InfectedM2,
			Recovered:   sc.Population.Recovered,
			RecoveredM2: sc.Population.RecoveredM2,
		},
		Formation:   config.Formation{Formula: formation, Coefs: sc.Formation.Coefs},
		Dissolution: config.Dissolution{Formula: dissolution, Duration: sc.Dissolution.Duration, ExitRate: sc.Dissolution.ExitRate},
		StratifyBy:  sc.StratifyBy,
	}

	for _, st := range sc.Population.Statuses {
		cfg.Population.Statuses = append(cfg.Population.Statuses, disease.Status(st))
	}

	for _, attr := range sc.Population.Attributes {
		a := config.Attribute{Name: attr.Name}
		switch attr.Kind {
		case "categorical":
			a.Kind = population.KindCategorical
			a.CatValues = attr.Values
		case "numeric":
			a.Kind = population.KindNumeric
			a.NumValues = attr.NumValues
		default:
			return nil, fmt.Errorf("attribute %q: unknown kind %q", attr.Name, attr.Kind)
		}
		cfg.Population.Attributes = append(cfg.Population.Attributes, a)
	}

	if sc.Vital != nil {
		cfg.Vital = config.Vital{
			Enabled:     true,
			BirthRate:   sc.Vital.BirthRate,
			BirthRateM2: sc.Vital.BirthRateM2,
			DeathRate:   sc.Vital.DeathRate,
		}
	}

	if len(sc.BirthRules) > 0 {
		cfg.BirthRules = vital.Rules{}
		for name, rule := range sc.BirthRules {
			r, err := parseRule(rule)
			if err != nil {
				return nil, fmt.Errorf("birth rule for %q: %w", name, err)
			}
			cfg.BirthRules[name] = r
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseRule(r ScenarioRule) (vital.Rule, error) {
	switch r.Rule {
	case "current", "":
		return vital.Rule{Kind: vital.RuleCurrent}, nil
	case "t1":
		return vital.Rule{Kind: vital.RuleT1}, nil
	case "fixed":
		return vital.Rule{Kind: vital.RuleFixed, FixedCat: r.Value, FixedNum: r.Num}, nil
	default:
		return vital.Rule{}, fmt.Errorf("unknown rule %q", r.Rule)
	}
}
