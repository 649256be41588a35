package config

import (
	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/population"
	"github.com/roach88/epinet/internal/vital"
)

// Validate checks cross-field consistency of a parsed configuration.
// Returns the first violation found as a CompileError.
func (c *Config) Validate() error {
	if c.Modes != 1 && c.Modes != 2 {
		return compileErr("modes", "modes must be 1 or 2, got %d", c.Modes)
	}
	if c.Steps <= 0 {
		return compileErr("steps", "steps must be positive, got %d", c.Steps)
	}
	if c.Population.N <= 0 {
		return compileErr("population.n", "population size must be positive, got %d", c.Population.N)
	}
	if c.Bipartite() && c.Population.M2 <= 0 {
		return compileErr("population.m2", "bipartite population requires m2 > 0")
	}
	if !c.Bipartite() && c.Population.M2 > 0 {
		return compileErr("population.m2", "m2 is only valid with modes: 2")
	}
	if !c.Bipartite() && (c.Population.InfectedM2 > 0 || c.Population.RecoveredM2 > 0) {
		return compileErr("population", "mode-2 seeds are only valid with modes: 2")
	}

	profile, err := disease.NewProfile(c.Disease, c.Bipartite())
	if err != nil {
		return compileErr("disease", "%v", err)
	}
	if c.Disease != disease.SIR && (c.Population.Recovered > 0 || c.Population.RecoveredM2 > 0) {
		return compileErr("population.recovered", "recovered seeds require disease: \"SIR\"")
	}
	total := c.Population.N + c.Population.M2
	if n := len(c.Population.Statuses); n > 0 && n != total {
		return compileErr("population.statuses", "statuses has %d entries for %d nodes", n, total)
	}
	for _, st := range c.Population.Statuses {
		if !profile.ValidStatus(st) {
			return compileErr("population.statuses", "status %d is not valid under %s", int(st), c.Disease)
		}
	}

	if len(c.Formation.Coefs) != len(c.Formation.Formula.Terms) {
		return compileErr("formation.coefs", "formation has %d terms but %d coefficients",
			len(c.Formation.Formula.Terms), len(c.Formation.Coefs))
	}
	if c.Dissolution.Duration <= 1 {
		return compileErr("dissolution.duration", "target edge duration must be > 1, got %g", c.Dissolution.Duration)
	}
	if c.Dissolution.ExitRate < 0 || c.Dissolution.ExitRate >= 1 {
		return compileErr("dissolution.exitRate", "exit rate must be in [0, 1), got %g", c.Dissolution.ExitRate)
	}

	for _, rate := range []struct {
		field string
		v     float64
	}{
		{"vital.birthRate", c.Vital.BirthRate},
		{"vital.birthRateM2", c.Vital.BirthRateM2},
		{"vital.deathRate", c.Vital.DeathRate},
	} {
		if rate.v < 0 || rate.v >= 1 {
			return compileErr(rate.field, "rate must be in [0, 1), got %g", rate.v)
		}
	}
	if !c.Bipartite() && c.Vital.BirthRateM2 > 0 {
		return compileErr("vital.birthRateM2", "mode-2 birth rate is only valid with modes: 2")
	}

	attrs := make(map[string]Attribute, len(c.Population.Attributes))
	for _, a := range c.Population.Attributes {
		if _, dup := attrs[a.Name]; dup {
			return compileErr("population.attributes", "duplicate attribute %q", a.Name)
		}
		if n := len(a.CatValues) + len(a.NumValues); n > 0 && n != total {
			return compileErr("population.attributes", "attribute %q has %d values for %d nodes", a.Name, n, total)
		}
		attrs[a.Name] = a
	}

	for _, name := range c.Formation.Formula.Attrs() {
		if _, ok := attrs[name]; !ok {
			return compileErr("formation.formula", "formula references undefined attribute %q", name)
		}
	}

	for name, rule := range c.BirthRules {
		a, ok := attrs[name]
		if !ok {
			return compileErr("birthRules", "rule for undefined attribute %q", name)
		}
		if rule.Kind == vital.RuleFixed && a.Kind == population.KindCategorical && rule.FixedCat == "" && rule.FixedNum != 0 {
			return compileErr("birthRules", "fixed rule for categorical attribute %q needs a string value", name)
		}
	}

	if c.StratifyBy != "" {
		if _, ok := attrs[c.StratifyBy]; !ok {
			return compileErr("stratifyBy", "stratification attribute %q is not defined", c.StratifyBy)
		}
	}
	return nil
}
