package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/epinet/internal/disease"
	"github.com/roach88/epinet/internal/formula"
	"github.com/roach88/epinet/internal/population"
	"github.com/roach88/epinet/internal/vital"
)

// Compile loads a CUE simulation definition from disk, parses it into a
// Config, and validates it.
//
// The file must define a top-level "simulation" struct, e.g.:
//
//	simulation: {
//		disease: "SIS"
//		modes:   1
//		steps:   50
//		population: {n: 100, infected: 5}
//		formation: {formula: "~edges", coefs: [-4.5]}
//		dissolution: {formula: "~offset(edges)", duration: 60}
//	}
func Compile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile config: %w", err)
	}
	return CompileValue(v)
}

// CompileValue parses a CUE value holding a simulation definition.
func CompileValue(v cue.Value) (*Config, error) {
	sim := v.LookupPath(cue.ParsePath("simulation"))
	if !sim.Exists() {
		return nil, &CompileError{Field: "simulation", Message: "top-level simulation struct is required", Pos: v.Pos()}
	}

	cfg := &Config{Modes: 1, BirthRules: vital.Rules{}}

	typName, err := reqString(sim, "disease")
	if err != nil {
		return nil, err
	}
	cfg.Disease, err = disease.ParseType(typName)
	if err != nil {
		return nil, &CompileError{Field: "disease", Message: err.Error(), Pos: sim.LookupPath(cue.ParsePath("disease")).Pos()}
	}

	if cfg.Modes, err = optInt(sim, "modes", 1); err != nil {
		return nil, err
	}
	if cfg.Steps, err = reqInt(sim, "steps"); err != nil {
		return nil, err
	}
	seed, err := optInt(sim, "seed", 1)
	if err != nil {
		return nil, err
	}
	cfg.Seed = int64(seed)

	if err := parsePopulation(sim.LookupPath(cue.ParsePath("population")), cfg); err != nil {
		return nil, err
	}
	if err := parseFormation(sim.LookupPath(cue.ParsePath("formation")), cfg); err != nil {
		return nil, err
	}
	if err := parseDissolution(sim.LookupPath(cue.ParsePath("dissolution")), cfg); err != nil {
		return nil, err
	}
	if err := parseVital(sim.LookupPath(cue.ParsePath("vital")), cfg); err != nil {
		return nil, err
	}
	if err := parseBirthRules(sim.LookupPath(cue.ParsePath("birthRules")), cfg); err != nil {
		return nil, err
	}

	if strat := sim.LookupPath(cue.ParsePath("stratifyBy")); strat.Exists() {
		if cfg.StratifyBy, err = strat.String(); err != nil {
			return nil, &CompileError{Field: "stratifyBy", Message: err.Error(), Pos: strat.Pos()}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parsePopulation(v cue.Value, cfg *Config) error {
	if !v.Exists() {
		return compileErr("population", "population struct is required")
	}
	var err error
	if cfg.Population.N, err = reqInt(v, "n"); err != nil {
		return err
	}
	if cfg.Population.M2, err = optInt(v, "m2", 0); err != nil {
		return err
	}
	if cfg.Population.Infected, err = optInt(v, "infected", 0); err != nil {
		return err
	}
	if cfg.Population.InfectedM2, err = optInt(v, "infectedM2", 0); err != nil {
		return err
	}
	if cfg.Population.Recovered, err = optInt(v, "recovered", 0); err != nil {
		return err
	}
	if cfg.Population.RecoveredM2, err = optInt(v, "recoveredM2", 0); err != nil {
		return err
	}

	if sts := v.LookupPath(cue.ParsePath("statuses")); sts.Exists() {
		ints, err := intList(sts, "population.statuses")
		if err != nil {
			return err
		}
		for _, n := range ints {
			cfg.Population.Statuses = append(cfg.Population.Statuses, disease.Status(n))
		}
	}

	attrs := v.LookupPath(cue.ParsePath("attributes"))
	if !attrs.Exists() {
		return nil
	}
	iter, err := attrs.List()
	if err != nil {
		return &CompileError{Field: "population.attributes", Message: err.Error(), Pos: attrs.Pos()}
	}
	for iter.Next() {
		attr, err := parseAttribute(iter.Value())
		if err != nil {
			return err
		}
		cfg.Population.Attributes = append(cfg.Population.Attributes, attr)
	}
	return nil
}

func parseAttribute(v cue.Value) (Attribute, error) {
	var a Attribute
	var err error
	if a.Name, err = reqString(v, "name"); err != nil {
		return a, err
	}
	kind, err := reqString(v, "kind")
	if err != nil {
		return a, err
	}
	switch kind {
	case "categorical":
		a.Kind = population.KindCategorical
	case "numeric":
		a.Kind = population.KindNumeric
	default:
		return a, &CompileError{Field: "attributes." + a.Name + ".kind", Message: fmt.Sprintf("unknown kind %q", kind), Pos: v.Pos()}
	}

	if vals := v.LookupPath(cue.ParsePath("values")); vals.Exists() {
		iter, err := vals.List()
		if err != nil {
			return a, &CompileError{Field: "attributes." + a.Name + ".values", Message: err.Error(), Pos: vals.Pos()}
		}
		for iter.Next() {
			if a.Kind == population.KindCategorical {
				s, err := iter.Value().String()
				if err != nil {
					return a, &CompileError{Field: "attributes." + a.Name + ".values", Message: err.Error(), Pos: iter.Value().Pos()}
				}
				a.CatValues = append(a.CatValues, s)
			} else {
				f, err := iter.Value().Float64()
				if err != nil {
					return a, &CompileError{Field: "attributes." + a.Name + ".values", Message: err.Error(), Pos: iter.Value().Pos()}
				}
				a.NumValues = append(a.NumValues, f)
			}
		}
		return a, nil
	}

	levels := v.LookupPath(cue.ParsePath("levels"))
	if !levels.Exists() {
		return a, compileErr("attributes."+a.Name, "either values or levels is required")
	}
	iter, err := levels.List()
	if err != nil {
		return a, &CompileError{Field: "attributes." + a.Name + ".levels", Message: err.Error(), Pos: levels.Pos()}
	}
	for iter.Next() {
		lv := iter.Value()
		var level Level
		if level.Weight, err = reqFloat(lv, "weight"); err != nil {
			return a, err
		}
		val := lv.LookupPath(cue.ParsePath("value"))
		if !val.Exists() {
			return a, &CompileError{Field: "attributes." + a.Name + ".levels", Message: "level value is required", Pos: lv.Pos()}
		}
		if a.Kind == population.KindCategorical {
			if level.Cat, err = val.String(); err != nil {
				return a, &CompileError{Field: "attributes." + a.Name + ".levels", Message: err.Error(), Pos: val.Pos()}
			}
		} else {
			if level.Num, err = val.Float64(); err != nil {
				return a, &CompileError{Field: "attributes." + a.Name + ".levels", Message: err.Error(), Pos: val.Pos()}
			}
		}
		a.Levels = append(a.Levels, level)
	}
	return a, nil
}

func parseFormation(v cue.Value, cfg *Config) error {
	if !v.Exists() {
		return compileErr("formation", "formation struct is required")
	}
	raw, err := reqString(v, "formula")
	if err != nil {
		return err
	}
	if cfg.Formation.Formula, err = formula.Parse(raw); err != nil {
		return &CompileError{Field: "formation.formula", Message: err.Error(), Pos: v.Pos()}
	}
	coefs := v.LookupPath(cue.ParsePath("coefs"))
	if !coefs.Exists() {
		return compileErr("formation.coefs", "formation coefficients are required")
	}
	if cfg.Formation.Coefs, err = floatList(coefs, "formation.coefs"); err != nil {
		return err
	}
	return nil
}

func parseDissolution(v cue.Value, cfg *Config) error {
	if !v.Exists() {
		return compileErr("dissolution", "dissolution struct is required")
	}
	raw, err := optString(v, "formula", "~offset(edges)")
	if err != nil {
		return err
	}
	if cfg.Dissolution.Formula, err = formula.Parse(raw); err != nil {
		return &CompileError{Field: "dissolution.formula", Message: err.Error(), Pos: v.Pos()}
	}
	if cfg.Dissolution.Duration, err = reqFloat(v, "duration"); err != nil {
		return err
	}
	if cfg.Dissolution.ExitRate, err = optFloat(v, "exitRate", 0); err != nil {
		return err
	}
	return nil
}

func parseVital(v cue.Value, cfg *Config) error {
	if !v.Exists() {
		return nil
	}
	var err error
	enabled := v.LookupPath(cue.ParsePath("enabled"))
	if enabled.Exists() {
		if cfg.Vital.Enabled, err = enabled.Bool(); err != nil {
			return &CompileError{Field: "vital.enabled", Message: err.Error(), Pos: enabled.Pos()}
		}
	}
	if cfg.Vital.BirthRate, err = optFloat(v, "birthRate", 0); err != nil {
		return err
	}
	if cfg.Vital.BirthRateM2, err = optFloat(v, "birthRateM2", 0); err != nil {
		return err
	}
	if cfg.Vital.DeathRate, err = optFloat(v, "deathRate", 0); err != nil {
		return err
	}
	return nil
}

func parseBirthRules(v cue.Value, cfg *Config) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return &CompileError{Field: "birthRules", Message: err.Error(), Pos: v.Pos()}
	}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		rv := iter.Value()
		kind, err := reqString(rv, "rule")
		if err != nil {
			return err
		}
		var rule vital.Rule
		switch kind {
		case "current":
			rule.Kind = vital.RuleCurrent
		case "t1":
			rule.Kind = vital.RuleT1
		case "fixed":
			rule.Kind = vital.RuleFixed
			val := rv.LookupPath(cue.ParsePath("value"))
			if !val.Exists() {
				return &CompileError{Field: "birthRules." + name, Message: "fixed rule requires a value", Pos: rv.Pos()}
			}
			if s, err := val.String(); err == nil {
				rule.FixedCat = s
			} else if f, err := val.Float64(); err == nil {
				rule.FixedNum = f
			} else {
				return &CompileError{Field: "birthRules." + name, Message: "fixed value must be a string or number", Pos: val.Pos()}
			}
		default:
			return &CompileError{Field: "birthRules." + name, Message: fmt.Sprintf("unknown rule %q (want current, t1 or fixed)", kind), Pos: rv.Pos()}
		}
		cfg.BirthRules[name] = rule
	}
	return nil
}

// CUE field helpers.

func reqString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: err.Error(), Pos: fv.Pos()}
	}
	return s, nil
}

func optString(v cue.Value, field, def string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return def, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: err.Error(), Pos: fv.Pos()}
	}
	return s, nil
}

func reqInt(v cue.Value, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, &CompileError{Field: field, Message: err.Error(), Pos: fv.Pos()}
	}
	return int(n), nil
}

func optInt(v cue.Value, field string, def int) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return def, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, &CompileError{Field: field, Message: err.Error(), Pos: fv.Pos()}
	}
	return int(n), nil
}

func reqFloat(v cue.Value, field string) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, &CompileError{Field: field, Message: err.Error(), Pos: fv.Pos()}
	}
	return f, nil
}

func optFloat(v cue.Value, field string, def float64) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return def, nil
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, &CompileError{Field: field, Message: err.Error(), Pos: fv.Pos()}
	}
	return f, nil
}

func intList(v cue.Value, field string) ([]int, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	var out []int
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: iter.Value().Pos()}
		}
		out = append(out, int(n))
	}
	return out, nil
}

func floatList(v cue.Value, field string) ([]float64, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	var out []float64
	for iter.Next() {
		f, err := iter.Value().Float64()
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: iter.Value().Pos()}
		}
		out = append(out, f)
	}
	return out, nil
}
