// Package calibrate converts partnership-duration targets into
// dissolution-model coefficients and keeps the companion formation
// coefficient consistent as the active population size drifts.
package calibrate

import (
	"fmt"
	"math"

	"github.com/roach88/epinet/internal/formula"
)

// Dissolution is the immutable dissolution-model coefficient record,
// created once at model setup and read-only thereafter.
type Dissolution struct {
	// Formula is the dissolution formula shape; only the single
	// edges-only term is supported.
	Formula formula.Formula
	// Duration is the target mean edge duration in time steps.
	Duration float64
	// ExitRate is the background per-step mortality/exit rate used for
	// the competing-risk adjustment; 0 when none.
	ExitRate float64
	// Crude is the raw logit coefficient derived from duration alone.
	Crude float64
	// Adjusted is the mortality-adjusted coefficient; equals Crude when
	// ExitRate is 0.
	Adjusted float64
}

// DissolutionCoefs derives dissolution-model coefficients from a target
// mean edge duration.
//
// The crude logit coefficient is ln(d-1). When a background exit rate m is
// supplied, the coefficient is corrected for death as a competing risk:
// node departure shortens observed edge lifetime independent of relational
// dissolution, so the relational coefficient must target a longer duration
// to compensate. If the implied adjusted dissolution probability reaches 1
// the target is unsatisfiable and the call fails with
// INFEASIBLE_MORTALITY_ADJUSTMENT; the caller must lower m or raise d.
func DissolutionCoefs(f formula.Formula, duration, exitRate float64) (*Dissolution, error) {
	if !f.IsEdgesOnly() {
		return nil, &Error{
			Code:    ErrCodeUnsupportedDissolutionFormula,
			Message: "dissolution formula must be a single edges-only term",
			Formula: f.String(),
		}
	}
	if duration <= 1 {
		return nil, fmt.Errorf("target edge duration must be > 1, got %g", duration)
	}
	if exitRate < 0 || exitRate >= 1 {
		return nil, fmt.Errorf("exit rate must be in [0, 1), got %g", exitRate)
	}

	d := &Dissolution{
		Formula:  f,
		Duration: duration,
		ExitRate: exitRate,
		Crude:    math.Log(duration - 1),
	}
	d.Adjusted = d.Crude

	if exitRate > 0 {
		probDiss := 1 / (1 + math.Exp(d.Crude))
		probNeitherExit := (1 - exitRate) * (1 - exitRate)
		probEitherExit := 2*exitRate - exitRate*exitRate
		probAdj := 1 - (probDiss-probEitherExit)/probNeitherExit
		if probAdj >= 1 {
			return nil, &Error{
				Code:     ErrCodeInfeasibleMortalityAdjustment,
				Message:  "exit rate exceeds what the target duration can sustain",
				Duration: duration,
				ExitRate: exitRate,
			}
		}
		d.Adjusted = math.Log(probAdj / (1 - probAdj))
	}
	return d, nil
}
