package calibrate

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes calibration errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedDissolutionFormula indicates the dissolution
	// formula is not the single edges-only term the calibrator supports.
	ErrCodeUnsupportedDissolutionFormula ErrorCode = "UNSUPPORTED_DISSOLUTION_FORMULA"

	// ErrCodeInfeasibleMortalityAdjustment indicates the competing
	// mortality risk exceeds what the target edge duration can sustain
	// (adjusted dissolution probability >= 1).
	ErrCodeInfeasibleMortalityAdjustment ErrorCode = "INFEASIBLE_MORTALITY_ADJUSTMENT"
)

// Error is a structured calibration error carrying the offending
// parameter values.
type Error struct {
	Code     ErrorCode
	Message  string
	Formula  string
	Duration float64
	ExitRate float64
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Formula != "" {
		return fmt.Sprintf("%s: %s (formula=%q)", e.Code, e.Message, e.Formula)
	}
	return fmt.Sprintf("%s: %s (duration=%g, exitRate=%g)", e.Code, e.Message, e.Duration, e.ExitRate)
}

// IsUnsupportedFormula reports whether err is an
// UNSUPPORTED_DISSOLUTION_FORMULA error. Uses errors.As to handle wrapped
// errors.
func IsUnsupportedFormula(err error) bool {
	return hasCode(err, ErrCodeUnsupportedDissolutionFormula)
}

// IsInfeasibleAdjustment reports whether err is an
// INFEASIBLE_MORTALITY_ADJUSTMENT error.
func IsInfeasibleAdjustment(err error) bool {
	return hasCode(err, ErrCodeInfeasibleMortalityAdjustment)
}

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
