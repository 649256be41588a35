package population

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes population errors.
type ErrorCode string

const (
	// ErrCodeOutOfRange indicates a node id outside [1, N].
	ErrCodeOutOfRange ErrorCode = "OUT_OF_RANGE"

	// ErrCodeInvalidModeRequest indicates a mode-filtered query against a
	// population that is not bipartite.
	ErrCodeInvalidModeRequest ErrorCode = "INVALID_MODE_REQUEST"

	// ErrCodeInconsistentAttributeLength indicates attribute columns have
	// diverged in length. This is an internal invariant violation and is
	// always fatal.
	ErrCodeInconsistentAttributeLength ErrorCode = "INCONSISTENT_ATTRIBUTE_LENGTH"

	// ErrCodeUnknownAttribute indicates a reference to an attribute column
	// that was never defined.
	ErrCodeUnknownAttribute ErrorCode = "UNKNOWN_ATTRIBUTE"
)

// Error is a structured population error.
//
// Code identifies the category; the remaining fields carry the offending
// parameter values for diagnostics.
type Error struct {
	Code    ErrorCode
	Message string
	ID      int    // offending node id (OUT_OF_RANGE)
	Mode    Mode   // offending mode filter (INVALID_MODE_REQUEST)
	Attr    string // offending attribute name
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.ID != 0:
		return fmt.Sprintf("%s: %s (id=%d)", e.Code, e.Message, e.ID)
	case e.Mode != ModeAll:
		return fmt.Sprintf("%s: %s (mode=%d)", e.Code, e.Message, e.Mode)
	case e.Attr != "":
		return fmt.Sprintf("%s: %s (attr=%q)", e.Code, e.Message, e.Attr)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsOutOfRange reports whether err is an OUT_OF_RANGE population error.
// Uses errors.As to handle wrapped errors.
func IsOutOfRange(err error) bool {
	return hasCode(err, ErrCodeOutOfRange)
}

// IsInvalidModeRequest reports whether err is an INVALID_MODE_REQUEST error.
func IsInvalidModeRequest(err error) bool {
	return hasCode(err, ErrCodeInvalidModeRequest)
}

// IsInconsistentAttributeLength reports whether err is an
// INCONSISTENT_ATTRIBUTE_LENGTH error.
func IsInconsistentAttributeLength(err error) bool {
	return hasCode(err, ErrCodeInconsistentAttributeLength)
}

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

func errOutOfRange(id, n int) *Error {
	return &Error{
		Code:    ErrCodeOutOfRange,
		Message: fmt.Sprintf("node id outside [1, %d]", n),
		ID:      id,
	}
}

func errInvalidMode(mode Mode) *Error {
	return &Error{
		Code:    ErrCodeInvalidModeRequest,
		Message: "mode filter on non-bipartite population",
		Mode:    mode,
	}
}

func errUnknownAttribute(name string) *Error {
	return &Error{
		Code:    ErrCodeUnknownAttribute,
		Message: "attribute not defined",
		Attr:    name,
	}
}
