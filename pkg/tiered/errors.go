package tiered

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrEvaluationUnavailable indicates the authoritative tier could not
	// produce a decision. It is the only failure the evaluator surfaces
	// for tier outages; trusted-provider failures fall through silently.
	ErrEvaluationUnavailable = errors.New("evaluation unavailable")
)

// TrustedEvaluationError describes a failed trusted-provider attempt. It
// is logged, never returned to callers.
type TrustedEvaluationError struct {
	Result string
	Cause  error
}

// Error returns the error message.
func (e *TrustedEvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("trusted evaluation failed: %v", e.Cause)
	}
	return fmt.Sprintf("trusted evaluation returned %q", e.Result)
}

// Unwrap returns the wrapped cause, if any.
func (e *TrustedEvaluationError) Unwrap() error {
	return e.Cause
}

// UnavailableError wraps the underlying tier failure behind
// ErrEvaluationUnavailable.
type UnavailableError struct {
	Cause error
}

// Error returns the error message.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("evaluation unavailable: %v", e.Cause)
}

// Unwrap returns ErrEvaluationUnavailable so callers can match with
// errors.Is, alongside the wrapped cause.
func (e *UnavailableError) Unwrap() []error {
	return []error{ErrEvaluationUnavailable, e.Cause}
}
