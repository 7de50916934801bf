package decision

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrMalformedInput indicates an evaluation input that cannot produce
	// a decision. Malformed inputs are never cached.
	ErrMalformedInput = errors.New("malformed evaluation input")
)

// InputError describes which evaluation input was malformed and why.
type InputError struct {
	Field   string
	Message string
	Cause   error
}

// Error returns the error message.
func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns ErrMalformedInput so callers can match with errors.Is,
// alongside any wrapped cause.
func (e *InputError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrMalformedInput, e.Cause}
	}
	return []error{ErrMalformedInput}
}
