package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced record is missing or retired.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means the write lost a race: an overlapping approved
	// slot, a full roster, or a record that already reached a terminal
	// state. Callers should re-fetch before retrying with different
	// parameters.
	ErrConflict = errors.New("conflicting state change")

	// ErrForbidden means the actor is not the owner/organizer the
	// operation requires. Not retryable.
	ErrForbidden = errors.New("actor lacks the required role")
)

// ValidationError names the constraint a malformed input violated.
// It is always raised before any record is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a *ValidationError as an error value.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Invalidf is Invalid with a formatted reason.
func Invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
