package registrations

import (
	"errors"
	"fmt"
)

// Sentinel errors for the registration lifecycle. Handlers match them with
// errors.Is to pick a status class; anything unmatched is a transient store
// failure.
var (
	// ErrNotFound: no registration exists for the token (lookup, amend, withdraw).
	ErrNotFound = errors.New("registration not found")
	// ErrConflict: a registration already exists for the token (register).
	ErrConflict = errors.New("already registered")
	// ErrIntegrity: more than one row matched a token. Indicates a bug, never
	// a valid outcome; always logged where detected.
	ErrIntegrity = errors.New("duplicate registrations for token")
)

// ValidationError reports a missing or empty required field. It is raised
// before any store call.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
