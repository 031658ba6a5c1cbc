package domain

import (
	"errors"
	"fmt"
)

// Domain errors (no external dependencies).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate resource")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access denied")
	ErrConflict     = errors.New("conflict with current state")

	// ErrStorageUnavailable wraps transient infrastructure failures. Safe to
	// retry; nothing has been allocated or written when it is returned.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// PreconditionError is a failed invoicing guard. It names the offending field
// and carries a remediation hint for the sales screen. Guards never partially
// apply: when one fails the deal is untouched.
type PreconditionError struct {
	Field string
	Hint  string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s (%s)", e.Field, e.Hint)
}

// NewPrecondition builds a PreconditionError.
func NewPrecondition(field, hint string) *PreconditionError {
	return &PreconditionError{Field: field, Hint: hint}
}

// AsPrecondition unwraps err into a PreconditionError, or returns nil.
func AsPrecondition(err error) *PreconditionError {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}
