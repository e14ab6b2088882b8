package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every service. Handlers map these to HTTP status
// codes; callers match them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrTransient    = errors.New("store unavailable")

	// ErrInvalidSort is returned for an unknown sort key when strict sort
	// validation is enabled.
	ErrInvalidSort = fmt.Errorf("%w: unsupported sort key", ErrInvalidInput)
)

// UnknownReferenceError reports a filter or input id that names no row.
type UnknownReferenceError struct {
	Kind string // "genre", "platform", "user"
	ID   uint
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown %s %d", e.Kind, e.ID)
}

func (e *UnknownReferenceError) Is(target error) bool {
	return target == ErrNotFound
}

// storeError marks an unexpected repository failure as transient while
// keeping the underlying cause reachable.
type storeError struct {
	op  string
	err error
}

func (e *storeError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *storeError) Unwrap() []error {
	return []error{ErrTransient, e.err}
}

func transient(op string, err error) error {
	return &storeError{op: op, err: err}
}
