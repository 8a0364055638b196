package xrmgen

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested entity or enum is not part of
// a mapping Context.
var ErrNotFound = errors.New("xrmgen: not found")

// NotFoundError represents a lookup of a name that is not in the Context.
type NotFoundError struct {
	kind string
	name string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("xrmgen: %s %q not found", e.kind, e.name)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Kind returns the kind of object that was looked up ("entity", "enum").
func (e *NotFoundError) Kind() string {
	return e.kind
}

// Name returns the name that was searched for.
func (e *NotFoundError) Name() string {
	return e.name
}

// NewNotFoundError returns a new NotFoundError for the given kind and name.
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{kind: kind, name: name}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}
