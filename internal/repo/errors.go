package repo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that no row matched.
	ErrNotFound = errors.New("entity not found")

	// ErrAmbiguous indicates that more than one row matched a Single query.
	ErrAmbiguous = errors.New("more than one entity matched")
)

// QueryError wraps a failed repository operation.
type QueryError struct {
	Op    string
	Table string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a not-found cardinality failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAmbiguous reports whether err is an ambiguous-result failure.
func IsAmbiguous(err error) bool {
	return errors.Is(err, ErrAmbiguous)
}
