package repositories

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable means the backing store could not be read.
	ErrDataUnavailable = errors.New("data unavailable")
	ErrNotFound        = errors.New("not found")
)

// RepositoryError records the failed operation. It always unwraps to
// ErrDataUnavailable or ErrNotFound as well as to the underlying cause.
type RepositoryError struct {
	Op   string
	Kind error
	Err  error
}

func (e *RepositoryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *RepositoryError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Unavailable wraps err as a DataUnavailable failure of op. It returns nil
// for a nil err.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Kind: ErrDataUnavailable, Err: err}
}

func NotFound(op, id string) error {
	return &RepositoryError{Op: op, Kind: ErrNotFound, Err: fmt.Errorf("id %q", id)}
}
