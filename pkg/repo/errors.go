package repo

import (
	"errors"
	"fmt"
)

// ErrNoRow is the sentinel returned by storage engines when no live row
// exists for a requested identifier.
var ErrNoRow = errors.New("storage: no such row")

// ErrNoOriginal is returned by UpdateContext.Original when the update does
// not operate on a pre-existing record (creates).
var ErrNoOriginal = errors.New("update has no original snapshot")

// NotFoundError indicates the requested identifier has no live row: the row
// is absent or marked removed.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string { return fmt.Sprintf("entry %q not found", e.ID) }

// ValidationError indicates a pre-commit hook vetoed the write. The write
// was never attempted; no state changed.
type ValidationError struct {
	ID       string
	UpdateID string
	Err      error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("update %s for entry %q rejected: %v", e.UpdateID, e.ID, e.Err)
}

func (e ValidationError) Unwrap() error { return e.Err }

// PersistenceError indicates a storage or serialization failure on the write
// path. Unless the wrapped error proves otherwise, the caller must assume
// the outcome of the write is unknown.
type PersistenceError struct {
	ID       string
	UpdateID string
	Err      error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persisting update %s for entry %q: %v", e.UpdateID, e.ID, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// TimeoutError indicates a bounded wait elapsed before the operation
// completed. It is distinct from PersistenceError so callers can retry.
type TimeoutError struct {
	ID  string
	Op  string
	Err error
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("%s for entry %q timed out: %v", e.Op, e.ID, e.Err)
}

func (e TimeoutError) Unwrap() error { return e.Err }

// UnsupportedError indicates the configured schema does not support the
// requested operation.
type UnsupportedError struct {
	Op     string
	Reason string
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("operation %s not supported: %s", e.Op, e.Reason)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
