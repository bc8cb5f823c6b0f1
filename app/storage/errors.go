package storage

import (
	"errors"
	"fmt"
)

// ConcurrentConflictError is returned when a transaction exhausted its retry
// budget on serialization conflicts. Safe for the caller to retry.
type ConcurrentConflictError struct {
	Attempts int
	Last     error
}

func (e *ConcurrentConflictError) Error() string {
	return fmt.Sprintf("transaction aborted after %d conflicting attempts: %v", e.Attempts, e.Last)
}

func (e *ConcurrentConflictError) Unwrap() error { return e.Last }

// IsConcurrentConflict reports whether err wraps a ConcurrentConflictError.
func IsConcurrentConflict(err error) bool {
	var cc *ConcurrentConflictError
	return errors.As(err, &cc)
}
