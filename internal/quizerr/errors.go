// Package quizerr defines the error taxonomy shared by the session engine.
//
// InvalidState, OutOfRange and NotFound indicate a UI/state desync and are
// surfaced immediately. Transient wraps store or broker failures that the
// controller may retry.
package quizerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState: operation attempted on a session not in the required status.
	ErrInvalidState = errors.New("invalid session state")
	// ErrOutOfRange: question index outside session bounds.
	ErrOutOfRange = errors.New("question index out of range")
	// ErrNotFound: session or question id unresolved.
	ErrNotFound = errors.New("not found")
)

// TransientError marks a retryable store/network failure.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable, tagged with the failing operation.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
