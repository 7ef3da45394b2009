package graphstore

import (
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
)

var (
	// ErrUnavailable wraps connection-level failures. Callers may retry.
	ErrUnavailable = errors.New("graph store unavailable")
	// ErrConstraint wraps natural-key and endpoint violations. Not retryable.
	ErrConstraint = errors.New("graph store constraint violation")
	// ErrNotFound is returned when a node lookup matches nothing.
	ErrNotFound = errors.New("node not found")
)

// classify maps a driver error onto the store's error taxonomy. Unknown
// driver failures count as unavailability so the orchestrator's retry
// policy gets a chance before the project fails.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.Code {
		case sqlite3.ErrConstraint:
			return fmt.Errorf("%s: %w: %v", op, ErrConstraint, err)
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
			return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// IsRetryable reports whether err is a transient store failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
