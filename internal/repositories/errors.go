package repositories

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a referenced record is absent.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a create collides with an existing key.
	ErrDuplicate = errors.New("record already exists")

	// ErrTxConflict is returned when a transaction could not commit after the
	// bounded number of retry attempts.
	ErrTxConflict = errors.New("transaction conflict: retries exhausted")

	// ErrTimeout is returned when a store operation ran out of deadline.
	// Callers must treat it as unknown-outcome and re-query rather than
	// blindly retrying non-idempotent writes.
	ErrTimeout = errors.New("store operation timed out")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrTxConflict)
}

func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
