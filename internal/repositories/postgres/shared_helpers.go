package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/scms-platform/records-service/internal/repositories"
)

// mapError translates driver-level errors into the repository taxonomy so
// services never see gorm or pq error types.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return repositories.ErrTimeout
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return repositories.ErrDuplicate
	}
	return err
}

// isUniqueViolation matches Postgres unique-constraint failures (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "SQLSTATE 23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}

// isSerializationFailure matches Postgres serialization and deadlock aborts
// (SQLSTATE 40001 / 40P01), which are safe to retry as a whole transaction.
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 40001") ||
		strings.Contains(msg, "SQLSTATE 40P01") ||
		strings.Contains(msg, "could not serialize access")
}

// deleteAffected runs a bulk delete and maps the result; bulk deletes that
// match zero rows are fine (the cascade may find no dependents).
func deleteAffected(tx *gorm.DB, what string) error {
	if tx.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", what, mapError(tx.Error))
	}
	return nil
}
