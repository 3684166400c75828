package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/webrana-voicemail-backend/internal/errors"
)

// Common repository errors
var (
	ErrNotFound            = apperrors.ErrNotFound
	ErrInvalidInput        = apperrors.ErrInvalidInput
	ErrConstraintViolation = apperrors.ErrConstraintViolation
	ErrStorageUnavailable  = apperrors.ErrStorageUnavailable
)

// classifyError wraps a driver error with the matching repository sentinel
// while keeping the original error in the chain
func classifyError(op string, err error) error {
	switch {
	case isConstraintError(err):
		return fmt.Errorf("%s: %w: %w", op, ErrConstraintViolation, err)
	case isUnavailableError(err):
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// isConstraintError checks if the error is a foreign-key or not-null violation
func isConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "FOREIGN KEY constraint failed") ||
		strings.Contains(errStr, "NOT NULL constraint failed") ||
		strings.Contains(errStr, "violates foreign key constraint") ||
		strings.Contains(errStr, "violates not-null constraint") ||
		strings.Contains(errStr, "23503") || // PostgreSQL foreign_key_violation
		strings.Contains(errStr, "23502") // PostgreSQL not_null_violation
}

// isUnavailableError checks if the error came from a lost or refused connection
func isUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "database is closed")
}

// isValidID reports whether id can name a row. Rows are keyed by the
// canonical hyphenated UUID form only.
func isValidID(id string) bool {
	return len(id) == canonicalIDLength && uuid.Validate(id) == nil
}

const canonicalIDLength = 36
