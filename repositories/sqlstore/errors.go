package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/upb/blog-platform/repositories"
)

const pqUniqueViolation = "23505"

// isUniqueViolation recognizes unique constraint errors from both drivers
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// translate maps driver errors onto repository errors, keeping the cause
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", op, repositories.ErrDuplicate, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

// expectAffected turns a zero-row update or delete into ErrNotFound
func expectAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
	}
	return nil
}
