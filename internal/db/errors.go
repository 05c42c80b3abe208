package db

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDuplicateKey is a unique constraint violation.
	ErrDuplicateKey = errors.New("duplicate key value violates table constraint")

	// ErrForeignKey is a foreign key constraint violation.
	ErrForeignKey = errors.New("foreign key constraint violation")
)

// WrapError maps driver specific constraint errors to ErrDuplicateKey and
// ErrForeignKey. Other errors are returned untouched.
func WrapError(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrDuplicateKey
		case "23503":
			return ErrForeignKey
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return ErrDuplicateKey
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ErrForeignKey
		}
	}

	return err
}
