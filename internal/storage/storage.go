// Package storage persists accounts, users, organizations and contacts.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pingcrm-backend/internal/db"
)

// ErrNotFound is returned when a record does not exist in the requested
// account.
var ErrNotFound = errors.New("record not found")

// DefaultPerPage is the page size of paginated listings.
const DefaultPerPage = 10

// MaxPerPage caps the page size a caller may ask for.
const MaxPerPage = 100

// Storage runs queries against a db.Handler, either the pool or a
// transaction.
type Storage struct {
	db  db.Handler
	now func() time.Time
}

// New returns a Storage over h.
func New(h db.Handler) *Storage {
	return &Storage{db: h, now: func() time.Time { return time.Now().UTC() }}
}

// WithTx returns a Storage bound to tx.
func (s *Storage) WithTx(tx *db.Tx) *Storage {
	return &Storage{db: tx, now: s.now}
}

func (s *Storage) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return db.WrapError(err)
}

func (s *Storage) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return db.WrapError(s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...))
}

func (s *Storage) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	return res, db.WrapError(err)
}

// insert runs an INSERT ... RETURNING id statement.
func (s *Storage) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := s.db.QueryRowxContext(ctx, s.db.Rebind(query), args...).Scan(&id); err != nil {
		return 0, db.WrapError(err)
	}
	return id, nil
}

// execOne runs a statement that must touch exactly one row.
func (s *Storage) execOne(ctx context.Context, query string, args ...interface{}) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// nullable stores empty strings as NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
