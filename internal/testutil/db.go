// Package testutil provides shared helpers for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"pingcrm-backend/internal/db"
	"pingcrm-backend/internal/db/migrate"
)

// OpenSqlite opens a new temp SQLite database with foreign keys enabled.
// The database is closed when the test is done.
func OpenSqlite(ctx context.Context, tb testing.TB) (*db.DB, error) {
	tb.Helper()
	if ctx == nil {
		ctx = context.TODO()
	}
	dsn := filepath.Join(tb.TempDir(), "test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	dbx, err := db.Open(ctx, "sqlite", dsn)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	tb.Cleanup(func() {
		if err := dbx.Close(); err != nil {
			tb.Error(err)
		}
	})
	return dbx, nil
}

// OpenMigrated opens a temp SQLite database and runs every migration on it.
// It fails the test on error.
func OpenMigrated(tb testing.TB) *db.DB {
	tb.Helper()
	ctx := context.TODO()
	dbx, err := OpenSqlite(ctx, tb)
	if err != nil {
		tb.Fatal(err)
	}
	if err := migrate.Migrate(ctx, dbx); err != nil {
		tb.Fatal(err)
	}
	return dbx
}
