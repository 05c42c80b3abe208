package db_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"pingcrm-backend/internal/db"
	"pingcrm-backend/internal/testutil"
)

func TestOpenUnknownDriver(t *testing.T) {
	_, err := db.Open(context.TODO(), "invalid", "")
	if err == nil {
		t.Fatal("Open(invalid) => nil, want error")
	}
	if !strings.Contains(err.Error(), "unknown driver") {
		t.Errorf("Open(invalid) => %v, want error containing 'unknown driver'", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := testutil.OpenSqlite(ctx, t)
	is.NoErr(err)

	_, err = dbx.ExecContext(ctx, `CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)`)
	is.NoErr(err)

	boom := errors.New("boom")
	err = dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO things (name) VALUES (?)`), "a"); err != nil {
			return err
		}
		return boom
	})
	is.True(errors.Is(err, boom))

	var count int
	is.NoErr(dbx.GetContext(ctx, &count, `SELECT COUNT(*) FROM things`))
	is.Equal(count, 0)
}

func TestTransactionCommit(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := testutil.OpenSqlite(ctx, t)
	is.NoErr(err)

	_, err = dbx.ExecContext(ctx, `CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)`)
	is.NoErr(err)

	is.NoErr(dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		for _, name := range []string{"a", "b"} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO things (name) VALUES (?)`), name); err != nil {
				return err
			}
		}
		return nil
	}))

	var count int
	is.NoErr(dbx.GetContext(ctx, &count, `SELECT COUNT(*) FROM things`))
	is.Equal(count, 2)
}

func TestWrapErrorDuplicateKey(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := testutil.OpenSqlite(ctx, t)
	is.NoErr(err)

	_, err = dbx.ExecContext(ctx, `CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)`)
	is.NoErr(err)
	_, err = dbx.ExecContext(ctx, `INSERT INTO things (name) VALUES ('a')`)
	is.NoErr(err)
	_, err = dbx.ExecContext(ctx, `INSERT INTO things (name) VALUES ('a')`)
	is.True(errors.Is(db.WrapError(err), db.ErrDuplicateKey))
}

func TestWrapErrorPassthrough(t *testing.T) {
	is := is.New(t)
	is.Equal(db.WrapError(nil), nil)
	other := errors.New("other")
	is.Equal(db.WrapError(other), other)
}

func TestContext(t *testing.T) {
	is := is.New(t)
	is.True(db.FromContext(context.TODO()) == nil)
	dbx := &db.DB{}
	ctx := db.WithContext(context.TODO(), dbx)
	is.Equal(db.FromContext(ctx), dbx)
}
