package migrate

import (
	"context"

	"pingcrm-backend/internal/db"
)

const (
	uniqueLowerEmailName    = "unique lower email"
	uniqueLowerEmailVersion = 3
)

// Emails are matched case-insensitively, so uniqueness must be too.
var uniqueLowerEmail = Migration{
	Version: uniqueLowerEmailVersion,
	Name:    uniqueLowerEmailName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		return execAll(ctx, tx, []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique ON users (LOWER(email));`,
		})
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		return execAll(ctx, tx, []string{
			`DROP INDEX IF EXISTS users_email_lower_unique;`,
		})
	},
}
