package migrate

import (
	"context"

	"pingcrm-backend/internal/db"
)

const (
	createSearchIndexesName    = "create search indexes"
	createSearchIndexesVersion = 2
)

// Both drivers accept the same index syntax.
var searchIndexes = []string{
	`CREATE INDEX IF NOT EXISTS users_account_id_idx ON users (account_id);`,
	`CREATE INDEX IF NOT EXISTS users_name_idx ON users (last_name, first_name);`,
	`CREATE INDEX IF NOT EXISTS organizations_account_id_idx ON organizations (account_id);`,
	`CREATE INDEX IF NOT EXISTS organizations_name_idx ON organizations (name);`,
	`CREATE INDEX IF NOT EXISTS contacts_account_id_idx ON contacts (account_id);`,
	`CREATE INDEX IF NOT EXISTS contacts_organization_id_idx ON contacts (organization_id);`,
	`CREATE INDEX IF NOT EXISTS contacts_name_idx ON contacts (last_name, first_name);`,
}

var dropSearchIndexes = []string{
	`DROP INDEX IF EXISTS users_account_id_idx;`,
	`DROP INDEX IF EXISTS users_name_idx;`,
	`DROP INDEX IF EXISTS organizations_account_id_idx;`,
	`DROP INDEX IF EXISTS organizations_name_idx;`,
	`DROP INDEX IF EXISTS contacts_account_id_idx;`,
	`DROP INDEX IF EXISTS contacts_organization_id_idx;`,
	`DROP INDEX IF EXISTS contacts_name_idx;`,
}

var createSearchIndexes = Migration{
	Version: createSearchIndexesVersion,
	Name:    createSearchIndexesName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		return execAll(ctx, tx, searchIndexes)
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		return execAll(ctx, tx, dropSearchIndexes)
	},
}
