package migrate

import (
	"context"

	"pingcrm-backend/internal/db"
)

const (
	createTablesName    = "create tables"
	createTablesVersion = 1
)

var createTablesSqlite = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		email_verified_at DATETIME,
		password TEXT,
		owner BOOLEAN NOT NULL DEFAULT FALSE,
		photo_path TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME,
		CONSTRAINT user_account_id_fk
		FOREIGN KEY(account_id) REFERENCES accounts(id)
		ON DELETE CASCADE
		ON UPDATE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		city TEXT,
		region TEXT,
		country TEXT,
		postal_code TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME,
		CONSTRAINT organization_account_id_fk
		FOREIGN KEY(account_id) REFERENCES accounts(id)
		ON DELETE CASCADE
		ON UPDATE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL,
		organization_id INTEGER,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		city TEXT,
		region TEXT,
		country TEXT,
		postal_code TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME,
		CONSTRAINT contact_account_id_fk
		FOREIGN KEY(account_id) REFERENCES accounts(id)
		ON DELETE CASCADE
		ON UPDATE CASCADE,
		CONSTRAINT contact_organization_id_fk
		FOREIGN KEY(organization_id) REFERENCES organizations(id)
		ON DELETE SET NULL
		ON UPDATE CASCADE
	);`,
}

var createTablesPostgres = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		account_id INTEGER NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		email_verified_at TIMESTAMP,
		password TEXT,
		owner BOOLEAN NOT NULL DEFAULT FALSE,
		photo_path TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP,
		CONSTRAINT user_account_id_fk
		FOREIGN KEY(account_id) REFERENCES accounts(id)
		ON DELETE CASCADE
		ON UPDATE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id SERIAL PRIMARY KEY,
		account_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		city TEXT,
		region TEXT,
		country TEXT,
		postal_code TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP,
		CONSTRAINT organization_account_id_fk
		FOREIGN KEY(account_id) REFERENCES accounts(id)
		ON DELETE CASCADE
		ON UPDATE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id SERIAL PRIMARY KEY,
		account_id INTEGER NOT NULL,
		organization_id INTEGER,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		city TEXT,
		region TEXT,
		country TEXT,
		postal_code TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP,
		CONSTRAINT contact_account_id_fk
		FOREIGN KEY(account_id) REFERENCES accounts(id)
		ON DELETE CASCADE
		ON UPDATE CASCADE,
		CONSTRAINT contact_organization_id_fk
		FOREIGN KEY(organization_id) REFERENCES organizations(id)
		ON DELETE SET NULL
		ON UPDATE CASCADE
	);`,
}

var dropTables = []string{
	`DROP TABLE IF EXISTS contacts;`,
	`DROP TABLE IF EXISTS organizations;`,
	`DROP TABLE IF EXISTS users;`,
	`DROP TABLE IF EXISTS accounts;`,
}

var createTables = Migration{
	Version: createTablesVersion,
	Name:    createTablesName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		stmts, err := statements(tx, createTablesSqlite, createTablesPostgres)
		if err != nil {
			return err
		}
		return execAll(ctx, tx, stmts)
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		return execAll(ctx, tx, dropTables)
	},
}
