package migrate

import (
	"context"
	"fmt"

	"pingcrm-backend/internal/db"
)

// Keep this in order of execution, oldest to newest.
var migrations = []Migration{
	createTables,
	createSearchIndexes,
	uniqueLowerEmail,
}

// statements picks the statements written for the transaction's driver.
func statements(h db.Handler, sqlite, postgres []string) ([]string, error) {
	switch h.DriverName() {
	case driverSQLite, driverSQLite3:
		return sqlite, nil
	case driverPostgres:
		return postgres, nil
	default:
		return nil, fmt.Errorf("unknown driver %q", h.DriverName())
	}
}

func execAll(ctx context.Context, h db.Handler, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := h.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
