package migration

import (
	"context"
	"database/sql"
)

type MigrationInterface interface {
	UpMigration(ctx context.Context, db *sql.DB) error
}

// Apply runs migrations in order and stops at the first failure.
func Apply(ctx context.Context, db *sql.DB, migrations ...MigrationInterface) error {
	for _, m := range migrations {
		if err := m.UpMigration(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
