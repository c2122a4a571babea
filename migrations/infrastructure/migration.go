package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"gomarketplace_ingest/pkg/dbconnect/migration"
	"gomarketplace_ingest/pkg/logger"
)

const (
	ParsingStateMigration        = "catalog.parsing_state"
	ProductsMigration            = "catalog.products"
	ProductAttributesMigration   = "catalog.product_attributes"
	ProductVariationsMigration   = "catalog.product_variations"
	VariationAttributesMigration = "catalog.variation_attributes"
	VariationImagesMigration     = "catalog.variation_images"
	FreeTextColumnsMigration     = "catalog.free_text_columns"
)

type MigrationsSchema struct{}

func (m *MigrationsSchema) UpMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE SCHEMA IF NOT EXISTS migrations;`)
	if err != nil {
		return fmt.Errorf("failed to create migrations schema: %w", err)
	}
	_, err = db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS migrations.migrations (
            id SERIAL PRIMARY KEY,
            time TIMESTAMP NOT NULL,
            name VARCHAR(255) UNIQUE NOT NULL
        );
    `)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// TableMigration применяет query один раз и отмечает это в migrations.migrations.
type TableMigration struct {
	Name  string
	Query string
	Log   logger.Logger
}

func (m *TableMigration) UpMigration(ctx context.Context, db *sql.DB) error {
	var migrationExists bool
	err := db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM migrations.migrations WHERE name = $1)", m.Name).Scan(&migrationExists)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if migrationExists {
		m.Log.Debug("Migration '%s' already completed. Skipping.", m.Name)
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration '%s': %w", m.Name, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, m.Query); err != nil {
		return fmt.Errorf("failed to apply '%s': %w", m.Name, err)
	}
	if _, err = tx.ExecContext(ctx, "INSERT INTO migrations.migrations (name, time) VALUES ($1, current_timestamp)", m.Name); err != nil {
		return fmt.Errorf("failed to mark '%s' migration as complete: %w", m.Name, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit '%s': %w", m.Name, err)
	}

	m.Log.Log("Migration '%s' completed successfully.", m.Name)
	return nil
}

// CatalogMigrations returns the ordered schema bootstrap for the ingestion tables.
func CatalogMigrations(log logger.Logger) []migration.MigrationInterface {
	return []migration.MigrationInterface{
		&MigrationsSchema{},
		&TableMigration{Name: ParsingStateMigration, Log: log, Query: `
			CREATE TABLE IF NOT EXISTS parsing_state (
				id SERIAL PRIMARY KEY,
				run_id UUID NOT NULL,
				scroll_id TEXT,
				last_processed_id BIGINT,
				status VARCHAR(16) NOT NULL DEFAULT 'active',
				started_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
				last_processed_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
				CONSTRAINT parsing_state_status_check CHECK (status IN ('active', 'done'))
			);
			CREATE UNIQUE INDEX IF NOT EXISTS parsing_state_single_active
				ON parsing_state (status) WHERE status = 'active';
		`},
		&TableMigration{Name: ProductsMigration, Log: log, Query: `
			CREATE TABLE IF NOT EXISTS products (
				id BIGINT PRIMARY KEY,
				name TEXT NOT NULL,
				primary_rubric_id BIGINT,
				rubric_ids BIGINT[] NOT NULL DEFAULT '{}',
				brand TEXT,
				description TEXT,
				description_clear TEXT,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL
			);
		`},
		&TableMigration{Name: ProductAttributesMigration, Log: log, Query: `
			CREATE TABLE IF NOT EXISTS product_attributes (
				id SERIAL PRIMARY KEY,
				product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				value TEXT NOT NULL,
				group_name TEXT,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
				CONSTRAINT product_attributes_product_name UNIQUE (product_id, name)
			);
		`},
		&TableMigration{Name: ProductVariationsMigration, Log: log, Query: `
			CREATE TABLE IF NOT EXISTS product_variations (
				id BIGINT PRIMARY KEY,
				sku VARCHAR(255),
				product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				description TEXT,
				original_price NUMERIC(14, 2),
				price NUMERIC(14, 2),
				quantity INT NOT NULL DEFAULT 0,
				currency VARCHAR(16),
				url TEXT,
				warehouse VARCHAR(255),
				vendor_id VARCHAR(64),
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS product_variations_product_id_idx ON product_variations (product_id);
		`},
		&TableMigration{Name: VariationAttributesMigration, Log: log, Query: `
			CREATE TABLE IF NOT EXISTS variation_attributes (
				id SERIAL PRIMARY KEY,
				variation_id BIGINT NOT NULL REFERENCES product_variations(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				value TEXT NOT NULL,
				group_name TEXT,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
				CONSTRAINT variation_attributes_variation_name UNIQUE (variation_id, name)
			);
		`},
		&TableMigration{Name: VariationImagesMigration, Log: log, Query: `
			CREATE TABLE IF NOT EXISTS variation_images (
				id SERIAL PRIMARY KEY,
				variation_id BIGINT NOT NULL REFERENCES product_variations(id) ON DELETE CASCADE,
				image_url TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
				CONSTRAINT variation_images_variation_url UNIQUE (variation_id, image_url)
			);
		`},
		// базы, поднятые до перехода на TEXT
		&TableMigration{Name: FreeTextColumnsMigration, Log: log, Query: `
			ALTER TABLE products ALTER COLUMN brand TYPE TEXT;
			ALTER TABLE product_attributes ALTER COLUMN group_name TYPE TEXT;
			ALTER TABLE variation_attributes ALTER COLUMN group_name TYPE TEXT;
		`},
	}
}
