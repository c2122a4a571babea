package storage

import (
	"context"
	"database/sql"
	"io"
	"os"
	"strings"
	"testing"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gomarketplace_ingest/internal/catalog/models"
	"gomarketplace_ingest/migrations/infrastructure"
	"gomarketplace_ingest/pkg/dbconnect/migration"
	"gomarketplace_ingest/pkg/logger"
)

// openTestDB needs TEST_DATABASE_URL pointing at a disposable database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewLogger(nil, "[test]")
	log.SetWriter(io.Discard)

	ctx := context.Background()
	require.NoError(t, migration.Apply(ctx, db, infrastructure.CatalogMigrations(log)...))
	_, err = db.ExecContext(ctx, `TRUNCATE parsing_state, variation_images, variation_attributes,
		product_variations, product_attributes, products RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM "+table).Scan(&n))
	return n
}

func writeSample(ctx context.Context, repo *CatalogRepository) error {
	return repo.WithinTx(ctx, func(tx CatalogTx) error {
		if err := tx.UpsertProduct(ctx, models.Product{ID: 1, Name: "Air Max", RubricIDs: []int64{1, 2}}); err != nil {
			return err
		}
		if err := tx.UpsertProductAttribute(ctx, models.Attribute{OwnerID: 1, Name: "Цвет", Value: "черный", GroupName: "Вид"}); err != nil {
			return err
		}
		if err := tx.UpsertVariation(ctx, models.Variation{
			ID: 10, ProductID: 1, SKU: "AM-42", Price: decimal.RequireFromString("9990.50"), Quantity: 2,
		}); err != nil {
			return err
		}
		if err := tx.UpsertVariationAttribute(ctx, models.Attribute{OwnerID: 10, Name: "EU", Value: "42"}); err != nil {
			return err
		}
		return tx.InsertVariationImage(ctx, models.VariationImage{VariationID: 10, ImageURL: "https://img/10.jpg"})
	})
}

func TestCatalogRepository_UpsertsAreIdempotent(t *testing.T) {
	db := openTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	require.NoError(t, writeSample(ctx, repo))
	require.NoError(t, writeSample(ctx, repo))

	for table, want := range map[string]int{
		"products": 1, "product_attributes": 1, "product_variations": 1,
		"variation_attributes": 1, "variation_images": 1,
	} {
		assert.Equal(t, want, countRows(t, db, table), table)
	}

	var price string
	require.NoError(t, db.QueryRow("SELECT price::text FROM product_variations WHERE id = 10").Scan(&price))
	assert.Equal(t, "9990.50", price)
}

func TestCatalogRepository_LongFreeTextFits(t *testing.T) {
	db := openTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()
	brand := strings.Repeat("Бренд ", 100)
	group := strings.Repeat("Группа ", 60)

	err := repo.WithinTx(ctx, func(tx CatalogTx) error {
		if err := tx.UpsertProduct(ctx, models.Product{ID: 3, Name: "Long", Brand: brand}); err != nil {
			return err
		}
		return tx.UpsertProductAttribute(ctx, models.Attribute{OwnerID: 3, Name: "Материал", Value: "кожа", GroupName: group})
	})
	require.NoError(t, err)

	var stored string
	require.NoError(t, db.QueryRow("SELECT brand FROM products WHERE id = 3").Scan(&stored))
	assert.Equal(t, brand, stored)
}

func TestCatalogRepository_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	err := repo.WithinTx(ctx, func(tx CatalogTx) error {
		require.NoError(t, tx.UpsertProduct(ctx, models.Product{ID: 2, Name: "Orphan"}))
		return tx.UpsertVariation(ctx, models.Variation{ID: 20, ProductID: 999})
	})
	require.Error(t, err)
	assert.Equal(t, 0, countRows(t, db, "products"))
}

func TestCheckpointRepository_SingleActiveRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewCheckpointRepository(db)
	ctx := context.Background()

	record, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, repo.Save(ctx, nil, 1))
	first, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Nil(t, first.Cursor)

	require.NoError(t, repo.Save(ctx, models.NewCursor("abc"), 2))
	second, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, second.Cursor)
	assert.Equal(t, "abc", *second.Cursor)
	assert.Equal(t, int64(2), second.LastProcessedID)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, 1, countRows(t, db, "parsing_state"))

	require.NoError(t, repo.MarkDone(ctx))
	record, err = repo.LoadActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, repo.Save(ctx, nil, 3))
	assert.Equal(t, 2, countRows(t, db, "parsing_state"))
}
