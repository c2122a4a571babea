package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"gomarketplace_ingest/internal/catalog/models"
)

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) WithinTx(ctx context.Context, fn func(tx CatalogTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&catalogTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type catalogTx struct {
	tx *sql.Tx
}

func (t *catalogTx) UpsertProduct(ctx context.Context, p models.Product) error {
	query := `
		INSERT INTO products (id, name, primary_rubric_id, rubric_ids, brand, description, description_clear)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			primary_rubric_id = EXCLUDED.primary_rubric_id,
			rubric_ids = EXCLUDED.rubric_ids,
			brand = EXCLUDED.brand,
			description = EXCLUDED.description,
			description_clear = EXCLUDED.description_clear,
			updated_at = CURRENT_TIMESTAMP`

	rubrics := p.RubricIDs
	if rubrics == nil {
		rubrics = []int64{}
	}
	_, err := t.tx.ExecContext(ctx, query,
		p.ID, p.Name, p.PrimaryRubricID, pq.Array(rubrics), p.Brand, p.Description, p.DescriptionClear,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %d: %w", p.ID, err)
	}
	return nil
}

func (t *catalogTx) UpsertProductAttribute(ctx context.Context, a models.Attribute) error {
	query := `
		INSERT INTO product_attributes (product_id, name, value, group_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, name) DO UPDATE
		SET value = EXCLUDED.value,
			group_name = EXCLUDED.group_name,
			updated_at = CURRENT_TIMESTAMP`

	if _, err := t.tx.ExecContext(ctx, query, a.OwnerID, a.Name, a.Value, a.GroupName); err != nil {
		return fmt.Errorf("failed to upsert product attribute %d/%q: %w", a.OwnerID, a.Name, err)
	}
	return nil
}

func (t *catalogTx) UpsertVariation(ctx context.Context, v models.Variation) error {
	query := `
		INSERT INTO product_variations (
			id, sku, product_id, description, original_price,
			price, quantity, currency, url, warehouse, vendor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET sku = EXCLUDED.sku,
			product_id = EXCLUDED.product_id,
			description = EXCLUDED.description,
			original_price = EXCLUDED.original_price,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			currency = EXCLUDED.currency,
			url = EXCLUDED.url,
			warehouse = EXCLUDED.warehouse,
			vendor_id = EXCLUDED.vendor_id,
			updated_at = CURRENT_TIMESTAMP`

	_, err := t.tx.ExecContext(ctx, query,
		v.ID, v.SKU, v.ProductID, v.Description, v.OriginalPrice,
		v.Price, v.Quantity, v.Currency, v.URL, v.Warehouse, v.VendorID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert variation %d: %w", v.ID, err)
	}
	return nil
}

func (t *catalogTx) UpsertVariationAttribute(ctx context.Context, a models.Attribute) error {
	query := `
		INSERT INTO variation_attributes (variation_id, name, value, group_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (variation_id, name) DO UPDATE
		SET value = EXCLUDED.value,
			group_name = EXCLUDED.group_name,
			updated_at = CURRENT_TIMESTAMP`

	if _, err := t.tx.ExecContext(ctx, query, a.OwnerID, a.Name, a.Value, a.GroupName); err != nil {
		return fmt.Errorf("failed to upsert variation attribute %d/%q: %w", a.OwnerID, a.Name, err)
	}
	return nil
}

func (t *catalogTx) InsertVariationImage(ctx context.Context, img models.VariationImage) error {
	query := `
		INSERT INTO variation_images (variation_id, image_url)
		VALUES ($1, $2)
		ON CONFLICT (variation_id, image_url) DO NOTHING`

	if _, err := t.tx.ExecContext(ctx, query, img.VariationID, img.ImageURL); err != nil {
		return fmt.Errorf("failed to insert image for variation %d: %w", img.VariationID, err)
	}
	return nil
}
