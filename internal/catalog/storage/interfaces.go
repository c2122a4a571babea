package storage

import (
	"context"

	"gomarketplace_ingest/internal/catalog/models"
)

// CatalogTx - операции записи внутри транзакции одного товара.
type CatalogTx interface {
	UpsertProduct(ctx context.Context, p models.Product) error
	UpsertProductAttribute(ctx context.Context, a models.Attribute) error
	UpsertVariation(ctx context.Context, v models.Variation) error
	UpsertVariationAttribute(ctx context.Context, a models.Attribute) error
	InsertVariationImage(ctx context.Context, img models.VariationImage) error
}

type CatalogStore interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx CatalogTx) error) error
}

type CheckpointStore interface {
	LoadActive(ctx context.Context) (*models.CheckpointRecord, error)
	Save(ctx context.Context, cursor models.PageCursor, lastProcessedID int64) error
	MarkDone(ctx context.Context) error
}
