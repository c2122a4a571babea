package business

import (
	"context"
	"errors"
	"fmt"

	"gomarketplace_ingest/internal/catalog/models"
	"gomarketplace_ingest/internal/catalog/storage"
	"gomarketplace_ingest/pkg/business/service"
	"gomarketplace_ingest/pkg/logger"
)

var ErrInvalidProduct = errors.New("invalid product payload")

type PriceSource interface {
	BulkPrices(ctx context.Context, ids []int64) map[int64][]models.VariationPrice
}

// EntityWriter раскладывает один товар из API по нормализованным таблицам в одной транзакции.
type EntityWriter struct {
	store  storage.CatalogStore
	prices PriceSource
	text   service.ITextService
	log    logger.Logger
}

func NewEntityWriter(store storage.CatalogStore, prices PriceSource, text service.ITextService, log logger.Logger) *EntityWriter {
	return &EntityWriter{store: store, prices: prices, text: text, log: log}
}

// Write is idempotent: every row is upserted by its natural key. The price lookup happens before the
// transaction opens so no network call holds it.
func (w *EntityWriter) Write(ctx context.Context, raw models.RawProduct) error {
	if raw.DecodeErr != nil {
		return fmt.Errorf("%w: product %d: %v", ErrInvalidProduct, raw.ID, raw.DecodeErr)
	}
	if raw.ID == 0 {
		return fmt.Errorf("%w: missing product id", ErrInvalidProduct)
	}

	livePrices := w.lookupPrices(ctx, raw.ID)
	ix := newProductIndex(&raw)

	return w.store.WithinTx(ctx, func(tx storage.CatalogTx) error {
		if err := tx.UpsertProduct(ctx, w.toProduct(raw)); err != nil {
			return err
		}

		for _, attr := range ix.productAttributes(raw.ID) {
			if err := tx.UpsertProductAttribute(ctx, attr); err != nil {
				return err
			}
		}

		for _, rv := range raw.Variations {
			if err := w.writeVariation(ctx, tx, ix, raw.ID, rv, livePrices); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *EntityWriter) writeVariation(
	ctx context.Context,
	tx storage.CatalogTx,
	ix *productIndex,
	productID int64,
	rv models.RawVariation,
	livePrices map[int64]models.VariationPrice,
) error {
	if err := tx.UpsertVariation(ctx, toVariation(productID, rv, livePrices)); err != nil {
		return err
	}

	attrs, skipped := ix.variationAttributes(rv)
	if len(skipped) > 0 {
		w.log.Debug("Variation %d of product %d: skipped unresolved params %v", rv.ID, productID, skipped)
	}
	for _, attr := range attrs {
		if err := tx.UpsertVariationAttribute(ctx, attr); err != nil {
			return err
		}
	}

	for _, url := range rv.Images {
		if url == "" {
			continue
		}
		if err := tx.InsertVariationImage(ctx, models.VariationImage{VariationID: rv.ID, ImageURL: url}); err != nil {
			return err
		}
	}
	return nil
}

func (w *EntityWriter) lookupPrices(ctx context.Context, productID int64) map[int64]models.VariationPrice {
	result := make(map[int64]models.VariationPrice)
	if w.prices == nil {
		return result
	}
	for _, vp := range w.prices.BulkPrices(ctx, []int64{productID})[productID] {
		result[vp.VariationID] = vp
	}
	return result
}

func (w *EntityWriter) toProduct(raw models.RawProduct) models.Product {
	descClear := raw.DescriptionClear
	if descClear == "" && raw.Description != "" && w.text != nil {
		descClear = w.text.CleanDescription(raw.Description)
	}
	return models.Product{
		ID:               raw.ID,
		Name:             raw.Name,
		PrimaryRubricID:  raw.PrimaryRubricID,
		RubricIDs:        raw.RubricIDs,
		Brand:            raw.Brand,
		Description:      raw.Description,
		DescriptionClear: descClear,
	}
}

// toVariation takes price and quantity from the live lookup when it has them for the variation.
func toVariation(productID int64, rv models.RawVariation, livePrices map[int64]models.VariationPrice) models.Variation {
	v := models.Variation{
		ID:            rv.ID,
		SKU:           rv.SKU.String(),
		ProductID:     productID,
		Description:   rv.Description,
		OriginalPrice: rv.OriginalPrice,
		Price:         rv.Price,
		Quantity:      rv.Quantity,
		Currency:      rv.Currency,
		URL:           rv.URL,
		Warehouse:     rv.Warehouse.String(),
		VendorID:      rv.VendorID.String(),
	}
	// null в ответе цен не затирает значения из карточки
	if live, ok := livePrices[rv.ID]; ok {
		if live.Price.Valid {
			v.Price = live.Price.Decimal
		}
		if live.Quantity != nil {
			v.Quantity = *live.Quantity
		}
	}
	return v
}
