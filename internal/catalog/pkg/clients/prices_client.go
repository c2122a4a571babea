package clients

import (
	"context"
	"net/http"
	"net/url"

	"gomarketplace_ingest/internal/catalog/models"
)

type pricesRequest struct {
	ProductIDs []int64 `json:"product_ids"`
}

type pricesResult struct {
	Items []models.PriceItem `json:"items"`
}

// BulkPrices returns variation prices per product id. Any failure yields an empty map.
func (c *CatalogClient) BulkPrices(ctx context.Context, ids []int64) map[int64][]models.VariationPrice {
	prices := make(map[int64][]models.VariationPrice)
	if len(ids) == 0 {
		return prices
	}

	query := url.Values{}
	query.Set("country", c.country)
	query.Set("currency", c.currency)
	endpoint := "/partner/v1/product/items/prices?" + query.Encode()

	var result pricesResult
	if err := c.request(ctx, http.MethodPost, endpoint, pricesRequest{ProductIDs: ids}, &result); err != nil {
		return prices
	}

	for _, item := range result.Items {
		prices[item.ID] = append(prices[item.ID], item.Variations...)
	}
	return prices
}
