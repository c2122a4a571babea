package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"
	"gomarketplace_ingest/config"
	"gomarketplace_ingest/internal/catalog/models"
	"gomarketplace_ingest/pkg/logger"
)

// CatalogClient ходит в product-list-full и в bulk prices. Один экземпляр на весь прогон.
type CatalogClient struct {
	*BaseClient
	rubricID  int64
	vendorIDs string
	pageSize  int
	country   string
	currency  string
}

func NewCatalogClient(cfg config.CatalogConfig, log logger.Logger) *CatalogClient {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1)
	return &CatalogClient{
		BaseClient: NewBaseClient(cfg.BaseURL, NewAuth(cfg.AuthHeader, cfg.ApiToken), cfg.RequestTimeout, limiter, log),
		rubricID:   cfg.RubricID,
		vendorIDs:  cfg.VendorIDs,
		pageSize:   cfg.PageSize,
		country:    cfg.Country,
		currency:   cfg.Currency,
	}
}

type productListResult struct {
	Items  []json.RawMessage `json:"items"`
	Scroll *struct {
		ID string `json:"id"`
	} `json:"scroll"`
}

// ListProducts never returns an error directly: failures are reported as OutcomeTransportError.
func (c *CatalogClient) ListProducts(ctx context.Context, cursor models.PageCursor) models.PageResult {
	query := url.Values{}
	if c.vendorIDs != "" {
		query.Set("vendorIds", c.vendorIDs)
	}
	query.Set("limit", strconv.Itoa(c.pageSize))
	if cursor != nil && *cursor != "" {
		query.Set("scroll", *cursor)
	}
	endpoint := "/partner/v1/rubric/product-list-full/" + strconv.FormatInt(c.rubricID, 10) + "?" + query.Encode()

	var result productListResult
	if err := c.request(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return models.PageResult{Outcome: models.OutcomeTransportError, Err: err}
	}

	var next models.PageCursor
	if result.Scroll != nil && result.Scroll.ID != "" {
		next = models.NewCursor(result.Scroll.ID)
	}
	if len(result.Items) == 0 {
		return models.PageResult{Next: next, Outcome: models.OutcomeEmpty}
	}
	return models.PageResult{Items: c.decodeItems(result.Items), Next: next, Outcome: models.OutcomeItems}
}

// decodeItems разбирает товары по одному: битый элемент не должен ронять всю страницу.
func (c *CatalogClient) decodeItems(raw []json.RawMessage) []models.RawProduct {
	items := make([]models.RawProduct, 0, len(raw))
	for i, data := range raw {
		var p models.RawProduct
		if err := json.Unmarshal(data, &p); err != nil {
			id := itemID(data)
			c.log.Warn("Item %d (product %d) does not decode: %v", i, id, err)
			p = models.RawProduct{ID: id, DecodeErr: fmt.Errorf("%w: %v", ErrMalformed, err)}
		}
		items = append(items, p)
	}
	return items
}

// itemID достает id из элемента, который целиком не разобрался. 0, если id нет.
func itemID(data json.RawMessage) int64 {
	var head struct {
		ID models.FlexString `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0
	}
	id, err := strconv.ParseInt(head.ID.String(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
