package models

import "github.com/shopspring/decimal"

type PriceItem struct {
	ID         int64            `json:"id"`
	Variations []VariationPrice `json:"variations"`
}

// VariationPrice - живая цена вариации. Price и Quantity могут прийти null.
type VariationPrice struct {
	VariationID int64               `json:"id"`
	Price       decimal.NullDecimal `json:"price"`
	Quantity    *int                `json:"quantity"`
}
