package models

import "github.com/shopspring/decimal"

// RawProduct - товар в том виде, в котором его отдает product-list-full.
type RawProduct struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	PrimaryRubricID  int64           `json:"primary_rubric_id"`
	RubricIDs        []int64         `json:"rubric_ids"`
	Brand            string          `json:"brand"`
	Description      string          `json:"description"`
	DescriptionClear string          `json:"description_clear"`
	Aspects          []RawAspect     `json:"aspects"`
	Params           []RawParam      `json:"params"`
	ParamValues      []RawParamValue `json:"param_values"`
	Variations       []RawVariation  `json:"variations"`

	// DecodeErr выставляет клиент, если элемент страницы не разобрался. Такой товар не пишется.
	DecodeErr error `json:"-"`
}

type RawAspect struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	AspectGroup string `json:"aspect_group"`
}

type RawParam struct {
	ID       int64   `json:"id"`
	AspectID int64   `json:"aspect_id"`
	Name     string  `json:"name"`
	Value    *string `json:"value"`
}

type RawParamValue struct {
	ParamID int64  `json:"param_id"`
	Value   string `json:"value"`
}

type RawVariation struct {
	ID            int64           `json:"id"`
	SKU           FlexString      `json:"sku"`
	Description   string          `json:"description"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Currency      string          `json:"currency"`
	URL           string          `json:"url"`
	Warehouse     FlexString      `json:"warehouse"`
	VendorID      FlexString      `json:"vendor_id"`
	ParamIDs      []int64         `json:"param_ids"`
	Images        []string        `json:"images"`
}

// Product и далее - нормализованные строки, которые пишутся в базу.
type Product struct {
	ID               int64
	Name             string
	PrimaryRubricID  int64
	RubricIDs        []int64
	Brand            string
	Description      string
	DescriptionClear string
}

// Attribute принадлежит товару или вариации (OwnerID), уникален по (OwnerID, Name).
type Attribute struct {
	OwnerID   int64
	Name      string
	Value     string
	GroupName string
}

type Variation struct {
	ID            int64
	SKU           string
	ProductID     int64
	Description   string
	OriginalPrice decimal.Decimal
	Price         decimal.Decimal
	Quantity      int
	Currency      string
	URL           string
	Warehouse     string
	VendorID      string
}

type VariationImage struct {
	VariationID int64
	ImageURL    string
}
