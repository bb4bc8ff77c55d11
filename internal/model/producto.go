package model

import (
	"github.com/shopspring/decimal"
)

// Product is the normalized catalog shape used by the POS front regardless
// of which backend version produced it (see normalize.Product).
type Product struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	IVA           decimal.Decimal `json:"iva"`
	Stock         decimal.Decimal `json:"stock"`
	WeightKg      decimal.Decimal `json:"weightKg"`
	Unit          string          `json:"unit"`
	Multiple      decimal.Decimal `json:"multiple"`
	CoverageGroup string          `json:"coverageGroup"`
	Barcode       string          `json:"barcode"`
	Brand         string          `json:"brand"`
	ImageURL      string          `json:"imageUrl,omitempty"`
}

// StockRow is per-store availability for a product.
type StockRow struct {
	StoreName            string          `json:"storeName"`
	AvailableForSale     decimal.Decimal `json:"availableForSale"`
	AvailableForDelivery decimal.Decimal `json:"availableForDelivery"`
	Committed            decimal.Decimal `json:"committed"`
}
