package dto

import (
	"github.com/shopspring/decimal"

	"posfront/internal/model"
)

// ─── Cart mutations ──────────────────────────────────────────────────────────

type AddLineRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	Code      string          `json:"code"`
	Name      string          `json:"name"      validate:"required"`
	Price     decimal.Decimal `json:"price"     validate:"min=0"`
	IVA       decimal.Decimal `json:"iva"       validate:"min=0"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	Multiple  decimal.Decimal `json:"multiple"`
	WeightKg  decimal.Decimal `json:"weightKg"  validate:"min=0"`
}

type UpdateQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

// LineDiscountRequest clears the discount when Discount is null.
type LineDiscountRequest struct {
	Discount *model.LineDiscount `json:"discount"`
}

type GlobalDiscountsRequest struct {
	Percent decimal.Decimal `json:"percent" validate:"min=0,max=100"`
	Amount  decimal.Decimal `json:"amount"  validate:"min=0"`
}

type LogisticsRequest struct {
	Mode          string          `json:"mode" validate:"required,oneof=pickup delivery"`
	StoreID       string          `json:"storeId"`
	ScheduledDate string          `json:"scheduledDate"`
	Address       string          `json:"address"`
	Cost          decimal.Decimal `json:"cost" validate:"min=0"`
	Notes         string          `json:"notes"`
}

type NoteRequest struct {
	Note string `json:"note"`
}

type PaymentsRequest struct {
	Payments []model.PaymentLine `json:"payments" validate:"required,dive"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type CartResponse struct {
	Cart        model.CartSnapshot `json:"cart"`
	Totals      model.CartTotals   `json:"totals"`
	NeedsSync   bool               `json:"needsSync"`
	RemoteError string             `json:"remoteError,omitempty"`
}

type QuoteResponse struct {
	File string `json:"file"`
}
