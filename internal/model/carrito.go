package model

import (
	"github.com/shopspring/decimal"
)

// Line discount types. A nil discount means no line discount.
const (
	DiscountPercent = "percent"
	DiscountAmount  = "amount"
)

// LineDiscount applies either a percentage (clamped 0..100) or a fixed
// amount (clamped 0..gross) to a single cart line.
type LineDiscount struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// CartLine is one product row in the cart. Quantity is always a positive
// multiple of Multiple (see cart.EnsureMultiple).
type CartLine struct {
	LineID    string          `json:"lineId"`
	ProductID string          `json:"productId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	IVA       decimal.Decimal `json:"iva"` // percent, e.g. 21
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	Multiple  decimal.Decimal `json:"multiple"`
	WeightKg  decimal.Decimal `json:"weightKg"`
	Discount  *LineDiscount   `json:"discount"`
	Note      string          `json:"note,omitempty"`
}

// Logistics modes.
const (
	LogisticsPickup   = "pickup"
	LogisticsDelivery = "delivery"
)

// Logistics carries the fulfillment choice for the cart.
type Logistics struct {
	Mode          string          `json:"mode"`
	StoreID       string          `json:"storeId,omitempty"`
	ScheduledDate string          `json:"scheduledDate,omitempty"`
	Address       string          `json:"address,omitempty"`
	Cost          decimal.Decimal `json:"cost"`
	Notes         string          `json:"notes,omitempty"`
}

// Client is the normalized client shape used across the POS regardless of
// backend field-naming variance.
type Client struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Document         string `json:"document,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	PreferredStoreID string `json:"preferredStoreId,omitempty"`
}

// PaymentLine is a payment split attached to the cart.
type PaymentLine struct {
	ID           string          `json:"id"`
	Method       string          `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	Installments int             `json:"installments"`
	Interest     decimal.Decimal `json:"interest"`
	Brand        string          `json:"brand,omitempty"`
	Reference    string          `json:"reference,omitempty"`
}

// CartSnapshot is the root aggregate owned by the cart store. It is never
// partially valid: every mutation replaces the whole snapshot and recomputes
// the derived totals in the same step.
type CartSnapshot struct {
	Lines                 []CartLine      `json:"lines"`
	Client                *Client         `json:"client"`
	Logistics             Logistics       `json:"logistics"`
	GlobalDiscountPercent decimal.Decimal `json:"globalDiscountPercent"`
	GlobalDiscountAmount  decimal.Decimal `json:"globalDiscountAmount"`
	Note                  string          `json:"note,omitempty"`
	Payments              []PaymentLine   `json:"payments"`
	SimulatorTotals       *EnvelopeTotals `json:"simulatorTotals,omitempty"`
	UpdatedAt             string          `json:"updatedAt"`
}

// LineTotals is the per-line monetary breakdown. Every field is already
// rounded to 2 decimals.
type LineTotals struct {
	Gross    decimal.Decimal `json:"gross"`
	Discount decimal.Decimal `json:"discount"`
	Net      decimal.Decimal `json:"net"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// CartTotals is the derived totals object recomputed on every mutation.
type CartTotals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	LineDiscounts   decimal.Decimal `json:"lineDiscounts"`
	GlobalDiscounts decimal.Decimal `json:"globalDiscounts"`
	LogisticsCost   decimal.Decimal `json:"logisticsCost"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	Units           decimal.Decimal `json:"units"`    // 3 decimals
	WeightKg        decimal.Decimal `json:"weightKg"` // 3 decimals
}
