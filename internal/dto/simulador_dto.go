package dto

import "github.com/shopspring/decimal"

// ─── Selector options ────────────────────────────────────────────────────────

// OptionsFilter is bound from the query string of GET /v1/simulador/opciones.
type OptionsFilter struct {
	Method    string `form:"method"`
	Brand     string `form:"brand"`
	Bank      string `form:"bank"`
	Acquirer  string `form:"acquirer"`
	OnlyCards bool   `form:"only_cards"`
}

type OptionItem struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type OptionsResponse struct {
	Methods   []OptionItem `json:"methods"`
	Brands    []OptionItem `json:"brands"`
	Banks     []OptionItem `json:"banks"`
	Acquirers []OptionItem `json:"acquirers"`
}

// ─── Plans ───────────────────────────────────────────────────────────────────

// PlansFilter is bound from the query string of GET /v1/simulador/planes.
type PlansFilter struct {
	Brand    string `form:"brand" validate:"required"`
	Method   string `form:"method"`
	Bank     string `form:"bank"`
	Acquirer string `form:"acquirer"`
	Tasa1    bool   `form:"tasa1"`
	Query    string `form:"q"`
}

type PlanItem struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Label string `json:"label"`
	Fees  *int   `json:"fees"`
	Coef  string `json:"coef"`
}

// ─── Simulation ──────────────────────────────────────────────────────────────

type SimulateLineRequest struct {
	Amount       decimal.Decimal `json:"amount"        validate:"required"`
	MethodCode   string          `json:"method_code"   validate:"required"`
	Brand        string          `json:"brand"`
	BankCode     string          `json:"bank_code"`
	AcquirerCode string          `json:"acquirer_code"`
	PlanID       string          `json:"plan_id"`
}

type SimulateRequest struct {
	Tasa1 bool                  `json:"tasa1"`
	Lines []SimulateLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type CartAmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}
