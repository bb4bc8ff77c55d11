package model

import (
	"github.com/shopspring/decimal"
)

// SimulationLine is the per-line request shape for POST /simulate. Optional
// dimensions travel as empty strings, matching the backend contract.
type SimulationLine struct {
	Amount       decimal.Decimal `json:"amount"`
	MethodCode   string          `json:"method_code"`
	Brand        string          `json:"brand"`
	BankCode     string          `json:"bank_code"`
	AcquirerCode string          `json:"acquirer_code"`
	PlanID       string          `json:"plan_id"`
}

// SimulationPayload is the full simulate request body.
type SimulationPayload struct {
	CartAmount decimal.Decimal  `json:"cart_amount"`
	Tasa1      bool             `json:"tasa1"`
	Lines      []SimulationLine `json:"lines"`
}

// SimulationResultLine is the backend's per-line breakdown.
type SimulationResultLine struct {
	DiscountsAmount   decimal.Decimal `json:"discounts_amount"`
	NetAfterDiscounts decimal.Decimal `json:"net_after_discounts"`
	VATLine           decimal.Decimal `json:"vat_line"`
	AmountFinal       decimal.Decimal `json:"amount_final"`
	CoefApplied       decimal.Decimal `json:"coef_applied"`
	InterestPct       decimal.Decimal `json:"interest_pct"`
}

// SimulationResult is the simulate response. WarningMismatch is set by the
// backend when the line sum does not reconcile with the cart total within
// tolerance; it gates the confirm action.
type SimulationResult struct {
	Lines           []SimulationResultLine `json:"lines"`
	SumLines        decimal.Decimal        `json:"sum_lines"`
	TotalDiscounts  decimal.Decimal        `json:"total_discounts"`
	BaseImponible   decimal.Decimal        `json:"base_imponible"`
	VAT             decimal.Decimal        `json:"vat"`
	Interests       decimal.Decimal        `json:"interests"`
	Total           decimal.Decimal        `json:"total"`
	WarningMismatch bool                   `json:"warning_mismatch"`
}

// EnvelopeType tags outbound payment-selection envelopes; consumers filter
// on it both in the pub/sub channel and the local event bus.
const EnvelopeType = "simulator:payment-selection"

// EnvelopeVersion is the schema version of the selection envelope.
const EnvelopeVersion = "2025-09-17"

// InboundCartAmountType drives the simulator's cart total from outside.
const InboundCartAmountType = "set_cart_amount"

// EnvelopeLine is a resolved (labelled) selection line for external
// consumers; monetary fields come from the last applied simulation.
type EnvelopeLine struct {
	MethodCode        string           `json:"method_code"`
	MethodLabel       string           `json:"method_label"`
	Brand             string           `json:"brand"`
	BrandLabel        string           `json:"brand_label"`
	Bank              string           `json:"bank"`
	BankLabel         string           `json:"bank_label"`
	Acquirer          string           `json:"acquirer"`
	AcquirerLabel     string           `json:"acquirer_label"`
	PlanID            string           `json:"plan_id"`
	PlanLabel         string           `json:"plan_label"`
	Installments      *int             `json:"installments"`
	Coef              *decimal.Decimal `json:"coef"`
	AmountBase        decimal.Decimal  `json:"amount_base"`
	AmountFinal       *decimal.Decimal `json:"amount_final"`
	VATLine           *decimal.Decimal `json:"vat_line"`
	DiscountsAmount   *decimal.Decimal `json:"discounts_amount"`
	NetAfterDiscounts *decimal.Decimal `json:"net_after_discounts"`
	InterestPct       *decimal.Decimal `json:"interest_pct"`
}

// EnvelopeTotals summarizes the simulation for the receiving POS.
type EnvelopeTotals struct {
	SubtotalBase  decimal.Decimal `json:"subtotal_base"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalToCharge decimal.Decimal `json:"total_to_charge"`
	Remaining     decimal.Decimal `json:"remaining"`
	ChangeAmount  decimal.Decimal `json:"change_amount"`
}

// EnvelopeRaw carries the originating payload and raw response for audit.
type EnvelopeRaw struct {
	Payload  *SimulationPayload `json:"payload"`
	Response *SimulationResult  `json:"response"`
}

// SelectionEnvelope is the versioned message published when the operator
// confirms a payment selection.
type SelectionEnvelope struct {
	Type       string          `json:"type"`
	Version    string          `json:"version"`
	Source     string          `json:"source"`
	CartAmount decimal.Decimal `json:"cart_amount"`
	Tasa1      bool            `json:"tasa1"`
	Lines      []EnvelopeLine  `json:"lines"`
	Totals     EnvelopeTotals  `json:"totals"`
	Raw        EnvelopeRaw     `json:"raw"`
	Timestamp  int64           `json:"timestamp"` // unix milliseconds
}
