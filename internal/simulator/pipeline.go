// Package simulator orchestrates payment-plan simulations: it serializes
// requests behind a monotonic sequence number so out-of-order backend
// responses can never overwrite newer state, and it builds the versioned
// selection envelope published on confirm.
package simulator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"posfront/internal/masterdata"
	"posfront/internal/model"
	"posfront/internal/plans"
	"posfront/internal/selector"
)

// Simulate is the backend call. *backend.Client satisfies it.
type Simulate interface {
	Simulate(ctx context.Context, payload model.SimulationPayload) (*model.SimulationResult, error)
}

// Line is one split of the cart amount with its payment selection.
type Line struct {
	Amount    decimal.Decimal
	Selection selector.Selection
	PlanID    string
}

// Pipeline holds the simulator session state. One instance per terminal
// session; all methods are safe for concurrent use.
type Pipeline struct {
	mu  sync.Mutex // held for state access only, never across the backend call
	idx *masterdata.Index
	sim Simulate

	source string

	seq        uint64
	cartAmount decimal.Decimal
	// pendingAmount buffers set_cart_amount messages that arrive before the
	// master data finished loading.
	pendingAmount *decimal.Decimal

	lastPayload *model.SimulationPayload
	lastLines   []Line
	lastResult  *model.SimulationResult
	lastError   string
}

func NewPipeline(idx *masterdata.Index, sim Simulate, source string) *Pipeline {
	return &Pipeline{idx: idx, sim: sim, source: source}
}

func (p *Pipeline) promotePendingLocked() {
	if p.pendingAmount != nil && p.idx.Ready() {
		p.cartAmount = *p.pendingAmount
		p.pendingAmount = nil
	}
}

// SetCartAmount drives the simulator's cart total, typically from an
// inbound set_cart_amount message. Negative amounts floor at zero. Amounts
// arriving before master data is ready are buffered and applied once it is.
func (p *Pipeline) SetCartAmount(amount decimal.Decimal) {
	if amount.Sign() < 0 {
		amount = decimal.Zero
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.idx.Ready() {
		p.pendingAmount = &amount
		return
	}
	p.promotePendingLocked()
	p.cartAmount = amount
}

// CartAmount returns the effective cart total.
func (p *Pipeline) CartAmount() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.promotePendingLocked()
	return p.cartAmount
}

// Run executes a simulation for the given lines. The lock is released for
// the duration of the backend call; when the response (or failure) comes
// back it is applied only if no newer request started in the meantime.
// Stale outcomes, success or failure alike, are discarded without touching
// state and reported as (nil, nil). A failure of the LATEST request clears
// the previous summary so a confirm can never ride on outdated numbers.
func (p *Pipeline) Run(ctx context.Context, tasa1 bool, lines []Line) (*model.SimulationResult, error) {
	p.mu.Lock()
	p.promotePendingLocked()
	p.seq++
	seq := p.seq
	payload := model.SimulationPayload{
		CartAmount: p.cartAmount,
		Tasa1:      tasa1,
		Lines:      toSimulationLines(lines),
	}
	p.mu.Unlock()

	result, err := p.sim.Simulate(ctx, payload)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		log.Debug().Uint64("seq", seq).Uint64("latest", p.seq).Msg("simulacion obsoleta descartada")
		return nil, nil
	}
	if err != nil {
		p.lastPayload = nil
		p.lastLines = nil
		p.lastResult = nil
		p.lastError = err.Error()
		return nil, err
	}
	p.lastPayload = &payload
	p.lastLines = append([]Line(nil), lines...)
	p.lastResult = result
	p.lastError = ""
	return result, nil
}

// Last returns the last applied payload and result, if any.
func (p *Pipeline) Last() (*model.SimulationPayload, *model.SimulationResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPayload, p.lastResult
}

// LastError returns the failure message of the latest request, empty after
// a success.
func (p *Pipeline) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastError
}

// CanConfirm reports whether the operator may confirm the selection: there
// is an applied result and the backend raised no mismatch warning.
func (p *Pipeline) CanConfirm() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastResult != nil && !p.lastResult.WarningMismatch
}

// BuildSelectionEnvelope materializes the outbound envelope from the last
// applied simulation. Returns nil when either the payload or the result is
// missing; consumers treat nil as "nothing to publish".
func (p *Pipeline) BuildSelectionEnvelope() *model.SelectionEnvelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastPayload == nil || p.lastResult == nil {
		return nil
	}

	envLines := make([]model.EnvelopeLine, 0, len(p.lastLines))
	for i, line := range p.lastLines {
		env := model.EnvelopeLine{
			MethodCode:    line.Selection.Method,
			MethodLabel:   p.methodLabel(line.Selection.Method),
			Brand:         line.Selection.Brand,
			BrandLabel:    line.Selection.Brand,
			Bank:          line.Selection.Bank,
			BankLabel:     p.bankLabel(line.Selection.Bank),
			Acquirer:      line.Selection.Acquirer,
			AcquirerLabel: p.acquirerLabel(line.Selection.Acquirer),
			PlanID:        line.PlanID,
			AmountBase:    line.Amount,
		}
		if plan, ok := p.idx.PlanByID(line.PlanID); ok {
			env.PlanLabel = plans.Label(plan)
			if plan.Fees != nil {
				fees := *plan.Fees
				env.Installments = &fees
			}
			if coef, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(plan.Coef), ",", ".")); err == nil {
				env.Coef = &coef
			}
		}
		if i < len(p.lastResult.Lines) {
			rl := p.lastResult.Lines[i]
			env.AmountFinal = &rl.AmountFinal
			env.VATLine = &rl.VATLine
			env.DiscountsAmount = &rl.DiscountsAmount
			env.NetAfterDiscounts = &rl.NetAfterDiscounts
			env.InterestPct = &rl.InterestPct
		}
		envLines = append(envLines, env)
	}

	cartAmount := p.lastPayload.CartAmount
	remaining := cartAmount.Sub(p.lastResult.SumLines)
	change := decimal.Zero
	if remaining.Sign() < 0 {
		change = remaining.Neg()
		remaining = decimal.Zero
	}

	return &model.SelectionEnvelope{
		Type:       model.EnvelopeType,
		Version:    model.EnvelopeVersion,
		Source:     p.source,
		CartAmount: cartAmount,
		Tasa1:      p.lastPayload.Tasa1,
		Lines:      envLines,
		Totals: model.EnvelopeTotals{
			SubtotalBase:  p.lastResult.SumLines,
			TotalInterest: p.lastResult.Interests,
			TotalToCharge: p.lastResult.Total,
			Remaining:     remaining,
			ChangeAmount:  change,
		},
		Raw:       model.EnvelopeRaw{Payload: p.lastPayload, Response: p.lastResult},
		Timestamp: time.Now().UnixMilli(),
	}
}

func (p *Pipeline) methodLabel(code string) string {
	if method, ok := p.idx.MethodByCode(code); ok && method.Name != "" {
		return method.Name
	}
	return code
}

func (p *Pipeline) bankLabel(code string) string {
	code = strings.TrimSpace(code)
	for _, bank := range p.idx.Masters().Banks {
		if strings.TrimSpace(bank.Code) == code && bank.Name != "" {
			return bank.Name
		}
	}
	return code
}

func (p *Pipeline) acquirerLabel(code string) string {
	code = strings.TrimSpace(code)
	for _, acq := range p.idx.Masters().Acquirers {
		if strings.TrimSpace(acq.Code) == code && acq.Name != "" {
			return acq.Name
		}
	}
	return code
}

func toSimulationLines(lines []Line) []model.SimulationLine {
	out := make([]model.SimulationLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, model.SimulationLine{
			Amount:       line.Amount,
			MethodCode:   line.Selection.Method,
			Brand:        line.Selection.Brand,
			BankCode:     line.Selection.Bank,
			AcquirerCode: line.Selection.Acquirer,
			PlanID:       line.PlanID,
		})
	}
	return out
}
