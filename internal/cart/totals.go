// Package cart implements the cart totals engine: pure monetary math from a
// cart snapshot to a totals object, snapshot (de)serialization including the
// legacy schema, and the single-writer cart store.
package cart

import (
	"github.com/shopspring/decimal"

	"posfront/internal/model"
)

var hundred = decimal.NewFromInt(100)

func clamp(value, min, max decimal.Decimal) decimal.Decimal {
	if value.LessThan(min) {
		return min
	}
	if value.GreaterThan(max) {
		return max
	}
	return value
}

func floorZero(value decimal.Decimal) decimal.Decimal {
	if value.Sign() < 0 {
		return decimal.Zero
	}
	return value
}

// CalculateLineTotals computes the per-line breakdown. Every intermediate
// value is rounded to 2 decimals before the next step — the order is part
// of the contract, it decides cent-level output.
//
//	gross    = price × quantity
//	discount = percent: gross × clamp(v,0,100)/100 | amount: clamp(v, 0, gross)
//	net      = max(0, gross − discount)
//	tax      = net × iva/100
//	total    = net + tax
func CalculateLineTotals(line model.CartLine) model.LineTotals {
	gross := line.Price.Mul(line.Quantity).Round(2)

	discount := decimal.Zero
	if line.Discount != nil {
		switch line.Discount.Type {
		case model.DiscountPercent:
			pct := clamp(line.Discount.Value, decimal.Zero, hundred)
			discount = gross.Mul(pct).Div(hundred).Round(2)
		case model.DiscountAmount:
			discount = clamp(line.Discount.Value, decimal.Zero, gross).Round(2)
		}
	}

	net := floorZero(gross.Sub(discount).Round(2))
	tax := net.Mul(line.IVA).Div(hundred).Round(2)
	total := net.Add(tax).Round(2)

	return model.LineTotals{Gross: gross, Discount: discount, Net: net, Tax: tax, Total: total}
}

// globalDiscount splits the cart-level discount into its percent and manual
// amount components over the post-line-discount base. The manual amount is
// capped by the headroom left AFTER the percent component — not by the raw
// subtotal — so the combined discount can never push the base negative.
func globalDiscount(base, percent, amount decimal.Decimal) decimal.Decimal {
	safePercent := clamp(percent, decimal.Zero, hundred)
	percentAmount := decimal.Zero
	if safePercent.Sign() > 0 {
		percentAmount = base.Mul(safePercent).Div(hundred).Round(2)
	}
	maxAmount := floorZero(base.Sub(percentAmount))
	manualAmount := decimal.Zero
	if amount.Sign() > 0 {
		manualAmount = decimal.Min(amount, maxAmount).Round(2)
	}
	return percentAmount.Add(manualAmount).Round(2)
}

// CalculateCartTotals derives the full totals object from a snapshot. Pure:
// the same snapshot always yields the same totals.
func CalculateCartTotals(snapshot model.CartSnapshot) model.CartTotals {
	subtotal := decimal.Zero
	lineDiscounts := decimal.Zero
	tax := decimal.Zero
	units := decimal.Zero
	weight := decimal.Zero

	for _, line := range snapshot.Lines {
		lt := CalculateLineTotals(line)
		subtotal = subtotal.Add(lt.Gross)
		lineDiscounts = lineDiscounts.Add(lt.Discount)
		tax = tax.Add(lt.Tax)
		units = units.Add(line.Quantity)
		weight = weight.Add(line.WeightKg.Mul(line.Quantity))
	}
	subtotal = subtotal.Round(2)
	lineDiscounts = lineDiscounts.Round(2)
	tax = tax.Round(2)

	netAfterLineDiscounts := floorZero(subtotal.Sub(lineDiscounts))
	globalDiscounts := globalDiscount(netAfterLineDiscounts, snapshot.GlobalDiscountPercent, snapshot.GlobalDiscountAmount)
	logisticsCost := snapshot.Logistics.Cost.Round(2)

	totalBeforeLogistics := floorZero(netAfterLineDiscounts.Sub(globalDiscounts).Add(tax))
	total := floorZero(totalBeforeLogistics.Add(logisticsCost).Round(2))

	return model.CartTotals{
		Subtotal:        subtotal,
		LineDiscounts:   lineDiscounts,
		GlobalDiscounts: globalDiscounts,
		LogisticsCost:   logisticsCost,
		Tax:             tax,
		Total:           total,
		Units:           units.Round(3),
		WeightKg:        weight.Round(3),
	}
}

// EnsureMultiple snaps a requested quantity to the nearest integer multiple
// of the line's multiple, using banker's rounding on the step count (so a
// request of 5 with multiple 2 lands on 4, not 6). A zero or negative
// result is forced up to exactly one multiple — quantities are never zero
// or negative. The result carries at most 4 decimals.
func EnsureMultiple(quantity, multiple decimal.Decimal) decimal.Decimal {
	if multiple.Sign() <= 0 {
		return quantity
	}
	steps := quantity.Div(multiple).RoundBank(0)
	result := steps.Mul(multiple)
	if result.Sign() <= 0 {
		return multiple
	}
	return result.Round(4)
}
