package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"posfront/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func lineWith(price, qty, iva string, discount *model.LineDiscount) model.CartLine {
	return model.CartLine{
		LineID:   "l1",
		Price:    dec(price),
		IVA:      dec(iva),
		Quantity: dec(qty),
		Multiple: decimal.NewFromInt(1),
		Discount: discount,
	}
}

func TestCalculateLineTotalsPercent(t *testing.T) {
	lt := CalculateLineTotals(lineWith("100", "3", "21", &model.LineDiscount{Type: model.DiscountPercent, Value: dec("5")}))

	assert.True(t, lt.Gross.Equal(dec("300")))
	assert.True(t, lt.Discount.Equal(dec("15")))
	assert.True(t, lt.Net.Equal(dec("285")))
	assert.True(t, lt.Tax.Equal(dec("59.85")))
	assert.True(t, lt.Total.Equal(dec("344.85")))
}

func TestCalculateLineTotalsPercentClamped(t *testing.T) {
	over := CalculateLineTotals(lineWith("100", "1", "0", &model.LineDiscount{Type: model.DiscountPercent, Value: dec("150")}))
	assert.True(t, over.Net.IsZero(), "percent above 100 clamps to the full gross")

	negative := CalculateLineTotals(lineWith("100", "1", "0", &model.LineDiscount{Type: model.DiscountPercent, Value: dec("-10")}))
	assert.True(t, negative.Discount.IsZero(), "negative percent clamps to zero")
}

func TestCalculateLineTotalsAmountClampedToGross(t *testing.T) {
	lt := CalculateLineTotals(lineWith("50", "1", "21", &model.LineDiscount{Type: model.DiscountAmount, Value: dec("80")}))

	assert.True(t, lt.Discount.Equal(dec("50")))
	assert.True(t, lt.Net.IsZero())
	assert.True(t, lt.Tax.IsZero())
}

func TestCalculateCartTotalsFullScenario(t *testing.T) {
	snapshot := model.CartSnapshot{
		Lines: []model.CartLine{
			{
				LineID: "a", Price: dec("120"), Quantity: dec("3"), IVA: dec("21"),
				Multiple: decimal.NewFromInt(1),
				Discount: &model.LineDiscount{Type: model.DiscountPercent, Value: dec("5")},
			},
			{
				LineID: "b", Price: dec("80"), Quantity: dec("2"), IVA: dec("10"),
				Multiple: decimal.NewFromInt(1),
			},
		},
		GlobalDiscountPercent: dec("10"),
		GlobalDiscountAmount:  dec("50"),
		Logistics:             model.Logistics{Mode: model.LogisticsDelivery, Cost: dec("250")},
	}

	totals := CalculateCartTotals(snapshot)

	assert.True(t, totals.Subtotal.Equal(dec("520")), "subtotal: %s", totals.Subtotal)
	assert.True(t, totals.LineDiscounts.Equal(dec("18")), "line discounts: %s", totals.LineDiscounts)
	// 10% of 502 = 50.20, plus the 50 manual amount under the remaining headroom.
	assert.True(t, totals.GlobalDiscounts.Equal(dec("100.2")), "global discounts: %s", totals.GlobalDiscounts)
	assert.True(t, totals.Tax.Equal(dec("87.82")), "tax: %s", totals.Tax)
	assert.True(t, totals.LogisticsCost.Equal(dec("250")))
	assert.True(t, totals.Total.Equal(dec("739.62")), "total: %s", totals.Total)
	assert.True(t, totals.Units.Equal(dec("5")))
}

func TestCalculateCartTotalsAmountCappedByHeadroomAfterPercent(t *testing.T) {
	snapshot := model.CartSnapshot{
		Lines: []model.CartLine{
			{LineID: "a", Price: dec("100"), Quantity: dec("1"), Multiple: decimal.NewFromInt(1)},
		},
		GlobalDiscountPercent: dec("90"),
		GlobalDiscountAmount:  dec("50"),
	}

	totals := CalculateCartTotals(snapshot)

	// 90 from the percent leaves 10 of headroom; the manual 50 caps there.
	assert.True(t, totals.GlobalDiscounts.Equal(dec("100")), "global discounts: %s", totals.GlobalDiscounts)
	assert.True(t, totals.Total.IsZero())
}

func TestCalculateCartTotalsNeverNegative(t *testing.T) {
	snapshot := model.CartSnapshot{
		Lines: []model.CartLine{
			{LineID: "a", Price: dec("10"), Quantity: dec("1"), Multiple: decimal.NewFromInt(1)},
		},
		GlobalDiscountPercent: dec("100"),
		GlobalDiscountAmount:  dec("999"),
	}

	totals := CalculateCartTotals(snapshot)
	assert.True(t, totals.GlobalDiscounts.Equal(dec("10")))
	assert.False(t, totals.Total.IsNegative())
}

func TestCalculateCartTotalsLogistics(t *testing.T) {
	snapshot := model.CartSnapshot{
		Lines: []model.CartLine{
			{LineID: "a", Price: dec("100"), Quantity: dec("1"), Multiple: decimal.NewFromInt(1)},
		},
		Logistics: model.Logistics{Mode: model.LogisticsDelivery, Cost: dec("12.5")},
	}

	totals := CalculateCartTotals(snapshot)
	assert.True(t, totals.LogisticsCost.Equal(dec("12.5")))
	assert.True(t, totals.Total.Equal(dec("112.5")))
}

func TestCalculateCartTotalsDeterministic(t *testing.T) {
	snapshot := model.CartSnapshot{
		Lines: []model.CartLine{
			{LineID: "a", Price: dec("33.33"), Quantity: dec("3"), IVA: dec("21"), Multiple: decimal.NewFromInt(1)},
		},
		GlobalDiscountPercent: dec("7.5"),
	}

	first := CalculateCartTotals(snapshot)
	second := CalculateCartTotals(snapshot)
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.GlobalDiscounts.Equal(second.GlobalDiscounts))
}

func TestEnsureMultiple(t *testing.T) {
	cases := []struct {
		quantity string
		multiple string
		want     string
	}{
		{"5", "2", "4"},     // banker's rounding on the step count
		{"7", "2", "8"},     // 3.5 steps rounds to 4
		{"0.4", "1", "1"},   // never below one multiple
		{"0", "5", "5"},     // zero forces one multiple
		{"-3", "2", "2"},    // negative forces one multiple
		{"6", "2", "6"},     // exact multiples pass through
		{"1.25", "0.5", "1"}, // 2.5 steps rounds to the even 2

	}
	for _, tc := range cases {
		got := EnsureMultiple(dec(tc.quantity), dec(tc.multiple))
		assert.True(t, got.Equal(dec(tc.want)), "ensureMultiple(%s, %s) = %s, want %s", tc.quantity, tc.multiple, got, tc.want)
	}

	// A non-positive multiple disables snapping entirely.
	assert.True(t, EnsureMultiple(dec("3.7"), decimal.Zero).Equal(dec("3.7")))
}
