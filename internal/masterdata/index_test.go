package masterdata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posfront/internal/backend"
	"posfront/internal/model"
)

// ── Stub loader ───────────────────────────────────────────────────────────────

type stubLoader struct {
	payload *backend.BootPayload
	err     error
}

func (s *stubLoader) Boot(_ context.Context) (*backend.BootPayload, error) {
	return s.payload, s.err
}

func testPayload() *backend.BootPayload {
	return &backend.BootPayload{
		Masters: &backend.MastersPayload{
			MasterData: model.MasterData{
				Methods: []model.Method{
					{Code: "TC", Name: "Tarjeta de Crédito", Function: "credit_card"},
					{Code: "EF", Name: "Efectivo", Function: "cash"},
					{Code: "TD", Name: "Débito", Function: ""},
				},
				Brands: []string{"Visa", "Mastercard", "Cabal"},
				Banks: []model.Bank{
					{Code: "01", Name: "Banco Nación"},
					{Code: "1", Name: "Banco Uno"},
				},
				Acquirers: []model.Acquirer{{Code: "PRISMA", Name: "Prisma"}},
				VATRate:   "0.21",
			},
			BrandBanks: map[string][]string{"  Visa ": {"01"}},
			BankBrands: map[string][]string{"01": {"VISA"}},
		},
		Plans: &backend.PlansPreload{
			Index: map[string]map[string]bool{
				"visa": {"TC": true, "EF": false},
			},
			Rates: map[string]map[string]any{
				"plan-1": {"id": "plan-1", "code": "C3", "name": "3 cuotas", "brand": "Visa", "coef": "1.10", "fees": 3},
			},
		},
	}
}

func loadedIndex(t *testing.T) *Index {
	t.Helper()
	idx := New(&stubLoader{payload: testPayload()})
	require.NoError(t, idx.Load(context.Background()))
	return idx
}

func TestLoadPropagatesBootError(t *testing.T) {
	idx := New(&stubLoader{err: errors.New("backend caido")})
	assert.Error(t, idx.Load(context.Background()))
	assert.False(t, idx.Ready())
}

func TestBrandKeysAreCaseInsensitiveButBankCodesAreNot(t *testing.T) {
	idx := loadedIndex(t)

	// Brand keys normalize: "  Visa " and "VISA" collapse to one brand.
	assert.True(t, idx.BrandCompatibleWithBank("01", "visa"))
	assert.True(t, idx.BrandCompatibleWithBank("01", "  VISA  "))

	// Bank codes compare verbatim after trimming: "01" and "1" are two banks.
	assert.False(t, idx.BrandCompatibleWithBank("1", "visa"))
	allowed, constrained := idx.BankAllowedForBrand("Visa", "1")
	assert.True(t, constrained)
	assert.False(t, allowed)
}

func TestIsCardMethod(t *testing.T) {
	idx := loadedIndex(t)

	assert.True(t, idx.IsCardMethod("TC"), "function mentions card")
	assert.True(t, idx.IsCardMethod("TD"), "name mentions débito, matched without the accent")
	assert.False(t, idx.IsCardMethod("EF"))
	assert.False(t, idx.IsCardMethod("NOEXISTE"))
}

func TestBrandAllowsMethod(t *testing.T) {
	idx := loadedIndex(t)

	assert.True(t, idx.BrandAllowsMethod("Visa", "TC"))
	assert.False(t, idx.BrandAllowsMethod("Visa", "EF"), "disabled entries are not indexed")
	// A brand without a plans index entry never gets excluded.
	assert.True(t, idx.BrandAllowsMethod("Cabal", "EF"))
}

func TestVATRateParsing(t *testing.T) {
	payload := testPayload()
	payload.Masters.VATRate = "0.105"
	idx := New(&stubLoader{payload: payload})
	require.NoError(t, idx.Load(context.Background()))
	assert.InDelta(t, 0.105, idx.VATRate(), 1e-9)

	for _, invalid := range []string{"", "no-number", "1.5", "-0.1"} {
		payload := testPayload()
		payload.Masters.VATRate = invalid
		idx := New(&stubLoader{payload: payload})
		require.NoError(t, idx.Load(context.Background()))
		assert.InDelta(t, DefaultVATRate, idx.VATRate(), 1e-9, "vat %q falls back to default", invalid)
	}
}

func TestPlansPreloadIndexed(t *testing.T) {
	idx := loadedIndex(t)

	plan, ok := idx.PlanByID("plan-1")
	require.True(t, ok)
	assert.Equal(t, "C3", plan.Code)
	require.NotNil(t, plan.Fees)
	assert.Equal(t, 3, *plan.Fees)

	cached, hit := idx.CachedPlans("VISA")
	require.True(t, hit, "preloaded rates warm the per-brand cache")
	assert.Len(t, cached, 1)
}

func TestTrackPlanExtendsIndices(t *testing.T) {
	idx := loadedIndex(t)

	idx.TrackPlan(model.Plan{ID: "plan-2", Brand: "Mastercard", Method: "TC", Bank: "99"})

	assert.True(t, idx.BrandAllowsMethod("mastercard", "TC"))
	assert.True(t, idx.BrandCompatibleWithBank("99", "Mastercard"))
}

func TestReloadReplacesState(t *testing.T) {
	idx := loadedIndex(t)

	payload := testPayload()
	payload.Masters.Brands = []string{"Amex"}
	payload.Plans = nil
	idx.loader = &stubLoader{payload: payload}

	require.NoError(t, idx.Load(context.Background()))
	masters := idx.Masters()
	assert.Equal(t, []string{"Amex"}, masters.Brands)
	_, ok := idx.PlanByID("plan-1")
	assert.False(t, ok, "reload discards previously indexed plans")
}
