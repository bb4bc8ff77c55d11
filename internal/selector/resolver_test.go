package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posfront/internal/backend"
	"posfront/internal/masterdata"
	"posfront/internal/model"
)

type stubLoader struct{ payload *backend.BootPayload }

func (s *stubLoader) Boot(_ context.Context) (*backend.BootPayload, error) {
	return s.payload, nil
}

func buildIndex(t *testing.T, payload *backend.BootPayload) *masterdata.Index {
	t.Helper()
	idx := masterdata.New(&stubLoader{payload: payload})
	require.NoError(t, idx.Load(context.Background()))
	return idx
}

func basePayload() *backend.BootPayload {
	return &backend.BootPayload{
		Masters: &backend.MastersPayload{
			MasterData: model.MasterData{
				Methods: []model.Method{
					{Code: "TC", Name: "Tarjeta de Crédito", Function: "credit_card"},
					{Code: "EF", Name: "Efectivo", Function: "cash"},
				},
				Brands: []string{"Visa", "Mastercard", "Cabal"},
				Banks: []model.Bank{
					{Code: "B1", Name: "Banco Uno"},
					{Code: "B2", Name: "Banco Dos"},
				},
				Acquirers: []model.Acquirer{
					{Code: "A1", Name: "Prisma"},
					{Code: "A2", Name: "Fiserv"},
				},
			},
			BrandBanks:     map[string][]string{"visa": {"B1"}},
			BankBrands:     map[string][]string{"B1": {"visa", "mastercard"}},
			BrandAcquirers: map[string][]string{"visa": {"A1"}},
		},
		Plans: &backend.PlansPreload{
			Index: map[string]map[string]bool{
				"visa":       {"TC": true},
				"mastercard": {"EF": true},
			},
		},
	}
}

func TestFilterOrFallback(t *testing.T) {
	list := []string{"a", "b", "c"}

	kept := FilterOrFallback(list, func(s string) bool { return s != "b" })
	assert.Equal(t, []string{"a", "c"}, kept)

	// A filter that would empty the list is dropped entirely.
	all := FilterOrFallback(list, func(string) bool { return false })
	assert.Equal(t, list, all)
}

func TestBrandsAvailableMethodFilterSoftFails(t *testing.T) {
	idx := buildIndex(t, basePayload())

	// TC: visa indexes it, mastercard does not, cabal has no index at all.
	brands := BrandsAvailable(idx, Selection{Method: "TC"})
	assert.Equal(t, []string{"Visa", "Cabal"}, brands)

	// A method no indexed brand offers would empty the list; the filter is
	// dropped and every brand survives.
	payload := basePayload()
	payload.Plans.Index = map[string]map[string]bool{
		"visa":       {"TC": true},
		"mastercard": {"TC": true},
		"cabal":      {"TC": true},
	}
	idx = buildIndex(t, payload)
	brands = BrandsAvailable(idx, Selection{Method: "EF"})
	assert.Equal(t, []string{"Visa", "Mastercard", "Cabal"}, brands)
}

func TestBrandsAvailableBankIntersectsHard(t *testing.T) {
	idx := buildIndex(t, basePayload())

	brands := BrandsAvailable(idx, Selection{Bank: "B1"})
	assert.Equal(t, []string{"Visa", "Mastercard"}, brands)

	// A bank with no compatibility data does not constrain.
	brands = BrandsAvailable(idx, Selection{Bank: "B2"})
	assert.Equal(t, []string{"Visa", "Mastercard", "Cabal"}, brands)
}

func TestBrandsAvailableBankAndMethodCombine(t *testing.T) {
	idx := buildIndex(t, basePayload())

	// Bank narrows to {Visa, Mastercard}; method TC keeps only Visa.
	brands := BrandsAvailable(idx, Selection{Bank: "B1", Method: "TC"})
	assert.Equal(t, []string{"Visa"}, brands)
}

func TestBanksAvailable(t *testing.T) {
	idx := buildIndex(t, basePayload())

	banks := BanksAvailable(idx, Selection{Brand: "Visa"})
	require.Len(t, banks, 1)
	assert.Equal(t, "B1", banks[0].Code)

	// Mastercard carries no bank restriction: every bank is allowed.
	banks = BanksAvailable(idx, Selection{Brand: "Mastercard"})
	assert.Len(t, banks, 2)

	banks = BanksAvailable(idx, Selection{})
	assert.Len(t, banks, 2)
}

func TestAcquirersAvailable(t *testing.T) {
	idx := buildIndex(t, basePayload())

	acquirers := AcquirersAvailable(idx, Selection{Brand: "visa"})
	require.Len(t, acquirers, 1)
	assert.Equal(t, "A1", acquirers[0].Code)

	acquirers = AcquirersAvailable(idx, Selection{Brand: "Cabal"})
	assert.Len(t, acquirers, 2)
}

func TestMethodsAvailableOnlyCards(t *testing.T) {
	idx := buildIndex(t, basePayload())

	all := MethodsAvailable(idx, false)
	assert.Len(t, all, 2)

	cards := MethodsAvailable(idx, true)
	require.Len(t, cards, 1)
	assert.Equal(t, "TC", cards[0].Code)
}
