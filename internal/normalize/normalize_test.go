package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"posfront/internal/model"
)

func modelPlanWithBrand(brand string) model.Plan {
	return model.Plan{Brand: brand}
}

func TestTextStripsDiacriticsAndCase(t *testing.T) {
	assert.Equal(t, "credito", Text("Crédito"))
	assert.Equal(t, "debito automatico", Text("DÉBITO AUTOMÁTICO"))
	assert.Equal(t, "nino", Text("Niño"))
	assert.Equal(t, "", Text(""))
}

func TestKeyTrimsAndFolds(t *testing.T) {
	assert.Equal(t, "visa", Key("  Visa "))
	assert.Equal(t, "visa", Key("VISA"))
	// Key does NOT strip diacritics: brand keys fold case only.
	assert.Equal(t, "américan", Key("AMÉRICAN"))
}

func TestStringProbesInOrder(t *testing.T) {
	raw := map[string]any{"nombre": "  Martillo ", "name": "Hammer"}
	assert.Equal(t, "Hammer", String(raw, "x", "name", "nombre"))
	assert.Equal(t, "Martillo", String(raw, "x", "nombre", "name"))
	assert.Equal(t, "x", String(raw, "x", "missing"))
	// Empty strings do not win the probe.
	assert.Equal(t, "Hammer", String(map[string]any{"a": "  ", "name": "Hammer"}, "x", "a", "name"))
}

func TestNumberValuePermissiveParsing(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{float64(12.5), "12.5"},
		{"100", "100"},
		{"$ 1.250,00", "1250"},
		{"1,5", "1.5"},
		{"  42  ", "42"},
		{"-3,25", "-3.25"},
		{"no-numero", "0"},
		{nil, "0"},
		{true, "0"},
	}
	for _, tc := range cases {
		want, _ := decimal.NewFromString(tc.want)
		assert.True(t, NumberValue(tc.in).Equal(want), "NumberValue(%v) = %s, want %s", tc.in, NumberValue(tc.in), tc.want)
	}
}

func TestProductMapping(t *testing.T) {
	raw := map[string]any{
		"numero_producto":             "P-77",
		"nombre_producto":             "Ladrillo hueco",
		"precio_final_con_descuento":  "950,50",
		"unidad_medida":               "Un",
		"multiplo":                    float64(0),
		"total_disponible_venta":      float64(120),
		"grupo_cobertura":             "OBRA",
	}
	p := Product(raw)
	assert.Equal(t, "P-77", p.ID)
	assert.Equal(t, "Ladrillo hueco", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("950.5")))
	assert.True(t, p.Multiple.Equal(decimal.NewFromInt(1)), "non-positive multiple defaults to one")
	assert.True(t, p.IVA.Equal(decimal.NewFromInt(21)), "missing iva defaults to 21")
	assert.Equal(t, "OBRA", p.CoverageGroup)
}

func TestClientMappingLegacyAndModern(t *testing.T) {
	legacy := Client(map[string]any{
		"numero_cliente": "C-9",
		"nombre_cliente": "Maria Gomez",
		"nif":            "27-11111111-3",
	})
	assert.Equal(t, "C-9", legacy.ID)
	assert.Equal(t, "Maria Gomez", legacy.Name)
	assert.Equal(t, "27-11111111-3", legacy.Document)

	composed := Client(map[string]any{"nombre": "Juan", "apellido": "Perez"})
	assert.Equal(t, "Juan Perez", composed.Name)
}

func TestPlanMappingUsesDefaults(t *testing.T) {
	plan := Plan(map[string]any{"id": "p1", "coef": "1,10"}, modelPlanWithBrand("Visa"))
	assert.Equal(t, "p1", plan.ID)
	assert.Equal(t, "Visa", plan.Brand)
	assert.Equal(t, "1,10", plan.Coef)
	assert.Nil(t, plan.Fees)

	withFees := Plan(map[string]any{"id": "p2", "fees": float64(6)}, modelPlanWithBrand("Visa"))
	assert.NotNil(t, withFees.Fees)
	assert.Equal(t, 6, *withFees.Fees)
}
