package pdf

import (
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posfront/internal/cart"
	"posfront/internal/model"
)

func TestTruncateNameRuneBoundaries(t *testing.T) {
	long := strings.Repeat("ñ", 50)
	got := truncateName(long, 38)

	assert.True(t, utf8.ValidString(got), "truncation must never split a rune")
	assert.Equal(t, 38, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))

	short := "Cemento Portland x 50kg"
	assert.Equal(t, short, truncateName(short, 38))
}

func TestGenerateQuotePDFWritesFile(t *testing.T) {
	snapshot := model.CartSnapshot{
		Lines: []model.CartLine{
			{
				LineID: "l1", ProductID: "p1",
				Name:     "Adhesivo para cerámica súper reforzado bolsa 30kg",
				Price:    decimal.NewFromInt(100),
				IVA:      decimal.NewFromInt(21),
				Quantity: decimal.NewFromInt(2),
			},
		},
		Client: &model.Client{Name: "María Gómez", Document: "27-11111111-3"},
		Note:   "Retira en sucursal",
	}
	totals := cart.CalculateCartTotals(snapshot)

	file, err := GenerateQuotePDF(snapshot, totals, t.TempDir())
	require.NoError(t, err)

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Contains(t, file, "presupuesto_")
}
