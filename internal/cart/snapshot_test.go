package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posfront/internal/model"
)

func TestDeserializeSnapshotCanonical(t *testing.T) {
	data := []byte(`{
		"lines": [
			{"lineId": "l1", "productId": "p1", "name": "Taladro", "price": 100, "iva": 21, "quantity": 2, "multiple": 1}
		],
		"client": {"id": "c1", "name": "Juan Perez"},
		"logistics": {"mode": "delivery", "address": "Av. Siempreviva 742", "cost": 500},
		"globalDiscountPercent": 5,
		"globalDiscountAmount": 0,
		"note": "entregar por la tarde"
	}`)

	snapshot, converted := DeserializeSnapshot(data)
	require.NotNil(t, snapshot)
	assert.False(t, converted)

	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, "p1", snapshot.Lines[0].ProductID)
	assert.True(t, snapshot.Lines[0].Price.Equal(dec("100")))
	require.NotNil(t, snapshot.Client)
	assert.Equal(t, "Juan Perez", snapshot.Client.Name)
	assert.Equal(t, model.LogisticsDelivery, snapshot.Logistics.Mode)
	assert.True(t, snapshot.GlobalDiscountPercent.Equal(dec("5")))
	assert.Equal(t, "entregar por la tarde", snapshot.Note)
}

func TestDeserializeSnapshotLegacySchema(t *testing.T) {
	data := []byte(`{
		"items": [
			{"id": "p9", "nombre": "Cemento x50kg", "precio": "1.250,00", "cantidad": 0, "multiplo": 0, "unidad": "Bolsa"}
		],
		"descPorcentaje": 10,
		"descMonto": "100",
		"logistica": {"tipo": "envio", "direccion": "Calle Falsa 123", "costo": 800, "fecha": "2025-10-01", "obs": "timbre roto"},
		"cliente": {"numero_cliente": "c7", "nombre_cliente": "Maria Gomez"}
	}`)

	snapshot, converted := DeserializeSnapshot(data)
	require.NotNil(t, snapshot)
	assert.True(t, converted, "legacy root keys must flag conversion")

	require.Len(t, snapshot.Lines, 1)
	line := snapshot.Lines[0]
	assert.Equal(t, "p9", line.ProductID)
	assert.Equal(t, "Cemento x50kg", line.Name)
	assert.True(t, line.Price.Equal(dec("1250")), "price: %s", line.Price)
	assert.True(t, line.Quantity.Equal(dec("1")), "zero quantity defaults to one")
	assert.True(t, line.Multiple.Equal(dec("1")), "zero multiple defaults to one")
	assert.Equal(t, "Bolsa", line.Unit)
	assert.NotEmpty(t, line.LineID, "a missing lineId gets generated")

	assert.True(t, snapshot.GlobalDiscountPercent.Equal(dec("10")))
	assert.True(t, snapshot.GlobalDiscountAmount.Equal(dec("100")))

	assert.Equal(t, model.LogisticsDelivery, snapshot.Logistics.Mode)
	assert.Equal(t, "Calle Falsa 123", snapshot.Logistics.Address)
	assert.True(t, snapshot.Logistics.Cost.Equal(dec("800")))
	assert.Equal(t, "timbre roto", snapshot.Logistics.Notes)

	require.NotNil(t, snapshot.Client)
	assert.Equal(t, "c7", snapshot.Client.ID)
	assert.Equal(t, "Maria Gomez", snapshot.Client.Name)
}

func TestDeserializeSnapshotLegacyPickup(t *testing.T) {
	data := []byte(`{"items": [], "logistica": {"tipo": "retiro", "sucursal": "S01"}}`)

	snapshot, converted := DeserializeSnapshot(data)
	require.NotNil(t, snapshot)
	assert.True(t, converted)
	assert.Equal(t, model.LogisticsPickup, snapshot.Logistics.Mode)
	assert.Equal(t, "S01", snapshot.Logistics.StoreID)
}

func TestDeserializeSnapshotSkipsUnusableLines(t *testing.T) {
	data := []byte(`{
		"lines": [
			{"productId": "", "name": "sin id"},
			{"productId": "p1", "name": ""},
			{"productId": "p2", "name": "valida", "price": 10},
			"no soy un objeto"
		]
	}`)

	snapshot, _ := DeserializeSnapshot(data)
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, "p2", snapshot.Lines[0].ProductID)
}

func TestDeserializeSnapshotMalformed(t *testing.T) {
	for _, data := range [][]byte{
		[]byte(`no json`),
		[]byte(`[1,2,3]`),
		[]byte(`null`),
		nil,
	} {
		snapshot, converted := DeserializeSnapshot(data)
		assert.Nil(t, snapshot)
		assert.False(t, converted)
	}
}

func TestDeserializeSnapshotDiscountTypeValidation(t *testing.T) {
	data := []byte(`{
		"lines": [
			{"productId": "p1", "name": "a", "discount": {"type": "percent", "value": 5}},
			{"productId": "p2", "name": "b", "discount": {"type": "magia", "value": 5}}
		]
	}`)

	snapshot, _ := DeserializeSnapshot(data)
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Lines, 2)
	require.NotNil(t, snapshot.Lines[0].Discount)
	assert.Equal(t, model.DiscountPercent, snapshot.Lines[0].Discount.Type)
	assert.Nil(t, snapshot.Lines[1].Discount, "unknown discount types are dropped")
}
