package cart

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"posfront/internal/model"
	"posfront/internal/normalize"
)

// Legacy root keys mark a pre-rewrite snapshot that must be converted to
// the canonical schema.
var legacyRootKeys = []string{"items", "descPorcentaje", "descMonto", "logistica", "cliente"}

// DeserializeSnapshot decodes a persisted or remote cart snapshot. It
// accepts the canonical schema and the legacy schema (items/descPorcentaje/
// descMonto/logistica/cliente). converted reports whether legacy-shaped
// data was encountered, so the caller can re-persist canonically.
// Malformed input yields (nil, false) — never a panic or an error.
func DeserializeSnapshot(data []byte) (*model.CartSnapshot, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, false
	}
	return deserializeMap(raw)
}

func deserializeMap(raw map[string]any) (*model.CartSnapshot, bool) {
	converted := false
	for _, key := range legacyRootKeys {
		if _, ok := raw[key]; ok {
			converted = true
			break
		}
	}

	snapshot := model.CartSnapshot{
		Lines:                 deserializeLines(raw),
		Client:                deserializeClient(raw),
		Logistics:             deserializeLogistics(raw),
		GlobalDiscountPercent: normalize.Number(raw, "globalDiscountPercent", "descPorcentaje"),
		GlobalDiscountAmount:  normalize.Number(raw, "globalDiscountAmount", "descMonto"),
		Note:                  normalize.String(raw, "", "note", "nota"),
		Payments:              deserializePayments(raw),
		UpdatedAt:             normalize.String(raw, "", "updatedAt"),
	}
	return &snapshot, converted
}

func deserializeLines(raw map[string]any) []model.CartLine {
	rows, ok := raw["lines"].([]any)
	if !ok {
		rows, _ = raw["items"].([]any)
	}
	lines := make([]model.CartLine, 0, len(rows))
	for _, candidate := range rows {
		item, ok := candidate.(map[string]any)
		if !ok {
			continue
		}
		productID := normalize.String(item, "", "productId", "id")
		name := normalize.String(item, "", "name", "nombre")
		if productID == "" || name == "" {
			continue
		}

		quantity := normalize.Number(item, "quantity", "cantidad")
		if quantity.Sign() <= 0 {
			quantity = decimal.NewFromInt(1)
		}
		multiple := normalize.Number(item, "multiple", "multiplo")
		if multiple.Sign() <= 0 {
			multiple = decimal.NewFromInt(1)
		}

		lines = append(lines, model.CartLine{
			LineID:    normalize.String(item, uuid.NewString(), "lineId"),
			ProductID: productID,
			Code:      normalize.String(item, productID, "code", "codigo"),
			Name:      name,
			Price:     normalize.Number(item, "price", "precio"),
			IVA:       normalize.Number(item, "iva"),
			Quantity:  quantity,
			Unit:      normalize.String(item, "Un", "unit", "unidad"),
			Multiple:  multiple,
			WeightKg:  floorZero(normalize.Number(item, "weightKg", "pesoKg")),
			Discount:  deserializeDiscount(item),
			Note:      normalize.String(item, "", "note"),
		})
	}
	return lines
}

func deserializeDiscount(item map[string]any) *model.LineDiscount {
	raw, ok := item["discount"].(map[string]any)
	if !ok {
		return nil
	}
	kind := normalize.String(raw, "", "type")
	if kind != model.DiscountPercent && kind != model.DiscountAmount {
		return nil
	}
	return &model.LineDiscount{Type: kind, Value: normalize.Number(raw, "value")}
}

func deserializeLogistics(raw map[string]any) model.Logistics {
	if modern, ok := raw["logistics"].(map[string]any); ok {
		mode := model.LogisticsPickup
		if normalize.String(modern, "", "mode") == model.LogisticsDelivery {
			mode = model.LogisticsDelivery
		}
		return model.Logistics{
			Mode:          mode,
			StoreID:       normalize.String(modern, "", "storeId"),
			ScheduledDate: normalize.String(modern, "", "scheduledDate"),
			Address:       normalize.String(modern, "", "address"),
			Cost:          normalize.Number(modern, "cost"),
			Notes:         normalize.String(modern, "", "notes"),
		}
	}
	if legacy, ok := raw["logistica"].(map[string]any); ok {
		mode := model.LogisticsPickup
		if normalize.String(legacy, "", "tipo") == "envio" {
			mode = model.LogisticsDelivery
		}
		return model.Logistics{
			Mode:          mode,
			StoreID:       normalize.String(legacy, "", "sucursal"),
			ScheduledDate: normalize.String(legacy, "", "fecha"),
			Address:       normalize.String(legacy, "", "direccion"),
			Cost:          normalize.Number(legacy, "costo"),
			Notes:         normalize.String(legacy, "", "obs"),
		}
	}
	return model.Logistics{Mode: model.LogisticsPickup, Cost: decimal.Zero}
}

func deserializeClient(raw map[string]any) *model.Client {
	candidate, ok := raw["client"].(map[string]any)
	if !ok {
		candidate, ok = raw["cliente"].(map[string]any)
	}
	if !ok || candidate == nil {
		return nil
	}
	client := normalize.Client(candidate)
	return &client
}

func deserializePayments(raw map[string]any) []model.PaymentLine {
	rows, _ := raw["payments"].([]any)
	payments := make([]model.PaymentLine, 0, len(rows))
	for _, candidate := range rows {
		item, ok := candidate.(map[string]any)
		if !ok {
			continue
		}
		installments := int(normalize.Number(item, "installments").IntPart())
		if installments < 1 {
			installments = 1
		}
		payments = append(payments, model.PaymentLine{
			ID:           normalize.String(item, uuid.NewString(), "id"),
			Method:       normalize.String(item, "", "method"),
			Amount:       normalize.Number(item, "amount"),
			Installments: installments,
			Interest:     normalize.Number(item, "interest"),
			Brand:        normalize.String(item, "", "brand"),
			Reference:    normalize.String(item, "", "reference"),
		})
	}
	return payments
}
