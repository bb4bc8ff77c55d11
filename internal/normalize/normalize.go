// Package normalize converts heterogeneous backend payloads into the stable
// internal shapes of the model package. The backend is known to use
// inconsistent field names across versions, so every logical attribute is
// resolved through an ordered probe over candidate keys: first non-empty
// value wins.
package normalize

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"posfront/internal/model"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Text lowercases and strips diacritics, so "Crédito" matches "credito".
func Text(value string) string {
	out, _, err := transform.String(stripMarks, value)
	if err != nil {
		return strings.ToLower(value)
	}
	return strings.ToLower(out)
}

// Key is the brand-key normalization: trimmed and case-folded. Bank,
// acquirer and method codes are NOT passed through Key — they are compared
// as trimmed strings only, and that asymmetry is deliberate.
func Key(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Probe returns the first candidate key whose value is a non-empty string
// or a non-nil scalar.
func Probe(raw map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		if s, isStr := value.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return value, true
	}
	return nil, false
}

// String probes keys and coerces the winner to a trimmed string; fallback
// is returned when nothing matches.
func String(raw map[string]any, fallback string, keys ...string) string {
	value, ok := Probe(raw, keys...)
	if !ok {
		return fallback
	}
	return StringValue(value, fallback)
}

// StringValue coerces any scalar to a trimmed string.
func StringValue(value any, fallback string) string {
	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return fallback
		}
		return trimmed
	case float64:
		return decimal.NewFromFloat(v).String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fallback
	}
}

// Number probes keys and coerces the winner through NumberValue.
func Number(raw map[string]any, keys ...string) decimal.Decimal {
	value, ok := Probe(raw, keys...)
	if !ok {
		return decimal.Zero
	}
	return NumberValue(value)
}

// NumberValue parses numbers permissively: numeric JSON values pass
// through, strings are cleaned of currency noise and comma decimals,
// anything unparseable collapses to zero.
func NumberValue(value any) decimal.Decimal {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
				return r
			}
			return -1
		}, v)
		// es-AR formatting: when both separators appear the dot is the
		// thousands mark; a lone comma is the decimal mark.
		if strings.Contains(cleaned, ",") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func fallbackID() string { return uuid.NewString() }

// Product maps any known product payload variant to model.Product.
func Product(raw map[string]any) model.Product {
	id := String(raw, fallbackID(), "numero_producto", "productId", "id")
	code := String(raw, id, "numero_producto", "id")
	name := String(raw, "Producto", "nombre_producto", "productName", "nombre", "descripcion", "descripcion_corta")
	multiple := Number(raw, "multiplo", "multiple")
	if multiple.Sign() <= 0 {
		multiple = decimal.NewFromInt(1)
	}
	iva := decimal.NewFromInt(21)
	if _, ok := Probe(raw, "iva"); ok {
		iva = Number(raw, "iva")
	}
	return model.Product{
		ID:            id,
		Code:          code,
		Name:          name,
		Description:   String(raw, "", "descripcion", "descripcion_corta", "nombre"),
		Category:      String(raw, "", "categoria_producto", "categoria"),
		Price:         Number(raw, "precio_final_con_descuento", "precio_final_con_iva", "precio", "price"),
		IVA:           iva,
		Stock:         Number(raw, "total_disponible_venta", "stock"),
		WeightKg:      Number(raw, "pesoKg", "peso_kg"),
		Unit:          String(raw, "Un", "unidad_medida", "unidad"),
		Multiple:      multiple,
		CoverageGroup: String(raw, "", "grupo_cobertura"),
		Barcode:       String(raw, "", "barcode", "codigo_barras"),
		Brand:         String(raw, "", "marca", "brand"),
		ImageURL:      String(raw, "", "imagen_url"),
	}
}

// Client maps any known client payload variant (modern or legacy) to
// model.Client. A nil result means the input was not an object at all.
func Client(raw map[string]any) model.Client {
	id := String(raw, fallbackID(), "numero_cliente", "id", "nif", "doc", "dni")
	composed := strings.TrimSpace(String(raw, "", "nombre") + " " + String(raw, "", "apellido"))
	name := String(raw, "",
		"nombre_completo", "nombre_cliente", "full_name", "display_name", "razon_social", "name")
	if name == "" {
		name = composed
	}
	if name == "" {
		name = id
	}
	return model.Client{
		ID:               id,
		Name:             name,
		Document:         String(raw, "", "nif", "doc", "dni", "cuit", "document", "numero_cliente"),
		Email:            String(raw, "", "email", "email_contacto", "emailContacto"),
		Phone:            String(raw, "", "telefono", "telefono_contacto", "telefonoContacto", "phone"),
		Address:          String(raw, "", "direccion_completa", "direccion", "address"),
		PreferredStoreID: String(raw, "", "store_preferida", "preferredStoreId"),
	}
}

// StockRow maps a per-store stock payload row.
func StockRow(raw map[string]any) model.StockRow {
	return model.StockRow{
		StoreName:            String(raw, "—", "almacen", "almacen_nombre", "warehouse", "Warehouse", "store"),
		AvailableForSale:     Number(raw, "disponible_venta", "stock_venta", "disponible"),
		AvailableForDelivery: Number(raw, "disponible_entrega", "disponible_ent"),
		Committed:            Number(raw, "comprometido", "reservado"),
	}
}

// Plan maps a raw plan payload to model.Plan, defaulting missing dimensions
// to the provided defaults (empty string means "applies to all").
func Plan(raw map[string]any, defaults model.Plan) model.Plan {
	fees := defaults.Fees
	if value, ok := Probe(raw, "fees"); ok {
		n := int(NumberValue(value).IntPart())
		fees = &n
	}
	return model.Plan{
		ID:       String(raw, defaults.ID, "id"),
		Code:     String(raw, defaults.Code, "code"),
		Name:     String(raw, defaults.Name, "name"),
		Fees:     fees,
		Coef:     String(raw, defaults.Coef, "coef"),
		Method:   String(raw, defaults.Method, "method"),
		Brand:    String(raw, defaults.Brand, "brand"),
		Bank:     String(raw, defaults.Bank, "bank"),
		Acquirer: String(raw, defaults.Acquirer, "acquirer"),
	}
}
