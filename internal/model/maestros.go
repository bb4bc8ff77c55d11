package model

// Master data is fetched once at boot from the remote backend and is
// immutable for the session except on an explicit reload.

// Method is a payment method (efectivo, tarjeta de crédito, etc.).
// Function/Name are matched heuristically to decide whether the method is
// card-like, which gates the brand/bank/acquirer/plan selectors.
type Method struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Function string `json:"function"`
}

// Bank as delivered by the masters payload. Codes are compared as trimmed
// strings, never case-folded.
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Acquirer settles card transactions.
type Acquirer struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Plan is an installment/financing offer tied to a brand. An empty
// Method/Bank/Acquirer means the plan applies to every value of that
// dimension. Identity is ID.
type Plan struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Fees     *int   `json:"fees"` // installment count, nullable
	Coef     string `json:"coef"` // decimal-like text, compared textually
	Method   string `json:"method"`
	Brand    string `json:"brand"`
	Bank     string `json:"bank"`
	Acquirer string `json:"acquirer"`
}

// MasterData is the boot payload root. Missing collections are treated as
// empty, never as an error.
type MasterData struct {
	Methods   []Method   `json:"methods"`
	Brands    []string   `json:"brands"`
	Banks     []Bank     `json:"banks"`
	Acquirers []Acquirer `json:"acquirers"`
	VATRate   string     `json:"vat_rate"`
}
