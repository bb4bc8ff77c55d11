// Package selector computes the valid option sets for the cascading payment
// selectors (method → brand → bank → acquirer → plan). The resolver is a
// pure function of the current selection and the master-data index: it is
// re-run on every upstream change and never force-clears a selection that
// fell out of the candidate list — noticing that is the caller's job.
package selector

import (
	"posfront/internal/masterdata"
	"posfront/internal/model"
)

// Selection is the partial per-line choice. Empty string means "not
// selected" for every dimension.
type Selection struct {
	Method   string
	Brand    string
	Bank     string
	Acquirer string
}

// FilterOrFallback keeps the filtered list only when it is non-empty;
// otherwise the unfiltered input wins. This is the "never filter down to an
// empty selector" UX rule, applied uniformly wherever it recurs.
func FilterOrFallback[T any](list []T, keep func(T) bool) []T {
	filtered := make([]T, 0, len(list))
	for _, item := range list {
		if keep(item) {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == 0 {
		return list
	}
	return filtered
}

// BrandsAvailable returns the brand candidates for a line.
//
// Starting from all brands: a selected bank (with a known compatibility
// set) intersects hard; a selected method filters to brands whose plan
// index is empty or contains the method — but when that filter would leave
// nothing, it is dropped entirely and the bank-filtered list survives.
func BrandsAvailable(idx *masterdata.Index, sel Selection) []string {
	brands := idx.Masters().Brands

	if sel.Bank != "" && idx.BankConstraintFor(sel.Bank) {
		compatible := make([]string, 0, len(brands))
		for _, brand := range brands {
			if idx.BrandCompatibleWithBank(sel.Bank, brand) {
				compatible = append(compatible, brand)
			}
		}
		brands = compatible
	}

	if sel.Method != "" {
		brands = FilterOrFallback(brands, func(brand string) bool {
			return idx.BrandAllowsMethod(brand, sel.Method)
		})
	}
	return brands
}

// BanksAvailable returns the bank candidates for a line. A selected brand
// with a non-empty compatibility set intersects; otherwise all banks pass.
func BanksAvailable(idx *masterdata.Index, sel Selection) []model.Bank {
	banks := idx.Masters().Banks
	if sel.Brand == "" {
		return banks
	}
	allowed := make([]model.Bank, 0, len(banks))
	for _, bank := range banks {
		ok, constrained := idx.BankAllowedForBrand(sel.Brand, bank.Code)
		if !constrained || ok {
			allowed = append(allowed, bank)
		}
	}
	return allowed
}

// AcquirersAvailable mirrors BanksAvailable for acquirers.
func AcquirersAvailable(idx *masterdata.Index, sel Selection) []model.Acquirer {
	acquirers := idx.Masters().Acquirers
	if sel.Brand == "" {
		return acquirers
	}
	allowed := make([]model.Acquirer, 0, len(acquirers))
	for _, acq := range acquirers {
		ok, constrained := idx.AcquirerAllowedForBrand(sel.Brand, acq.Code)
		if !constrained || ok {
			allowed = append(allowed, acq)
		}
	}
	return allowed
}

// MethodsAvailable lists payment methods, optionally restricted to
// card-like ones (the "solo tarjetas" toggle).
func MethodsAvailable(idx *masterdata.Index, onlyCards bool) []model.Method {
	methods := idx.Masters().Methods
	if !onlyCards {
		return methods
	}
	cards := make([]model.Method, 0, len(methods))
	for _, method := range methods {
		if idx.IsCardMethod(method.Code) {
			cards = append(cards, method)
		}
	}
	return cards
}
