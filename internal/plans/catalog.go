// Package plans serves per-brand installment plan lists: cached from the
// boot preload when available, lazily fetched otherwise, and filtered for a
// specific line selection.
package plans

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"posfront/internal/masterdata"
	"posfront/internal/model"
	"posfront/internal/normalize"
	"posfront/internal/selector"
)

// Fetcher retrieves raw plan rows for one brand. *backend.Client satisfies
// it.
type Fetcher interface {
	PlansByBrand(ctx context.Context, brand string) ([]map[string]any, error)
}

// Catalog resolves plan lists against the shared master-data index.
type Catalog struct {
	idx     *masterdata.Index
	fetcher Fetcher
}

func NewCatalog(idx *masterdata.Index, fetcher Fetcher) *Catalog {
	return &Catalog{idx: idx, fetcher: fetcher}
}

// coefOne is the accepted textual spellings of a no-surcharge coefficient.
// Membership is textual on purpose — switching to numeric parsing would
// change which plans pass the tasa-1 toggle (e.g. "1.0000" fails today) and
// needs a product decision first.
var coefOne = map[string]struct{}{
	"1": {}, "1.0": {}, "1.00": {}, "1,0": {}, "1,00": {}, "1.000": {},
}

// CoefIsOne reports whether a plan coefficient matches the whitelist.
func CoefIsOne(coef string) bool {
	_, ok := coefOne[strings.TrimSpace(coef)]
	return ok
}

// PlansForBrand returns the plan list for a brand, fetching and indexing it
// on first use. The result is a copy on every call so cached plan state
// cannot be mutated through returned references. A fetch failure logs once
// and yields an empty list — it never propagates to the caller. Concurrent
// misses for the same brand may both fetch; the cache write is idempotent
// last-write-wins.
func (c *Catalog) PlansForBrand(ctx context.Context, brand string) []model.Plan {
	if normalize.Key(brand) == "" {
		return nil
	}
	if cached, ok := c.idx.CachedPlans(brand); ok {
		return clonePlans(cached)
	}

	rows, err := c.fetcher.PlansByBrand(ctx, brand)
	if err != nil {
		log.Warn().Err(err).Str("brand", brand).Msg("no se pudieron obtener los planes")
		return []model.Plan{}
	}

	plans := make([]model.Plan, 0, len(rows))
	for _, raw := range rows {
		plan := normalize.Plan(raw, model.Plan{Brand: brand})
		c.idx.TrackPlan(plan)
		plans = append(plans, plan)
	}
	c.idx.StorePlans(brand, plans)
	return clonePlans(plans)
}

// FilterForLine narrows a brand's plans to the given selection. A plan's
// own dimension must be empty (applies to all) or equal to the selected
// value; the tasa-1 toggle additionally requires a whitelist coefficient.
// Selection codes are trimmed before comparing — indexed plan codes are
// always trimmed, so a padded query value must not drop matches.
func FilterForLine(plans []model.Plan, sel selector.Selection, tasa1 bool) []model.Plan {
	method := strings.TrimSpace(sel.Method)
	bank := strings.TrimSpace(sel.Bank)
	acquirer := strings.TrimSpace(sel.Acquirer)

	filtered := make([]model.Plan, 0, len(plans))
	for _, plan := range plans {
		if method != "" && plan.Method != "" && plan.Method != method {
			continue
		}
		if bank != "" && plan.Bank != "" && plan.Bank != bank {
			continue
		}
		if acquirer != "" && plan.Acquirer != "" && plan.Acquirer != acquirer {
			continue
		}
		if tasa1 && !CoefIsOne(plan.Coef) {
			continue
		}
		filtered = append(filtered, plan)
	}
	return filtered
}

// Search keeps plans whose code or name contains the query, compared
// without case or diacritics. An empty query returns the input unchanged.
func Search(plans []model.Plan, query string) []model.Plan {
	needle := normalize.Text(strings.TrimSpace(query))
	if needle == "" {
		return plans
	}
	matched := make([]model.Plan, 0, len(plans))
	for _, plan := range plans {
		if strings.Contains(normalize.Text(plan.Code), needle) ||
			strings.Contains(normalize.Text(plan.Name), needle) {
			matched = append(matched, plan)
		}
	}
	return matched
}

// Label renders the human-readable plan option label.
func Label(plan model.Plan) string {
	parts := make([]string, 0, 3)
	if plan.Code != "" {
		parts = append(parts, plan.Code)
	}
	if plan.Name != "" && plan.Name != plan.Code {
		parts = append(parts, plan.Name)
	}
	if plan.Fees != nil {
		parts = append(parts, normalize.StringValue(float64(*plan.Fees), "")+" cuotas")
	}
	if len(parts) == 0 {
		return plan.ID
	}
	return strings.Join(parts, " · ")
}

func clonePlans(plans []model.Plan) []model.Plan {
	out := make([]model.Plan, len(plans))
	copy(out, plans)
	for i := range out {
		if out[i].Fees != nil {
			fees := *out[i].Fees
			out[i].Fees = &fees
		}
	}
	return out
}
