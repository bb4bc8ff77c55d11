// Package masterdata owns the session-wide master-data graph and the fast
// lookup structures derived from it. The Index is injected wherever the
// selector resolver, plan catalog or simulator need master data, so tests
// can build isolated instances instead of sharing process globals.
package masterdata

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"posfront/internal/backend"
	"posfront/internal/model"
	"posfront/internal/normalize"
)

// DefaultVATRate applies until a valid vat_rate arrives in the masters
// payload.
const DefaultVATRate = 0.21

// Loader fetches the boot payload. *backend.Client satisfies it.
type Loader interface {
	Boot(ctx context.Context) (*backend.BootPayload, error)
}

// Index holds the master data plus every derived lookup. Load rebuilds the
// whole thing from scratch; the only incremental path is StorePlans, which
// is additive (lazy per-brand plan cache).
//
// Key discipline: brand keys always go through normalize.Key (trim +
// case-fold); method/bank/acquirer codes are trimmed strings compared
// verbatim. "Visa" and "visa" are one brand; bank "01" and "1" are two
// banks.
type Index struct {
	mu     sync.RWMutex
	loader Loader

	masters      model.MasterData
	methodByCode map[string]model.Method

	plansIndex     map[string]map[string]struct{} // brand key → method codes with plans
	brandBanks     map[string]map[string]struct{} // brand key → bank codes
	bankBrands     map[string]map[string]struct{} // bank code → brand keys
	brandAcquirers map[string]map[string]struct{} // brand key → acquirer codes
	planByID       map[string]model.Plan
	brandPlans     map[string][]model.Plan // lazy full plan list per brand key

	vatRate float64
	ready   bool
}

func New(loader Loader) *Index {
	idx := &Index{loader: loader}
	idx.resetLocked()
	return idx
}

func (idx *Index) resetLocked() {
	idx.masters = model.MasterData{}
	idx.methodByCode = make(map[string]model.Method)
	idx.plansIndex = make(map[string]map[string]struct{})
	idx.brandBanks = make(map[string]map[string]struct{})
	idx.bankBrands = make(map[string]map[string]struct{})
	idx.brandAcquirers = make(map[string]map[string]struct{})
	idx.planByID = make(map[string]model.Plan)
	idx.brandPlans = make(map[string][]model.Plan)
	idx.vatRate = DefaultVATRate
	idx.ready = false
}

// Reset discards all indexed state.
func (idx *Index) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.resetLocked()
}

// Ready reports whether a Load has completed.
func (idx *Index) Ready() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.ready
}

// Load fetches the boot payload and rebuilds every index, discarding prior
// state. The payload is partially trusted: absent collections and maps are
// treated as empty. An unparseable vat_rate (or one outside [0,1)) is
// ignored without surfacing an error — permissive on purpose.
func (idx *Index) Load(ctx context.Context) error {
	payload, err := idx.loader.Boot(ctx)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.resetLocked()

	masters := payload.Masters
	idx.masters = masters.MasterData
	for _, method := range masters.Methods {
		code := strings.TrimSpace(method.Code)
		if code == "" {
			continue
		}
		idx.methodByCode[code] = method
	}

	if raw := strings.TrimSpace(masters.VATRate); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed >= 0 && parsed < 1 {
			idx.vatRate = parsed
		}
	}

	for brand, banks := range masters.BrandBanks {
		key := normalize.Key(brand)
		for _, bank := range banks {
			addToSet(idx.brandBanks, key, strings.TrimSpace(bank))
		}
	}
	for bank, brands := range masters.BankBrands {
		code := strings.TrimSpace(bank)
		for _, brand := range brands {
			addToSet(idx.bankBrands, code, normalize.Key(brand))
		}
	}
	for brand, acquirers := range masters.BrandAcquirers {
		key := normalize.Key(brand)
		for _, acq := range acquirers {
			addToSet(idx.brandAcquirers, key, strings.TrimSpace(acq))
		}
	}

	if payload.Plans != nil {
		for brand, methods := range payload.Plans.Index {
			key := normalize.Key(brand)
			for method, enabled := range methods {
				if enabled {
					addToSet(idx.plansIndex, key, strings.TrimSpace(method))
				}
			}
		}
		for _, raw := range payload.Plans.Rates {
			plan := normalize.Plan(raw, model.Plan{})
			idx.trackPlanLocked(plan)
			key := normalize.Key(plan.Brand)
			if key == "" {
				continue
			}
			idx.brandPlans[key] = append(idx.brandPlans[key], plan)
		}
	}

	idx.ready = true
	log.Info().
		Int("methods", len(idx.methodByCode)).
		Int("brands", len(idx.masters.Brands)).
		Int("banks", len(idx.masters.Banks)).
		Int("plans", len(idx.planByID)).
		Msg("master data loaded")
	return nil
}

func addToSet(index map[string]map[string]struct{}, key, value string) {
	if key == "" || value == "" {
		return
	}
	set, ok := index[key]
	if !ok {
		set = make(map[string]struct{})
		index[key] = set
	}
	set[value] = struct{}{}
}

// TrackPlan folds one plan into the cross indices. Called at boot for the
// bulk preload and again for every lazily fetched plan.
func (idx *Index) TrackPlan(plan model.Plan) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.trackPlanLocked(plan)
}

func (idx *Index) trackPlanLocked(plan model.Plan) {
	brandKey := normalize.Key(plan.Brand)
	methodCode := strings.TrimSpace(plan.Method)
	bankCode := strings.TrimSpace(plan.Bank)
	acquirerCode := strings.TrimSpace(plan.Acquirer)

	if plan.ID != "" {
		idx.planByID[plan.ID] = plan
	}
	addToSet(idx.plansIndex, brandKey, methodCode)
	addToSet(idx.bankBrands, bankCode, brandKey)
	addToSet(idx.brandBanks, brandKey, bankCode)
	addToSet(idx.brandAcquirers, brandKey, acquirerCode)
}

// ── read side ─────────────────────────────────────────────────────────────────

// Masters returns a copy of the raw master data collections.
func (idx *Index) Masters() model.MasterData {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := idx.masters
	out.Methods = append([]model.Method(nil), idx.masters.Methods...)
	out.Brands = append([]string(nil), idx.masters.Brands...)
	out.Banks = append([]model.Bank(nil), idx.masters.Banks...)
	out.Acquirers = append([]model.Acquirer(nil), idx.masters.Acquirers...)
	return out
}

// VATRate returns the session VAT rate in [0,1).
func (idx *Index) VATRate() float64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.vatRate
}

// MethodByCode resolves a payment method by trimmed code.
func (idx *Index) MethodByCode(code string) (model.Method, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	method, ok := idx.methodByCode[strings.TrimSpace(code)]
	return method, ok
}

// IsCardMethod classifies a method as card-like: its function mentions
// "card" or its name mentions tarjeta/credito/debito, matched without case
// or diacritics. Card-like methods activate the brand/bank/acquirer/plan
// selectors for a line.
func (idx *Index) IsCardMethod(code string) bool {
	method, ok := idx.MethodByCode(code)
	if !ok {
		return false
	}
	function := normalize.Text(method.Function)
	if strings.Contains(function, "card") {
		return true
	}
	name := normalize.Text(method.Name)
	return strings.Contains(name, "tarjeta") ||
		strings.Contains(name, "credito") ||
		strings.Contains(name, "debito")
}

// PlanByID resolves an indexed plan.
func (idx *Index) PlanByID(id string) (model.Plan, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	plan, ok := idx.planByID[id]
	return plan, ok
}

// BrandAllowsMethod reports whether a brand offers plans for the method.
// A brand with no plansIndex entry (or an empty one) allows every method —
// absence of plan knowledge never excludes a brand.
func (idx *Index) BrandAllowsMethod(brand, methodCode string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	set := idx.plansIndex[normalize.Key(brand)]
	if len(set) == 0 {
		return true
	}
	_, ok := set[strings.TrimSpace(methodCode)]
	return ok
}

// BrandCompatibleWithBank reports whether bankBrands lists the brand under
// the bank code.
func (idx *Index) BrandCompatibleWithBank(bankCode, brand string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	set := idx.bankBrands[strings.TrimSpace(bankCode)]
	_, ok := set[normalize.Key(brand)]
	return ok
}

// BankConstraintFor reports whether the bank constrains brand choice at all.
func (idx *Index) BankConstraintFor(bankCode string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.bankBrands[strings.TrimSpace(bankCode)]) > 0
}

// BankAllowedForBrand reports whether the bank code is valid for the brand.
// constrained is false when the brand carries no bank restriction, in which
// case every bank is allowed.
func (idx *Index) BankAllowedForBrand(brand, bankCode string) (allowed, constrained bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	set := idx.brandBanks[normalize.Key(brand)]
	if len(set) == 0 {
		return true, false
	}
	_, ok := set[strings.TrimSpace(bankCode)]
	return ok, true
}

// AcquirerAllowedForBrand mirrors BankAllowedForBrand for acquirers.
func (idx *Index) AcquirerAllowedForBrand(brand, acquirerCode string) (allowed, constrained bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	set := idx.brandAcquirers[normalize.Key(brand)]
	if len(set) == 0 {
		return true, false
	}
	_, ok := set[strings.TrimSpace(acquirerCode)]
	return ok, true
}

// CachedPlans returns the lazily cached plan list for a brand, with a hit
// flag. The returned slice is shared; callers must not mutate it (the plan
// catalog hands out copies).
func (idx *Index) CachedPlans(brand string) ([]model.Plan, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	plans, ok := idx.brandPlans[normalize.Key(brand)]
	return plans, ok
}

// StorePlans caches the full plan list for a brand. Last write wins:
// concurrent fetches for the same brand are duplicate work, not a
// correctness problem.
func (idx *Index) StorePlans(brand string, plans []model.Plan) {
	key := normalize.Key(brand)
	if key == "" {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.brandPlans[key] = plans
}
