package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"posfront/internal/model"
)

// nowISO uses nanosecond precision so two edits never share a timestamp;
// the syncer relies on that to detect edits that landed mid-save.
func nowISO() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func emptySnapshot() model.CartSnapshot {
	return model.CartSnapshot{
		Lines:     []model.CartLine{},
		Logistics: model.Logistics{Mode: model.LogisticsPickup, Cost: decimal.Zero},
		Payments:  []model.PaymentLine{},
		UpdatedAt: nowISO(),
	}
}

// Store is the single writer for the cart snapshot. Every mutation replaces
// the whole snapshot and recomputes totals in the same critical section, so
// readers always observe a consistent (snapshot, totals) pair, and raises
// the needs-sync flag consumed by the debounced remote syncer.
type Store struct {
	mu           sync.RWMutex
	cart         model.CartSnapshot
	totals       model.CartTotals
	needsSync    bool
	syncing      bool
	lastSyncedAt string
	remoteError  string
	changed      chan struct{}
}

func NewStore() *Store {
	fresh := emptySnapshot()
	return &Store{
		cart:    fresh,
		totals:  CalculateCartTotals(fresh),
		changed: make(chan struct{}, 1),
	}
}

// Changed signals after every mutation; the channel is buffered and
// coalescing, matching the debounced-sync consumer.
func (s *Store) Changed() <-chan struct{} { return s.changed }

func (s *Store) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Snapshot returns copies of the current snapshot and totals.
func (s *Store) Snapshot() (model.CartSnapshot, model.CartTotals) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.cart), s.totals
}

// NeedsSync reports whether there are mutations not yet persisted remotely.
func (s *Store) NeedsSync() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.needsSync
}

// RemoteError returns the last remote sync failure message, if any.
func (s *Store) RemoteError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remoteError
}

// mutate swaps in the snapshot produced by fn and recomputes totals
// atomically. fn receives a deep copy, never the live snapshot.
func (s *Store) mutate(fn func(model.CartSnapshot) model.CartSnapshot) {
	s.mu.Lock()
	next := fn(cloneSnapshot(s.cart))
	next.UpdatedAt = nowISO()
	s.cart = next
	s.totals = CalculateCartTotals(next)
	s.needsSync = true
	s.remoteError = ""
	s.mu.Unlock()
	s.notify()
}

// AddProduct adds a product to the cart, merging quantities into an
// existing line for the same product. Quantities snap to the product's
// multiple.
func (s *Store) AddProduct(product model.Product, quantity decimal.Decimal, discount *model.LineDiscount) {
	if quantity.Sign() <= 0 {
		quantity = decimal.NewFromInt(1)
	}
	multiple := product.Multiple
	if multiple.Sign() <= 0 {
		multiple = decimal.NewFromInt(1)
	}
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		for i, line := range cart.Lines {
			if line.ProductID == product.ID {
				cart.Lines[i].Quantity = EnsureMultiple(line.Quantity.Add(quantity), multiple)
				if discount != nil {
					cart.Lines[i].Discount = discount
				}
				return cart
			}
		}
		cart.Lines = append(cart.Lines, model.CartLine{
			LineID:    uuid.NewString(),
			ProductID: product.ID,
			Code:      product.Code,
			Name:      product.Name,
			Price:     product.Price,
			IVA:       product.IVA,
			Quantity:  EnsureMultiple(quantity, multiple),
			Unit:      product.Unit,
			Multiple:  multiple,
			WeightKg:  product.WeightKg,
			Discount:  discount,
		})
		return cart
	})
}

// AddQuickLine appends a pre-built line (manual entry).
func (s *Store) AddQuickLine(line model.CartLine) {
	if line.LineID == "" {
		line.LineID = uuid.NewString()
	}
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		cart.Lines = append(cart.Lines, line)
		return cart
	})
}

// RemoveLine drops a line by id; unknown ids are a no-op mutation.
func (s *Store) RemoveLine(lineID string) {
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		kept := cart.Lines[:0]
		for _, line := range cart.Lines {
			if line.LineID != lineID {
				kept = append(kept, line)
			}
		}
		cart.Lines = kept
		return cart
	})
}

// UpdateQuantity sets a line's quantity, snapped to its multiple and never
// below one multiple.
func (s *Store) UpdateQuantity(lineID string, quantity decimal.Decimal) {
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		for i, line := range cart.Lines {
			if line.LineID != lineID {
				continue
			}
			multiple := line.Multiple
			if multiple.Sign() <= 0 {
				multiple = decimal.NewFromInt(1)
			}
			if quantity.LessThan(multiple) {
				quantity = multiple
			}
			cart.Lines[i].Quantity = EnsureMultiple(quantity, multiple)
		}
		return cart
	})
}

// BumpQuantity adjusts a line's quantity by delta (positive or negative).
func (s *Store) BumpQuantity(lineID string, delta decimal.Decimal) {
	s.mu.RLock()
	var target *model.CartLine
	for i := range s.cart.Lines {
		if s.cart.Lines[i].LineID == lineID {
			target = &s.cart.Lines[i]
			break
		}
	}
	if target == nil {
		s.mu.RUnlock()
		return
	}
	next := target.Quantity.Add(delta)
	if next.LessThan(target.Multiple) {
		next = target.Multiple
	}
	s.mu.RUnlock()
	s.UpdateQuantity(lineID, next)
}

// SetLineDiscount replaces a line's discount. Percent values clamp to
// 0..100; amounts floor at 0.
func (s *Store) SetLineDiscount(lineID string, discount *model.LineDiscount) {
	if discount != nil {
		value := discount.Value
		if value.Sign() < 0 {
			value = decimal.Zero
		}
		if discount.Type == model.DiscountPercent && value.GreaterThan(hundred) {
			value = hundred
		}
		discount = &model.LineDiscount{Type: discount.Type, Value: value}
	}
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		for i, line := range cart.Lines {
			if line.LineID == lineID {
				cart.Lines[i].Discount = discount
			}
		}
		return cart
	})
}

// SetGlobalDiscounts sets the cart-level percent (clamped 0..100) and
// amount (floored at 0) discounts.
func (s *Store) SetGlobalDiscounts(percent, amount decimal.Decimal) {
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		cart.GlobalDiscountPercent = clamp(percent, decimal.Zero, hundred)
		cart.GlobalDiscountAmount = floorZero(amount)
		return cart
	})
}

// SetLogistics replaces the logistics block; cost floors at 0 and an
// unknown mode falls back to pickup.
func (s *Store) SetLogistics(logistics model.Logistics) {
	if logistics.Mode != model.LogisticsDelivery {
		logistics.Mode = model.LogisticsPickup
	}
	logistics.Cost = floorZero(logistics.Cost)
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		cart.Logistics = logistics
		return cart
	})
}

// SetClient attaches (or clears, with nil) the cart client.
func (s *Store) SetClient(client *model.Client) {
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		cart.Client = client
		return cart
	})
}

// SetNote replaces the cart note.
func (s *Store) SetNote(note string) {
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		cart.Note = note
		return cart
	})
}

// SetPayments replaces the payment split list.
func (s *Store) SetPayments(payments []model.PaymentLine) {
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		cart.Payments = append([]model.PaymentLine(nil), payments...)
		return cart
	})
}

// SetSimulatorTotals attaches the last confirmed simulator totals.
func (s *Store) SetSimulatorTotals(totals *model.EnvelopeTotals) {
	s.mutate(func(cart model.CartSnapshot) model.CartSnapshot {
		cart.SimulatorTotals = totals
		return cart
	})
}

// Reset replaces the cart with a fresh empty snapshot.
func (s *Store) Reset() {
	s.mutate(func(model.CartSnapshot) model.CartSnapshot {
		return emptySnapshot()
	})
}

// HydrateRemote replaces local state with a remote snapshot. Legacy-shaped
// snapshots leave needsSync raised so the canonical form is re-persisted.
// Returns false (state untouched) when the payload is unusable.
func (s *Store) HydrateRemote(raw []byte) bool {
	snapshot, converted := DeserializeSnapshot(raw)
	if snapshot == nil {
		return false
	}
	s.mu.Lock()
	snapshot.UpdatedAt = nowISO()
	s.cart = *snapshot
	s.totals = CalculateCartTotals(*snapshot)
	s.needsSync = converted
	s.remoteError = ""
	s.lastSyncedAt = nowISO()
	s.mu.Unlock()
	if converted {
		s.notify()
	}
	return true
}

// MarkSynced clears the needs-sync flag after a successful remote save.
func (s *Store) MarkSynced() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needsSync = false
	s.syncing = false
	s.lastSyncedAt = nowISO()
	s.remoteError = ""
}

// SetSyncing flips the in-flight sync flag.
func (s *Store) SetSyncing(value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = value
}

// SetRemoteError records the last sync failure without losing local edits.
func (s *Store) SetRemoteError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remoteError = message
}

func cloneSnapshot(cart model.CartSnapshot) model.CartSnapshot {
	out := cart
	out.Lines = make([]model.CartLine, len(cart.Lines))
	copy(out.Lines, cart.Lines)
	for i := range out.Lines {
		if out.Lines[i].Discount != nil {
			d := *out.Lines[i].Discount
			out.Lines[i].Discount = &d
		}
	}
	out.Payments = append([]model.PaymentLine(nil), cart.Payments...)
	if cart.Client != nil {
		c := *cart.Client
		out.Client = &c
	}
	if cart.SimulatorTotals != nil {
		t := *cart.SimulatorTotals
		out.SimulatorTotals = &t
	}
	return out
}
