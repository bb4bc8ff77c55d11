// Package syncer pushes local cart mutations to the backend, debounced so
// a burst of edits collapses into one save.
package syncer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"posfront/internal/cart"
	"posfront/internal/model"
)

// DefaultDebounce matches the edit-burst window observed at the registers.
const DefaultDebounce = 400 * time.Millisecond

// Saver persists a snapshot remotely. *backend.Client satisfies it.
type Saver interface {
	SaveUserCart(ctx context.Context, userID string, snapshot model.CartSnapshot, timestamp string) error
}

// Syncer watches the cart store's change channel and saves after a quiet
// period. Save failures are recorded on the store and retried on the next
// change; they never lose local edits and never stop the loop.
type Syncer struct {
	store    *cart.Store
	saver    Saver
	userID   string
	debounce time.Duration
}

func New(store *cart.Store, saver Saver, userID string, debounce time.Duration) *Syncer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Syncer{store: store, saver: saver, userID: userID, debounce: debounce}
}

// Run blocks until ctx is cancelled. Call it in its own goroutine.
func (s *Syncer) Run(ctx context.Context) {
	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			// Last chance flush so a clean shutdown does not drop edits.
			if s.store.NeedsSync() {
				s.flush(context.Background())
			}
			return
		case <-s.store.Changed():
			if armed && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(s.debounce)
			armed = true
		case <-timer.C:
			armed = false
			if s.store.NeedsSync() {
				s.flush(ctx)
			}
		}
	}
}

// Flush saves immediately, bypassing the debounce. Used before actions
// that require the remote cart to be current (quote PDF, checkout).
func (s *Syncer) Flush(ctx context.Context) error {
	return s.flush(ctx)
}

func (s *Syncer) flush(ctx context.Context) error {
	snapshot, _ := s.store.Snapshot()
	s.store.SetSyncing(true)
	err := s.saver.SaveUserCart(ctx, s.userID, snapshot, snapshot.UpdatedAt)
	s.store.SetSyncing(false)
	if err != nil {
		s.store.SetRemoteError(err.Error())
		log.Warn().Err(err).Msg("no se pudo sincronizar el carrito")
		return err
	}
	// Edits that landed while the save was in flight keep needsSync raised;
	// only an unchanged snapshot counts as synced.
	if current, _ := s.store.Snapshot(); current.UpdatedAt == snapshot.UpdatedAt {
		s.store.MarkSynced()
	}
	return nil
}
