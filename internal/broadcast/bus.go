package broadcast

import (
	"context"
	"sync"

	"posfront/internal/model"
)

// Bus is the in-process analogue of the Redis channel: same-process
// consumers (the cart, handlers streaming to the UI) subscribe without a
// network hop. Slow subscribers lose messages rather than block the
// publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan *model.SelectionEnvelope
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan *model.SelectionEnvelope)}
}

// Subscribe registers a buffered subscriber channel. The returned cancel
// function removes the subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan *model.SelectionEnvelope, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan *model.SelectionEnvelope, 4)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

func (b *Bus) publish(envelope *model.SelectionEnvelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub <- envelope:
		default:
		}
	}
}

// BusSink adapts the bus to the Sink interface; delivery never fails.
type BusSink struct {
	bus *Bus
}

func NewBusSink(bus *Bus) *BusSink { return &BusSink{bus: bus} }

func (s *BusSink) Name() string { return "local-bus" }

func (s *BusSink) Deliver(_ context.Context, envelope *model.SelectionEnvelope) error {
	s.bus.publish(envelope)
	return nil
}
