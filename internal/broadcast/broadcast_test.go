package broadcast

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posfront/internal/model"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type recordingSink struct {
	name     string
	err      error
	received []*model.SelectionEnvelope
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, envelope *model.SelectionEnvelope) error {
	if s.err != nil {
		return s.err
	}
	s.received = append(s.received, envelope)
	return nil
}

func testEnvelope() *model.SelectionEnvelope {
	return &model.SelectionEnvelope{
		Type:    model.EnvelopeType,
		Version: model.EnvelopeVersion,
		Source:  "caja-1",
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestPublishFansOutToAllSinks(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	broadcaster := NewBroadcaster(a, b)

	delivered := broadcaster.Publish(context.Background(), testEnvelope())

	assert.Equal(t, 2, delivered)
	assert.Len(t, a.received, 1)
	assert.Len(t, b.received, 1)
}

func TestPublishIsolatesFailingSink(t *testing.T) {
	failing := &recordingSink{name: "roto", err: errors.New("conexion perdida")}
	healthy := &recordingSink{name: "sano"}
	broadcaster := NewBroadcaster(failing, healthy)

	delivered := broadcaster.Publish(context.Background(), testEnvelope())

	assert.Equal(t, 1, delivered, "one sink failing never blocks the others")
	assert.Len(t, healthy.received, 1)
}

func TestPublishNilEnvelopeIsNoop(t *testing.T) {
	sink := &recordingSink{name: "a"}
	broadcaster := NewBroadcaster(sink)

	assert.Zero(t, broadcaster.Publish(context.Background(), nil))
	assert.Empty(t, sink.received)
}

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	sink := NewBusSink(bus)
	require.NoError(t, sink.Deliver(context.Background(), testEnvelope()))

	select {
	case got := <-ch:
		assert.Equal(t, "caja-1", got.Source)
	default:
		t.Fatal("expected a buffered envelope")
	}
}

func TestBusSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	sink := NewBusSink(bus)
	for i := 0; i < 10; i++ {
		require.NoError(t, sink.Deliver(context.Background(), testEnvelope()))
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 4, count, "only the buffer capacity survives")
}

type recordingSetter struct {
	amounts []decimal.Decimal
}

func (s *recordingSetter) SetCartAmount(amount decimal.Decimal) {
	s.amounts = append(s.amounts, amount)
}

func TestApplyCommandSetsCartAmount(t *testing.T) {
	setter := &recordingSetter{}

	applyCommand(`{"type":"set_cart_amount","cart_amount":150.5}`, setter)

	require.Len(t, setter.amounts, 1)
	assert.True(t, setter.amounts[0].Equal(decimal.RequireFromString("150.5")),
		"cart_amount must decode from the wire field, got %s", setter.amounts[0])
}

func TestApplyCommandDropsUnknownAndMalformed(t *testing.T) {
	setter := &recordingSetter{}

	applyCommand(`{"type":"open_drawer","cart_amount":99}`, setter)
	applyCommand(`not json`, setter)
	applyCommand(`{"type":"set_cart_amount","cart_amount":"no-numero"}`, setter)

	assert.Empty(t, setter.amounts, "unknown and malformed commands never reach the simulator")
}

func TestBusCancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic.
	bus.publish(testEnvelope())
	cancel() // double cancel is safe
}
