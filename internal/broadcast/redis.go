package broadcast

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"posfront/internal/model"
)

const (
	// SelectionChannel carries confirmed selection envelopes.
	SelectionChannel = "simulator:events"
	// StoredSelectionKey holds the last confirmed envelope for late joiners.
	StoredSelectionKey = "simulator:last-selection"
	// CommandChannel carries inbound simulator commands (set_cart_amount).
	CommandChannel = "simulator:commands"
)

// ChannelSink publishes envelopes on the Redis selection channel.
type ChannelSink struct {
	rdb *redis.Client
}

func NewChannelSink(rdb *redis.Client) *ChannelSink { return &ChannelSink{rdb: rdb} }

func (s *ChannelSink) Name() string { return "redis-channel" }

func (s *ChannelSink) Deliver(ctx context.Context, envelope *model.SelectionEnvelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, SelectionChannel, data).Err()
}

// StoredSink persists the last envelope so consumers that attach after the
// confirm can still read it. No TTL: the key lives until the next confirm
// overwrites it.
type StoredSink struct {
	rdb *redis.Client
}

func NewStoredSink(rdb *redis.Client) *StoredSink { return &StoredSink{rdb: rdb} }

func (s *StoredSink) Name() string { return "redis-stored" }

func (s *StoredSink) Deliver(ctx context.Context, envelope *model.SelectionEnvelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, StoredSelectionKey, data, 0).Err()
}

// LastStored reads back the persisted envelope; (nil, nil) when absent.
func LastStored(ctx context.Context, rdb *redis.Client) (*model.SelectionEnvelope, error) {
	data, err := rdb.Get(ctx, StoredSelectionKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var envelope model.SelectionEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// command is the inbound message shape on CommandChannel:
// {"type":"set_cart_amount","cart_amount":...}.
type command struct {
	Type       string          `json:"type"`
	CartAmount decimal.Decimal `json:"cart_amount"`
}

// CartAmountSetter is satisfied by *simulator.Pipeline.
type CartAmountSetter interface {
	SetCartAmount(amount decimal.Decimal)
}

// applyCommand decodes one inbound payload and applies it. Unknown types
// and malformed payloads are logged and dropped.
func applyCommand(payload string, target CartAmountSetter) {
	var cmd command
	if err := json.Unmarshal([]byte(payload), &cmd); err != nil {
		log.Warn().Err(err).Msg("comando de simulador invalido")
		return
	}
	if cmd.Type != model.InboundCartAmountType {
		log.Debug().Str("type", cmd.Type).Msg("comando de simulador ignorado")
		return
	}
	target.SetCartAmount(cmd.CartAmount)
}

// ListenCommands subscribes to the command channel and applies
// set_cart_amount messages until ctx is cancelled.
func ListenCommands(ctx context.Context, rdb *redis.Client, target CartAmountSetter) {
	sub := rdb.Subscribe(ctx, CommandChannel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			applyCommand(msg.Payload, target)
		}
	}
}
