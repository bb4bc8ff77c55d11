// Package broadcast fans a confirmed payment selection out to every
// registered sink (Redis channel, stored last-selection key, in-process
// bus) and listens for inbound simulator commands.
package broadcast

import (
	"context"

	"github.com/rs/zerolog/log"

	"posfront/internal/model"
)

// Sink receives a copy of each published selection envelope.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, envelope *model.SelectionEnvelope) error
}

// Broadcaster delivers envelopes to all sinks. A failing sink is logged
// and skipped; it never blocks delivery to the others, and Publish itself
// never fails.
type Broadcaster struct {
	sinks []Sink
}

func NewBroadcaster(sinks ...Sink) *Broadcaster {
	return &Broadcaster{sinks: sinks}
}

// Publish fans the envelope out. A nil envelope means there is nothing to
// publish and is a no-op. Returns the number of sinks that accepted it.
func (b *Broadcaster) Publish(ctx context.Context, envelope *model.SelectionEnvelope) int {
	if envelope == nil {
		return 0
	}
	delivered := 0
	for _, sink := range b.sinks {
		if err := sink.Deliver(ctx, envelope); err != nil {
			log.Warn().Err(err).Str("sink", sink.Name()).Msg("no se pudo entregar la seleccion")
			continue
		}
		delivered++
	}
	return delivered
}
