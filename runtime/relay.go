package runtime

import (
	"context"
	"log/slog"

	"game-relay/contract"
)

// Relay fans outbound envelopes to connection sinks. Delivery is
// fire-and-forget: a sink that fails or lags is skipped, never retried,
// and never blocks the lifecycle sequence that produced the message.
// Sinks are resolved at send time against the registry, so a broadcast
// ordered before a disconnect simply skips the vanished connection.
type Relay struct {
	log      *slog.Logger
	registry *Registry
}

func NewRelay(log *slog.Logger, registry *Registry) *Relay {
	return &Relay{log: log, registry: registry}
}

// ToConn delivers one envelope to a single connection.
func (rl *Relay) ToConn(ctx context.Context, connID, event string, data any) {
	sink, ok := rl.registry.Sink(connID)
	if !ok {
		return
	}
	rl.consume(ctx, sink, contract.Envelope{Event: event, Data: data})
}

// ToRoom delivers one envelope to every occupant of a room except the
// sender.
func (rl *Relay) ToRoom(ctx context.Context, room, except, event string, data any) {
	env := contract.Envelope{Event: event, Data: data}
	for _, sink := range rl.registry.SinksForRoom(room, except) {
		rl.consume(ctx, sink, env)
	}
}

// ToAll delivers one envelope to every live connection, lobby included.
func (rl *Relay) ToAll(ctx context.Context, event string, data any) {
	env := contract.Envelope{Event: event, Data: data}
	for _, sink := range rl.registry.AllSinks() {
		rl.consume(ctx, sink, env)
	}
}

func (rl *Relay) consume(ctx context.Context, sink contract.EventSink, env contract.Envelope) {
	if err := sink.Consume(ctx, env); err != nil {
		rl.log.Debug("Dropped outbound event", "event", env.Event, "error", err)
	}
}
