package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"game-relay/contract"
	"game-relay/domain"
)

// Ensure *Controller implements the contract surface at compile time.
var _ contract.IController = (*Controller)(nil)

// Controller drives the per-connection lifecycle: which room a connection
// occupies, how it moves between rooms, and what everybody else hears
// about it. Each connection is either in the lobby or in exactly one room;
// a switch always runs the full leave sequence before the join, never a
// shortcut.
//
// Per the error contract, everything a client can get wrong (reserved
// names, unknown rooms, updates from the lobby, races with disconnect)
// resolves as a silent no-op. Broadcasts are emitted after the registry
// mutation commits, so no network send ever happens under a lock.
type Controller struct {
	log      *slog.Logger
	registry *Registry
	relay    *Relay
}

func NewController(log *slog.Logger, registry *Registry) *Controller {
	return &Controller{
		log:      log,
		registry: registry,
		relay:    NewRelay(log, registry),
	}
}

// Connect registers a new connection and sends it the current room table.
func (c *Controller) Connect(ctx context.Context, connID string, sink contract.EventSink) {
	c.registry.Connect(connID, sink)
	c.relay.ToConn(ctx, connID, domain.EventRoomsList, c.registry.Snapshot())
	c.log.Info("Player connected", "conn_id", connID)
}

// Disconnect runs the leave sequence for whatever room the connection
// occupied. A disconnect from the lobby, or one arriving after the
// connection already left via a switch, emits nothing.
func (c *Controller) Disconnect(ctx context.Context, connID string) {
	left := c.registry.Disconnect(connID)
	c.log.Info("Player disconnected", "conn_id", connID)
	if left == nil {
		return
	}
	c.announceLeave(ctx, connID, left)
}

// CreateRoom creates the room if needed (idempotent, existing kind and
// auxiliary data are never overwritten) and joins the caller to it.
func (c *Controller) CreateRoom(ctx context.Context, connID, name, kind string) {
	if !domain.ValidRoomName(name) {
		return
	}
	if c.registry.CreateRoom(name, kind) {
		c.log.Info(fmt.Sprintf("Room created: %s", name))
	}
	c.join(ctx, connID, name)
}

// JoinRoom joins an existing room. A name with no room behind it is a
// no-op: rooms come into existence through CreateRoom only.
func (c *Controller) JoinRoom(ctx context.Context, connID, name string) {
	if !domain.ValidRoomName(name) {
		return
	}
	c.join(ctx, connID, name)
}

// join runs the shared join sequence once the target is known: leave the
// previous room if any, seed the occupant, send the room's occupant map to
// the joiner, announce the newcomer to the rest of the room, and refresh
// the lobby-wide table.
func (c *Controller) join(ctx context.Context, connID, name string) {
	res, ok := c.registry.Join(connID, name)
	if !ok {
		return
	}
	if res.Left != nil {
		c.announceLeave(ctx, connID, res.Left)
	}

	c.relay.ToConn(ctx, connID, domain.EventInitialState, res.Occupants)

	newcomer := domain.State{"id": connID}
	for k, v := range res.Seed {
		newcomer[k] = v
	}
	c.relay.ToRoom(ctx, name, connID, domain.EventNewPlayer, newcomer)
	c.relay.ToAll(ctx, domain.EventRoomsList, res.Table)
	c.log.Info(fmt.Sprintf("Player %s joined room %s", connID, name))
}

func (c *Controller) announceLeave(ctx context.Context, connID string, left *LeaveResult) {
	c.relay.ToRoom(ctx, left.Room, connID, domain.EventRemovePlayer, connID)
	if left.Deleted {
		c.log.Info(fmt.Sprintf("Room deleted: %s", left.Room))
	}
	c.relay.ToAll(ctx, domain.EventRoomsList, left.Table)
}

// Update handles every relay channel with one parameterized behavior:
// resolve the sender's room, replace its stored state wholesale, forward
// to the rest of the room under the channel's outbound name. Unknown
// channels and senders that lost a race with disconnect are no-ops.
func (c *Controller) Update(ctx context.Context, connID, channel string, data domain.State) {
	ch, ok := domain.LookupChannel(channel)
	if !ok {
		return
	}
	room, applied := c.registry.Update(connID, data)
	if !applied {
		return
	}
	var forwarded any = data
	if ch.WantsSnapshot {
		forwarded = c.registry.Snapshot()
	}
	c.relay.ToRoom(ctx, room, connID, ch.Outbound, domain.State{
		"id":     connID,
		ch.Field: forwarded,
	})
}
