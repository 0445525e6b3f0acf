// Package ws is the WebSocket transport: it upgrades HTTP connections,
// assigns connection identities, decodes inbound envelopes into controller
// calls and carries outbound envelopes back to the socket. The relay core
// never sees a websocket.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"game-relay/contract"
	"game-relay/domain"
	"game-relay/errors"

	"github.com/gorilla/websocket"
)

const (
	defaultWriteWait = 10 * time.Second
	defaultPongWait  = 60 * time.Second
	defaultReadLimit = 64 * 1024
)

// Limits bundles the per-connection socket tunables. The ping interval is
// derived from PongWait so a pong always has time to arrive before the
// read deadline expires.
type Limits struct {
	ReadLimit int64
	WriteWait time.Duration
	PongWait  time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		ReadLimit: defaultReadLimit,
		WriteWait: defaultWriteWait,
		PongWait:  defaultPongWait,
	}
}

// withDefaults fills zero fields so a partially populated Limits still
// yields a working connection.
func (l Limits) withDefaults() Limits {
	if l.ReadLimit <= 0 {
		l.ReadLimit = defaultReadLimit
	}
	if l.WriteWait <= 0 {
		l.WriteWait = defaultWriteWait
	}
	if l.PongWait <= 0 {
		l.PongWait = defaultPongWait
	}
	return l
}

func (l Limits) pingPeriod() time.Duration {
	return (l.PongWait * 9) / 10
}

// inboundEnvelope is one message off the wire. Data stays raw until the
// event name tells us what shape to expect.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client is one connected player: the socket, its identity and a buffered
// outbound queue. It implements contract.EventSink so the relay can hand
// it envelopes without knowing about websockets.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan contract.Envelope
	limits Limits
	log    *slog.Logger
}

func newClient(id string, conn *websocket.Conn, bufferSize int, limits Limits, log *slog.Logger) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		send:   make(chan contract.Envelope, bufferSize),
		limits: limits.withDefaults(),
		log:    log,
	}
}

// Consume is called by the relay's fanout. It redirects the envelope into
// the connection's outbound queue; the write pump takes it from there.
// If the queue is full the event is dropped: relaying is best-effort and
// a slow consumer must never block a room.
func (c *Client) Consume(_ context.Context, e contract.Envelope) error {
	select {
	case c.send <- e:
		return nil
	default:
		return errors.ErrSlowConsumer
	}
}

// readPump decodes inbound envelopes and hands them to the controller.
// It runs on the handler goroutine; when the read side fails for any
// reason the connection counts as disconnected and the leave sequence
// runs exactly once.
func (c *Client) readPump(ctx context.Context, ctrl contract.IController) {
	defer func() {
		ctrl.Disconnect(context.WithoutCancel(ctx), c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.limits.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.limits.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.limits.PongWait))
	})

	for {
		var env inboundEnvelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("Connection read failed", "conn_id", c.id, "error", err)
			}
			return
		}
		c.dispatch(ctx, ctrl, env)
	}
}

// dispatch maps one inbound envelope onto the controller. Anything
// malformed is dropped without a reply, matching the silent no-op error
// contract of the protocol.
func (c *Client) dispatch(ctx context.Context, ctrl contract.IController, env inboundEnvelope) {
	switch env.Event {
	case domain.EventCreateRoom:
		var req createRoomRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		if err := validate.Struct(req); err != nil {
			return
		}
		ctrl.CreateRoom(ctx, c.id, req.Name, req.Kind)
	case domain.EventJoinRoom:
		var name string
		if err := json.Unmarshal(env.Data, &name); err != nil {
			return
		}
		ctrl.JoinRoom(ctx, c.id, name)
	default:
		payload := domain.State{}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &payload); err != nil {
				return
			}
		}
		ctrl.Update(ctx, c.id, env.Event, payload)
	}
}

// writePump owns all writes to the socket: queued envelopes plus the
// keepalive pings. Any write error tears the connection down; the read
// pump then handles the disconnect.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.limits.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.limits.WriteWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.limits.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
