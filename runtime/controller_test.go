package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"game-relay/contract"
	"game-relay/domain"

	"github.com/stretchr/testify/require"
)

// captureSink records every envelope a connection would have received.
type captureSink struct {
	mu     sync.Mutex
	events []contract.Envelope
}

func (s *captureSink) Consume(_ context.Context, e contract.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *captureSink) byEvent(name string) []contract.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []contract.Envelope
	for _, e := range s.events {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}

func (s *captureSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func newTestController() *Controller {
	return NewController(slog.Default(), NewRegistry())
}

func TestController_Connect_SendsRoomTable(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	sink := &captureSink{}

	// When a client connects to an empty server
	ctrl.Connect(ctx, "c1", sink)

	// Then it is greeted with the (empty) room table
	lists := sink.byEvent(domain.EventRoomsList)
	req.Len(lists, 1)
	req.Empty(lists[0].Data.(domain.Table))
}

func TestController_CreateRoom_JoinsCreator(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	sink := &captureSink{}
	ctrl.Connect(ctx, "c1", sink)
	sink.reset()

	ctrl.CreateRoom(ctx, "c1", "alpha", "")

	// The creator gets the occupant map with itself seeded
	initial := sink.byEvent(domain.EventInitialState)
	req.Len(initial, 1)
	occupants := initial[0].Data.(map[string]domain.State)
	req.Equal(domain.State{"x": 0, "y": 0, "cRoom": "alpha"}, occupants["c1"])

	// And the lobby-wide table now lists alpha with one occupant
	lists := sink.byEvent(domain.EventRoomsList)
	req.Len(lists, 1)
	table := lists[0].Data.(domain.Table)
	req.Len(table["alpha"].Players, 1)
	req.Equal("custom", table["alpha"].Kind)
}

func TestController_CreateRoom_ReservedName_NoOp(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	sink := &captureSink{}
	ctrl.Connect(ctx, "c1", sink)
	sink.reset()

	ctrl.CreateRoom(ctx, "c1", "__proto__", "")
	ctrl.CreateRoom(ctx, "c1", "", "")

	// No room, no join, no broadcast
	req.Empty(sink.events)
	req.Empty(ctrl.registry.Snapshot())
}

func TestController_CreateRoom_ExistingName_JoinsWithoutMutating(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	c1, c2 := &captureSink{}, &captureSink{}
	ctrl.Connect(ctx, "c1", c1)
	ctrl.Connect(ctx, "c2", c2)
	ctrl.CreateRoom(ctx, "c1", "alpha", "arena")

	// When a second client "creates" the same room with another kind
	ctrl.CreateRoom(ctx, "c2", "alpha", "other")

	// Then it joined, and the original kind survived
	table := ctrl.registry.Snapshot()
	req.Len(table["alpha"].Players, 2)
	req.Equal("arena", table["alpha"].Kind)
}

func TestController_JoinRoom_UnknownRoom_StaysInLobby(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	sink := &captureSink{}
	ctrl.Connect(ctx, "c1", sink)
	sink.reset()

	ctrl.JoinRoom(ctx, "c1", "ghost")

	req.Empty(sink.events)
	_, inRoom := ctrl.registry.CurrentRoom("c1")
	req.False(inRoom)
}

func TestController_Update_RelaysToOthersOnly(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	c1, c2 := &captureSink{}, &captureSink{}
	ctrl.Connect(ctx, "c1", c1)
	ctrl.Connect(ctx, "c2", c2)
	ctrl.CreateRoom(ctx, "c1", "alpha", "")
	ctrl.JoinRoom(ctx, "c2", "alpha")
	c1.reset()
	c2.reset()

	// When c1 sends a cursor update
	ctrl.Update(ctx, "c1", "updateCursor", domain.State{"x": 5, "y": 7})

	// Then only c2 receives the relayed event, tagged with the sender
	req.Empty(c1.events)
	relayed := c2.byEvent("update")
	req.Len(relayed, 1)
	payload := relayed[0].Data.(domain.State)
	req.Equal("c1", payload["id"])
	req.Equal(domain.State{"x": 5, "y": 7}, payload["cursorData"])

	// And the stored state was fully replaced
	req.Equal(domain.State{"x": 5, "y": 7}, ctrl.registry.Snapshot()["alpha"].Players["c1"])
}

func TestController_Update_UnknownChannel_NoOp(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	c1, c2 := &captureSink{}, &captureSink{}
	ctrl.Connect(ctx, "c1", c1)
	ctrl.Connect(ctx, "c2", c2)
	ctrl.CreateRoom(ctx, "c1", "alpha", "")
	ctrl.JoinRoom(ctx, "c2", "alpha")
	seed := ctrl.registry.Snapshot()["alpha"].Players["c1"]
	c2.reset()

	ctrl.Update(ctx, "c1", "definitelyNotAChannel", domain.State{"x": 1})

	req.Empty(c2.events)
	req.Equal(seed, ctrl.registry.Snapshot()["alpha"].Players["c1"])
}

func TestController_Update_FromLobby_NoOp(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	c1, c2 := &captureSink{}, &captureSink{}
	ctrl.Connect(ctx, "c1", c1)
	ctrl.Connect(ctx, "c2", c2)
	ctrl.CreateRoom(ctx, "c2", "alpha", "")
	c2.reset()

	// c1 never joined a room
	ctrl.Update(ctx, "c1", "updateCursor", domain.State{"x": 1})

	req.Empty(c2.events)
}

func TestController_GetRooms_RelaysSnapshot(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	c1, c2 := &captureSink{}, &captureSink{}
	ctrl.Connect(ctx, "c1", c1)
	ctrl.Connect(ctx, "c2", c2)
	ctrl.CreateRoom(ctx, "c1", "alpha", "")
	ctrl.JoinRoom(ctx, "c2", "alpha")
	c2.reset()

	ctrl.Update(ctx, "c1", "getRooms", domain.State{"marker": true})

	// The other occupant receives the room table, not the inbound data
	relayed := c2.byEvent("gotRooms")
	req.Len(relayed, 1)
	payload := relayed[0].Data.(domain.State)
	req.Equal("c1", payload["id"])
	table := payload["roomData"].(domain.Table)
	req.Contains(table, "alpha")

	// The sender's stored state was still replaced by the inbound data
	req.Equal(domain.State{"marker": true}, ctrl.registry.Snapshot()["alpha"].Players["c1"])
}

func TestController_Switch_AnnouncesLeaveThenJoin(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	c1, c2, keeper, lobby := &captureSink{}, &captureSink{}, &captureSink{}, &captureSink{}
	ctrl.Connect(ctx, "c1", c1)
	ctrl.Connect(ctx, "c2", c2)
	ctrl.Connect(ctx, "keeper", keeper)
	ctrl.Connect(ctx, "lobby", lobby)
	ctrl.CreateRoom(ctx, "c1", "alpha", "")
	ctrl.JoinRoom(ctx, "c2", "alpha")
	ctrl.CreateRoom(ctx, "keeper", "beta", "")
	c2.reset()
	lobby.reset()

	// When c1 switches from alpha to beta
	ctrl.JoinRoom(ctx, "c1", "beta")

	// Then the old room heard the removal
	removed := c2.byEvent(domain.EventRemovePlayer)
	req.Len(removed, 1)
	req.Equal("c1", removed[0].Data)

	// And the lobby heard two table refreshes: after the leave, after the join
	lists := lobby.byEvent(domain.EventRoomsList)
	req.Len(lists, 2)
	intermediate := lists[0].Data.(domain.Table)
	req.Len(intermediate["alpha"].Players, 1)
	req.Len(intermediate["beta"].Players, 1)
	final := lists[1].Data.(domain.Table)
	req.Len(final["alpha"].Players, 1)
	req.Len(final["beta"].Players, 2)
}

func TestController_Disconnect_FromLobby_Silent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	c1, c2 := &captureSink{}, &captureSink{}
	ctrl.Connect(ctx, "c1", c1)
	ctrl.Connect(ctx, "c2", c2)
	c2.reset()

	// When a lobby-only connection disconnects
	ctrl.Disconnect(ctx, "c1")

	// Then nobody hears anything
	req.Empty(c2.events)
}

// TestController_FullScenario walks the whole lifecycle end to end:
// create, join, relay, disconnects, room deletion.
func TestController_FullScenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := newTestController()
	c1, c2 := &captureSink{}, &captureSink{}

	// C1 connects and creates "alpha"
	ctrl.Connect(ctx, "c1", c1)
	ctrl.CreateRoom(ctx, "c1", "alpha", "")

	table := ctrl.registry.Snapshot()
	req.Len(table["alpha"].Players, 1)
	req.Equal(domain.State{"x": 0, "y": 0, "cRoom": "alpha"}, table["alpha"].Players["c1"])

	// C2 connects and joins "alpha"
	ctrl.Connect(ctx, "c2", c2)
	c1.reset()
	ctrl.JoinRoom(ctx, "c2", "alpha")

	initial := c2.byEvent(domain.EventInitialState)
	req.Len(initial, 1)
	occupants := initial[0].Data.(map[string]domain.State)
	req.Contains(occupants, "c1")
	req.Contains(occupants, "c2")

	newcomers := c1.byEvent(domain.EventNewPlayer)
	req.Len(newcomers, 1)
	req.Equal("c2", newcomers[0].Data.(domain.State)["id"])

	// C1 disconnects: C2 hears it, the room survives with one occupant
	c2.reset()
	ctrl.Disconnect(ctx, "c1")

	removed := c2.byEvent(domain.EventRemovePlayer)
	req.Len(removed, 1)
	req.Equal("c1", removed[0].Data)

	table = ctrl.registry.Snapshot()
	req.Contains(table, "alpha")
	req.Len(table["alpha"].Players, 1)

	// C2 disconnects: the room empties and is deleted
	ctrl.Disconnect(ctx, "c2")
	req.NotContains(ctrl.registry.Snapshot(), "alpha")
}
