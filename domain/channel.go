package domain

// Protocol event names shared by the controller and the transport layer.
const (
	EventCreateRoom   = "create_room"
	EventJoinRoom     = "join_room"
	EventRoomsList    = "rooms_list"
	EventInitialState = "initialState"
	EventNewPlayer    = "newPlayer"
	EventRemovePlayer = "removePlayer"
)

// Channel describes one relay channel: the inbound event clients emit, the
// outbound event the rest of the room receives, and the payload field the
// forwarded data travels under. A channel with WantsSnapshot forwards the
// current room table instead of the inbound data.
type Channel struct {
	Inbound       string
	Outbound      string
	Field         string
	WantsSnapshot bool
}

// channels is the static inbound -> outbound table. All nine channels
// behave identically: replace the sender's stored state, relay to every
// other occupant of its room. Only the event and field names differ,
// and those are frozen by existing clients.
var channels = map[string]Channel{
	"updateCursor": {Inbound: "updateCursor", Outbound: "update", Field: "cursorData"},
	"updateBlocks": {Inbound: "updateBlocks", Outbound: "updateBl", Field: "blockData"},
	"updateChat":   {Inbound: "updateChat", Outbound: "updateCh", Field: "chatData"},
	"updateDamage": {Inbound: "updateDamage", Outbound: "updateD", Field: "damageData"},
	"removeBullet": {Inbound: "removeBullet", Outbound: "updateRb", Field: "bulletData"},
	"updateBullet": {Inbound: "updateBullet", Outbound: "updateB", Field: "bulletData"},
	"updateData":   {Inbound: "updateData", Outbound: "updateP", Field: "playerData"},
	"updateWait":   {Inbound: "updateWait", Outbound: "updateW", Field: "waitData"},
	"getRooms":     {Inbound: "getRooms", Outbound: "gotRooms", Field: "roomData", WantsSnapshot: true},
}

// LookupChannel resolves an inbound event name to its channel description.
func LookupChannel(inbound string) (Channel, bool) {
	c, ok := channels[inbound]
	return c, ok
}
