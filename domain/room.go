package domain

import "sync"

// DefaultKind tags rooms created without an explicit classification.
const DefaultKind = "custom"

// Room is a named, ephemeral group of occupants sharing broadcast state.
// The registry enforces the existence invariant (a room lives exactly as
// long as it has occupants); the room itself only guards its maps.
//
// Occupant mutations take the room's own lock so that traffic in one room
// never contends with traffic in another. Structural changes (creation,
// deletion) are serialized by the registry.
type Room struct {
	mu        sync.RWMutex
	Name      string
	Kind      string
	occupants map[string]State
	blocks    map[string]State
}

func NewRoom(name, kind string) *Room {
	if kind == "" {
		kind = DefaultKind
	}
	return &Room{
		Name:      name,
		Kind:      kind,
		occupants: make(map[string]State),
		blocks:    make(map[string]State),
	}
}

// Add seeds a fresh occupant state for connID, replacing any previous one,
// and returns the seed.
func (r *Room) Add(connID string) State {
	seed := SeedState(r.Name)
	r.mu.Lock()
	r.occupants[connID] = seed
	r.mu.Unlock()
	return seed
}

// Remove deletes connID's occupant state. It reports whether an occupant
// was actually removed and whether the room is now empty, so the caller
// can apply the delete-on-empty invariant.
func (r *Room) Remove(connID string) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.occupants[connID]; !ok {
		return false, len(r.occupants) == 0
	}
	delete(r.occupants, connID)
	return true, len(r.occupants) == 0
}

// Replace swaps connID's stored state for the incoming payload, wholesale.
// It only applies while connID is a current occupant, which is what guards
// an update racing a disconnect.
func (r *Room) Replace(connID string, payload State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.occupants[connID]; !ok {
		return false
	}
	r.occupants[connID] = payload
	return true
}

func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.occupants)
}

// Occupants returns a copy of the occupant map. The State values are
// shared: they are replaced wholesale on update, never mutated in place.
func (r *Room) Occupants() map[string]State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	occ := make(map[string]State, len(r.occupants))
	for id, st := range r.occupants {
		occ[id] = st
	}
	return occ
}

// Snapshot renders the room in the shape rooms_list clients parse.
func (r *Room) Snapshot() RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := RoomSnapshot{
		Players: make(map[string]State, len(r.occupants)),
		Blocks:  make(map[string]State, len(r.blocks)),
		Kind:    r.Kind,
	}
	for id, st := range r.occupants {
		snap.Players[id] = st
	}
	for key, doc := range r.blocks {
		snap.Blocks[key] = doc
	}
	return snap
}

// RoomSnapshot is the externally consistent copy of one room carried by
// rooms_list broadcasts. Field names match the wire format clients expect.
type RoomSnapshot struct {
	Players map[string]State `json:"players"`
	Blocks  map[string]State `json:"blocks"`
	Kind    string           `json:"type"`
}

// Table is a point-in-time copy of the whole room table.
type Table map[string]RoomSnapshot
