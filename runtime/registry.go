// Package runtime hosts the room registry, the broadcast relay and the
// per-connection lifecycle controller. It moves state and messages around
// without interpreting payload contents; those belong to the clients.
package runtime

import (
	"sync"

	"game-relay/contract"
	"game-relay/domain"
)

// Registry owns the room table, the session directory (connection id ->
// sink) and the connection -> room index. It is the single source of truth
// for the existence invariant: a room is present iff it has occupants.
//
// Locking: structural operations (connect, disconnect, create, join and the
// leave they may imply) serialize on mu, so a snapshot can never observe a
// half-applied transition. State updates, the hot path, only take the read
// lock plus the target room's own lock; updates to different rooms do not
// contend with each other.
type Registry struct {
	mu        sync.RWMutex
	rooms     map[string]*domain.Room
	sessions  map[string]contract.EventSink
	connRooms map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:     make(map[string]*domain.Room),
		sessions:  make(map[string]contract.EventSink),
		connRooms: make(map[string]string),
	}
}

// JoinResult captures one atomic join, including the leave it may have
// implied when the connection switched rooms.
type JoinResult struct {
	Left      *LeaveResult
	Room      string
	Seed      domain.State
	Occupants map[string]domain.State
	Table     domain.Table
}

// LeaveResult captures one atomic leave. Table is the room table as it
// stood right after the leave applied, so the lobby broadcast reflects
// exactly that transition.
type LeaveResult struct {
	Room    string
	Deleted bool
	Table   domain.Table
}

// Connect registers a live connection's sink. The connection starts in the
// lobby, member of no room.
func (r *Registry) Connect(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = sink
}

// Disconnect removes the connection's session and, if it occupied a room,
// applies the leave sequence. Calling it twice is harmless: the second call
// finds no index entry and returns nil.
func (r *Registry) Disconnect(connID string) *LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, connID)
	prev, ok := r.connRooms[connID]
	if !ok {
		return nil
	}
	return r.leaveLocked(connID, prev)
}

// CreateRoom allocates an empty room under name. It is idempotent: an
// existing room keeps its kind and auxiliary data untouched. Invalid names
// are a no-op. Creation never admits an occupant by itself.
func (r *Registry) CreateRoom(name, kind string) (created bool) {
	if !domain.ValidRoomName(name) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[name]; ok {
		return false
	}
	r.rooms[name] = domain.NewRoom(name, kind)
	return true
}

func (r *Registry) RoomExists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[name]
	return ok
}

// Join moves connID into name in one critical section: the leave from any
// previous room and the insertion into the new one are externally a single
// transition. Returns false without any side effect if the room does not
// exist; rooms are only created explicitly.
//
// Re-joining the current room skips the leave but still re-seeds the
// occupant state, matching what clients already rely on.
func (r *Registry) Join(connID, name string) (*JoinResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[name]
	if !ok {
		return nil, false
	}
	var left *LeaveResult
	if prev, inRoom := r.connRooms[connID]; inRoom && prev != name {
		left = r.leaveLocked(connID, prev)
	}
	seed := room.Add(connID)
	r.connRooms[connID] = name
	return &JoinResult{
		Left:      left,
		Room:      name,
		Seed:      seed,
		Occupants: room.Occupants(),
		Table:     r.snapshotLocked(),
	}, true
}

// Leave removes connID from its current room, deleting the room when it
// empties. Returns nil when the connection was not in a room.
func (r *Registry) Leave(connID string) *LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.connRooms[connID]
	if !ok {
		return nil
	}
	return r.leaveLocked(connID, prev)
}

// leaveLocked applies the leave sequence under the table lock: remove the
// occupant, drop the index entry, delete the room once empty. A stale index
// entry pointing at a vanished room is cleared silently.
func (r *Registry) leaveLocked(connID, name string) *LeaveResult {
	delete(r.connRooms, connID)
	room, ok := r.rooms[name]
	if !ok {
		return nil
	}
	removed, empty := room.Remove(connID)
	if !removed {
		return nil
	}
	deleted := false
	if empty {
		delete(r.rooms, name)
		deleted = true
	}
	return &LeaveResult{Room: name, Deleted: deleted, Table: r.snapshotLocked()}
}

// Update replaces connID's stored state with payload. It applies only when
// the connection currently occupies a room and is still a recognized
// occupant of it; every other interleaving (lobby, vanished room, racing
// disconnect) is a no-op.
func (r *Registry) Update(connID string, payload domain.State) (roomName string, applied bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.connRooms[connID]
	if !ok {
		return "", false
	}
	room, ok := r.rooms[name]
	if !ok {
		return "", false
	}
	return name, room.Replace(connID, payload)
}

// Snapshot returns a copy of the full room table. Callers own the result;
// mutating it never touches registry state.
func (r *Registry) Snapshot() domain.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() domain.Table {
	table := make(domain.Table, len(r.rooms))
	for name, room := range r.rooms {
		table[name] = room.Snapshot()
	}
	return table
}

// Sink resolves one connection's sink.
func (r *Registry) Sink(connID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[connID]
	return sink, ok
}

// SinksForRoom retrieves the sinks of every occupant of a room except the
// given connection. It performs a two-step lookup: occupant ids from the
// room, then resolution against the session directory, so a connection
// whose session is already gone is simply skipped.
func (r *Registry) SinksForRoom(name, except string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[name]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for connID := range room.Occupants() {
		if connID == except {
			continue
		}
		if sink, live := r.sessions[connID]; live {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// AllSinks returns every live session sink, lobby included.
func (r *Registry) AllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, sink := range r.sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}

// CurrentRoom reports which room a connection occupies, if any.
func (r *Registry) CurrentRoom(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.connRooms[connID]
	return name, ok
}

// Stats implements contract.StatsSource.
func (r *Registry) Stats() contract.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	occupants := 0
	for _, room := range r.rooms {
		occupants += room.Size()
	}
	return contract.Stats{
		Rooms:     len(r.rooms),
		Occupants: occupants,
		Sessions:  len(r.sessions),
	}
}
