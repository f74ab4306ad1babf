// Package relay implements the ephemeral room relay: membership bookkeeping,
// envelope fan-out and the per-room call-signaling state machine.
//
// Locking: the registry mutex guards only the room map; each room has its
// own mutex guarding membership and call state, so unrelated rooms never
// contend. Fan-out snapshots the member set under the room lock and performs
// the sends outside it.
package relay

import (
	"sync"
)

// Registry maps room IDs to live rooms. A room exists only while it has at
// least one member: the first Join creates it, the last Leave deletes it.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Join adds s to the room, creating the room if absent. Joins never fail:
// anyone holding the room link is let in.
func (r *Registry) Join(roomID string, s *Session) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = newRoom(roomID)
		r.rooms[roomID] = room
	}

	room.add(s)
	s.room = room

	return room
}

// Leave removes s from its room and deletes the room once empty. Idempotent:
// leaving twice, or leaving a session that never joined, is a no-op. If s
// held a call role the room's call slot is reset so a new call can start.
func (r *Registry) Leave(s *Session) {
	room := s.room
	if room == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if room.remove(s) {
		delete(r.rooms, room.id)
	}

	s.room = nil
}

func (r *Registry) roomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rooms)
}
