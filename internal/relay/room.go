package relay

import (
	"sync"
)

// Room is one relay namespace: the sessions sharing an identifier, plus the
// single call slot. Purely in-memory, lifetime bounded by membership.
type Room struct {
	id string

	mu      sync.Mutex
	members []*Session // join order

	call callSlot
}

func newRoom(id string) *Room {
	return &Room{id: id}
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members = append(r.members, s)
}

// remove reports whether the room is empty afterwards.
func (r *Room) remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.members {
		if m == s {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}

	r.resetCallLocked(s)

	return len(r.members) == 0
}

// Others returns a snapshot of every member except from, in join order.
func (r *Room) Others(from *Session) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.othersLocked(from)
}

func (r *Room) othersLocked(from *Session) []*Session {
	others := make([]*Session, 0, len(r.members))
	for _, m := range r.members {
		if m != from {
			others = append(others, m)
		}
	}

	return others
}

// Broadcast delivers frame unchanged to every other current member.
// Best-effort, at most once per member: a failed or stalled recipient is
// disconnected on its own, never surfacing an error to the sender.
func (r *Room) Broadcast(from *Session, frame []byte) {
	for _, m := range r.Others(from) {
		m.enqueue(frame)
	}
}
