package client

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lepko/lepko/internal/client/secret"
)

// DisplayedMessage is one decrypted message currently visible in a view.
type DisplayedMessage struct {
	ID         uuid.UUID
	Text       string
	ReceivedAt time.Time
}

// View is a participant's local message list with self-destruct timers.
// Each receiver arms its own timer on receipt, so a message with a TTL
// disappears independently on every display, not simultaneously.
type View struct {
	mu       sync.Mutex
	closed   bool
	messages []DisplayedMessage
	timers   map[uuid.UUID]*time.Timer
}

func NewView() *View {
	return &View{
		timers: make(map[uuid.UUID]*time.Timer),
	}
}

// Add displays a decrypted message and schedules its removal when its TTL
// is positive. TTL 0 means the message stays until the view is closed.
func (v *View) Add(msg secret.Message) uuid.UUID {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := uuid.New()

	if v.closed {
		return id
	}

	v.messages = append(v.messages, DisplayedMessage{
		ID:         id,
		Text:       msg.Text,
		ReceivedAt: time.Now(),
	})

	if msg.TTLSeconds > 0 {
		v.timers[id] = time.AfterFunc(
			time.Duration(msg.TTLSeconds)*time.Second,
			func() { v.Remove(id) },
		)
	}

	return id
}

// Remove deletes a message from the view. No-op for unknown IDs.
func (v *View) Remove(id uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, m := range v.messages {
		if m.ID == id {
			v.messages = append(v.messages[:i], v.messages[i+1:]...)
			break
		}
	}

	if timer, ok := v.timers[id]; ok {
		timer.Stop()
		delete(v.timers, id)
	}
}

// Messages returns the visible messages in receipt order.
func (v *View) Messages() []DisplayedMessage {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]DisplayedMessage, len(v.messages))
	copy(out, v.messages)

	return out
}

// Close stops all pending timers and empties the view.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true

	for id, timer := range v.timers {
		timer.Stop()
		delete(v.timers, id)
	}

	v.messages = nil
}
