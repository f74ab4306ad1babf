package relay

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu         sync.Mutex
	frames     [][]byte
	failWrites bool
	closed     bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failWrites {
		return errors.New("transport broken")
	}

	if messageType == websocket.TextMessage {
		c.frames = append(c.frames, data)
	}

	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	return nil
}

func newTestSession(queueSize int) *Session {
	return NewSession(&fakeConn{}, queueSize)
}

// drainFrames empties the session's send queue without running a write pump.
func drainFrames(s *Session) [][]byte {
	var frames [][]byte
	for {
		select {
		case frame := <-s.send:
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

func isClosed(s *Session) bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	reg := NewRegistry()

	a := newTestSession(8)
	b := newTestSession(8)
	c := newTestSession(8)

	room := reg.Join("r1", a)
	reg.Join("r1", b)
	reg.Join("r1", c)

	frame := []byte(`{"type":"chat","payload":"blob"}`)
	room.Broadcast(a, frame)

	assert.Empty(t, drainFrames(a), "sender must not receive its own envelope")

	bFrames := drainFrames(b)
	cFrames := drainFrames(c)

	require.Len(t, bFrames, 1)
	require.Len(t, cFrames, 1)
	assert.Equal(t, frame, bFrames[0], "envelope must be delivered unchanged")
	assert.Equal(t, frame, cFrames[0])
}

func TestBroadcastFIFOPerSenderRecipientPair(t *testing.T) {
	reg := NewRegistry()

	a := newTestSession(8)
	b := newTestSession(8)

	room := reg.Join("r1", a)
	reg.Join("r1", b)

	e1 := []byte(`{"type":"chat","payload":"one"}`)
	e2 := []byte(`{"type":"chat","payload":"two"}`)

	room.Broadcast(a, e1)
	room.Broadcast(a, e2)

	frames := drainFrames(b)
	require.Len(t, frames, 2)
	assert.Equal(t, e1, frames[0])
	assert.Equal(t, e2, frames[1])
}

func TestBroadcastIsolatesStalledRecipient(t *testing.T) {
	reg := NewRegistry()

	a := newTestSession(8)
	stalled := newTestSession(1)
	healthy := newTestSession(8)

	room := reg.Join("r1", a)
	reg.Join("r1", stalled)
	reg.Join("r1", healthy)

	// Two frames overflow the stalled session's single-slot queue.
	room.Broadcast(a, []byte(`{"type":"chat","payload":"one"}`))
	room.Broadcast(a, []byte(`{"type":"chat","payload":"two"}`))

	assert.True(t, isClosed(stalled), "session with a full queue must be disconnected")
	assert.False(t, isClosed(a), "sender must be unaffected")
	assert.False(t, isClosed(healthy))

	assert.Len(t, drainFrames(healthy), 2, "remaining recipients still get every frame")
}

func TestBroadcastToClosedSessionIsNoop(t *testing.T) {
	reg := NewRegistry()

	a := newTestSession(8)
	b := newTestSession(8)

	room := reg.Join("r1", a)
	reg.Join("r1", b)

	b.Close()
	room.Broadcast(a, []byte(`{"type":"chat","payload":"late"}`))

	assert.False(t, isClosed(a))
}

func TestWritePumpDeliversFrames(t *testing.T) {
	conn := &fakeConn{}
	s := NewSession(conn, 8)

	go s.WritePump()

	frame := []byte(`{"type":"chat","payload":"x"}`)
	s.enqueue(frame)

	require.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.frames) == 1
	}, time.Second, 5*time.Millisecond)

	s.Close()
}

func TestWritePumpClosesSessionOnWriteError(t *testing.T) {
	conn := &fakeConn{failWrites: true}
	s := NewSession(conn, 8)

	go s.WritePump()

	s.enqueue([]byte(`{"type":"chat","payload":"x"}`))

	require.Eventually(t, func() bool {
		return isClosed(s)
	}, time.Second, 5*time.Millisecond)
}

func TestCloseIsIdempotent(t *testing.T) {
	s := newTestSession(1)

	s.Close()
	assert.NotPanics(t, func() { s.Close() })
}
