package relay

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lepko/lepko/internal/application/constant"
	"github.com/lepko/lepko/internal/application/metric"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size. 64 KB fits any SDP.
	MaxMessageSize = 64 * 1024
)

// Conn is the subset of *websocket.Conn a session writes through.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session is one connected participant. It is owned by its connection
// handler; the room keeps only a non-owning reference for fan-out.
//
// All writes to the underlying connection happen on the write pump
// goroutine, fed by a bounded queue.
type Session struct {
	ID uuid.UUID

	conn Conn
	room *Room

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func NewSession(conn Conn, queueSize int) *Session {
	return &Session{
		ID:   uuid.New(),
		conn: conn,
		send: make(chan []byte, queueSize),
		done: make(chan struct{}),
	}
}

// Room returns the room this session joined, or nil before Join.
func (s *Session) Room() *Room {
	return s.room
}

// enqueue hands a frame to the write pump without blocking. A full queue
// means the peer stalled: the session is closed so it cannot backpressure
// the sender or the rest of the room.
func (s *Session) enqueue(frame []byte) {
	select {
	case s.send <- frame:
	case <-s.done:
		metric.RecordEnvelopeDropped("session_closed")
	default:
		metric.RecordEnvelopeDropped("queue_full")
		slog.Warn("send queue full, disconnecting stalled session",
			slog.Any(constant.SessionID, s.ID),
		)
		s.Close()
	}
}

// WritePump pumps queued frames to the websocket connection and keeps the
// connection alive with pings. One goroutine per session; it is the only
// writer to the connection.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.Close()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}

		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Close is idempotent and safe from any goroutine. Closing the connection
// unblocks the read loop, which then runs the disconnect cleanup exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
