package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/lepko/lepko/internal/application/config"
	"github.com/lepko/lepko/internal/application/constant"
	"github.com/lepko/lepko/internal/application/metric"
	"github.com/lepko/lepko/internal/protocol"
	"github.com/lepko/lepko/internal/relay"
)

type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	registry *relay.Registry

	queueSize int
}

func NewWebSocketHandler(cfg *config.Config, registry *relay.Registry) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				// Non-browser clients send no Origin; they are welcome.
				origin := r.Header.Get("Origin")
				return origin == "" || origin == cfg.Domain
			},
		},
		registry:  registry,
		queueSize: cfg.SendQueueSize,
	}
}

// Handle runs one session: upgrade, join, then the read loop until the
// transport dies. Disconnect cleanup is the deferred Leave, which also
// resets the room's call slot if this session held a role.
func (h *WebSocketHandler) Handle(c echo.Context) error {
	roomID := c.Param("room")
	if roomID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "room id is required"})
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}

	sess := relay.NewSession(ws, h.queueSize)
	room := h.registry.Join(roomID, sess)

	metric.IncrementWSActiveConnections()

	defer func() {
		h.registry.Leave(sess)
		sess.Close()
		metric.DecrementWSActiveConnections()
	}()

	go sess.WritePump()

	ws.SetReadLimit(relay.MaxMessageSize)

	if err := ws.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			h.handleWebsocketError(sess, roomID, err)
			return nil
		}

		env, err := protocol.Decode(frame)
		if err != nil {
			// Bad envelope: drop it, keep the connection.
			metric.RecordEnvelopeDropped("decode_error")
			slog.Warn("drop undecodable envelope",
				slog.Any(constant.Error, err),
				slog.Any(constant.SessionID, sess.ID),
			)
			continue
		}

		switch env.Kind {
		case protocol.KindChat:
			// The payload stays opaque: fan out the original frame.
			room.Broadcast(sess, frame)
			metric.RecordEnvelopeRelayed(string(protocol.KindChat))

		case protocol.KindSignal:
			room.HandleSignal(sess, env.Signal, frame)
			metric.RecordEnvelopeRelayed(string(protocol.KindSignal))
		}
	}
}

func (h *WebSocketHandler) handleWebsocketError(sess *relay.Session, roomID string, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info("session disconnected",
				slog.Any(constant.SessionID, sess.ID),
				slog.Any(constant.RoomID, roomID),
			)
		default:
			slog.Error("websocket close error",
				slog.Any(constant.Error, err),
				slog.Any(constant.SessionID, sess.ID),
			)
		}
	} else {
		slog.Error(
			"websocket read",
			slog.Any(constant.Error, err),
			slog.Any(constant.SessionID, sess.ID),
		)
	}
}
