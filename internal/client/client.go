// Package client implements a pad participant: the websocket session, the
// end-to-end encryption boundary, the self-destruct message view and the
// call signaling roles. Everything the server deliberately cannot do lives
// here.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"

	"github.com/lepko/lepko/internal/application/constant"
	"github.com/lepko/lepko/internal/client/secret"
	"github.com/lepko/lepko/internal/protocol"
)

// ErrNoCall is returned by Hangup when no call is active.
var ErrNoCall = errors.New("no active call")

// Client is one connected participant. Incoming chat envelopes are
// decrypted and placed into the View; call signals drive the callPeer.
type Client struct {
	conn       *websocket.Conn
	passphrase string
	iceServers []webrtc.ICEServer

	view *View

	// OnMessage, when set before the first inbound frame, is invoked for
	// every successfully decrypted message.
	OnMessage func(DisplayedMessage)

	writeMu sync.Mutex

	callMu sync.Mutex
	call   *callPeer

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to a pad room. serverURL is the http(s) base address of the
// relay; the room identifier is appended as /ws/{roomID}.
func Dial(ctx context.Context, serverURL, roomID, passphrase string, iceServers []webrtc.ICEServer) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = "/ws/" + roomID

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}

	c := &Client{
		conn:       conn,
		passphrase: passphrase,
		iceServers: iceServers,
		view:       NewView(),
		done:       make(chan struct{}),
	}

	go c.readLoop()

	return c, nil
}

// View exposes the local message list.
func (c *Client) View() *View {
	return c.view
}

// SendText encrypts a message and sends it to the room. The TTL is sealed
// inside the ciphertext along with the text.
func (c *Client) SendText(text string, ttlSeconds int) error {
	blob, err := secret.Encrypt(secret.Message{Text: text, TTLSeconds: ttlSeconds}, c.passphrase)
	if err != nil {
		return fmt.Errorf("encrypt message: %w", err)
	}

	frame, err := protocol.EncodeChat(blob)
	if err != nil {
		return fmt.Errorf("encode chat envelope: %w", err)
	}

	return c.write(frame)
}

// StartCall initiates a call as the caller. Fails if a call is already
// active locally; the server additionally rejects a second offer per room.
func (c *Client) StartCall() error {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	if c.call != nil {
		return errors.New("call already active")
	}

	peer, err := newCallPeer(c.iceServers, c.sendSignal)
	if err != nil {
		return err
	}

	if err := peer.Offer(); err != nil {
		peer.Close()
		return err
	}

	c.call = peer

	return nil
}

// Hangup tears down the local side of the call. The peer notices via the
// media layer; the room's call slot resets when either side disconnects.
func (c *Client) Hangup() error {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	if c.call == nil {
		return ErrNoCall
	}

	err := c.call.Close()
	c.call = nil

	return err
}

// Close terminates the session and releases the view's timers.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
		c.view.Close()

		c.callMu.Lock()
		if c.call != nil {
			c.call.Close()
			c.call = nil
		}
		c.callMu.Unlock()
	})
}

// Done is closed once the session ends, by either side.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) readLoop() {
	defer c.Close()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Error("read from relay", slog.Any(constant.Error, err))
			}
			return
		}

		env, err := protocol.Decode(frame)
		if err != nil {
			// One bad envelope never ends the session.
			slog.Warn("drop undecodable envelope", slog.Any(constant.Error, err))
			continue
		}

		switch env.Kind {
		case protocol.KindChat:
			c.handleChat(env.Chat)
		case protocol.KindSignal:
			c.handleSignal(env.Signal)
		}
	}
}

func (c *Client) handleChat(blob string) {
	msg, err := secret.Decrypt(blob, c.passphrase)
	if err != nil {
		// Different passphrase or corrupted blob: the message simply is
		// not displayed.
		slog.Debug("drop undecryptable message")
		return
	}

	id := c.view.Add(msg)

	if c.OnMessage != nil {
		c.OnMessage(DisplayedMessage{ID: id, Text: msg.Text})
	}
}

func (c *Client) handleSignal(sig *protocol.SignalPayload) {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	var err error

	switch sig.Type {
	case protocol.SignalOffer:
		if c.call != nil {
			// Already in a call; the server should not have relayed this.
			return
		}

		var peer *callPeer
		peer, err = newCallPeer(c.iceServers, c.sendSignal)
		if err == nil {
			if err = peer.AcceptOffer(sig.SDP); err != nil {
				peer.Close()
			} else {
				c.call = peer
			}
		}

	case protocol.SignalAnswer:
		if c.call == nil {
			return
		}
		err = c.call.AcceptAnswer(sig.SDP)

	case protocol.SignalCandidate:
		if c.call == nil {
			return
		}
		err = c.call.AddCandidate(sig.Candidate)
	}

	if err != nil {
		slog.Error("handle call signal",
			slog.String("signal", string(sig.Type)),
			slog.Any(constant.Error, err),
		)
	}
}

func (c *Client) sendSignal(sig protocol.SignalPayload) error {
	frame, err := protocol.EncodeSignal(sig)
	if err != nil {
		return fmt.Errorf("encode signal envelope: %w", err)
	}

	return c.write(frame)
}

func (c *Client) write(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteMessage(websocket.TextMessage, frame)
}
