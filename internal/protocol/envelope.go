// Package protocol defines the wire envelope exchanged over a pad session.
//
// Two kinds of envelopes travel over one websocket: "chat" carries an opaque
// encrypted blob the server never inspects, "webrtc" carries a call-setup
// signal routed through the per-room state machine.
package protocol

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	KindChat   Kind = "chat"
	KindSignal Kind = "webrtc"
)

type SignalType string

const (
	SignalOffer     SignalType = "offer"
	SignalAnswer    SignalType = "answer"
	SignalCandidate SignalType = "ice-candidate"
)

// DecodeError marks an envelope that could not be decoded. The connection
// survives it: the caller logs and drops the single envelope.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode envelope: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode envelope: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SignalPayload is the body of a "webrtc" envelope. Candidate is kept raw:
// the relay forwards it without parsing.
type SignalPayload struct {
	Type      SignalType      `json:"type"`
	SDP       string          `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Envelope is a decoded wire message. Exactly one of Chat or Signal is set,
// depending on Kind.
type Envelope struct {
	Kind   Kind
	Chat   string
	Signal *SignalPayload
}

type wireEnvelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses a wire frame. A "chat" payload must be a JSON string (the
// encrypted blob), a "webrtc" payload must carry a known signal sub-type.
func Decode(data []byte) (*Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &DecodeError{Reason: "malformed frame", Err: err}
	}

	switch w.Type {
	case KindChat:
		var blob string
		if err := json.Unmarshal(w.Payload, &blob); err != nil {
			return nil, &DecodeError{Reason: "chat payload is not a string", Err: err}
		}
		return &Envelope{Kind: KindChat, Chat: blob}, nil

	case KindSignal:
		var sig SignalPayload
		if err := json.Unmarshal(w.Payload, &sig); err != nil {
			return nil, &DecodeError{Reason: "malformed signal payload", Err: err}
		}
		switch sig.Type {
		case SignalOffer, SignalAnswer, SignalCandidate:
		default:
			return nil, &DecodeError{Reason: fmt.Sprintf("unknown signal type %q", sig.Type)}
		}
		return &Envelope{Kind: KindSignal, Signal: &sig}, nil

	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown envelope type %q", w.Type)}
	}
}

// EncodeChat wraps an encrypted blob into a chat envelope.
func EncodeChat(blob string) ([]byte, error) {
	payload, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("marshal chat payload: %w", err)
	}

	return json.Marshal(wireEnvelope{Type: KindChat, Payload: payload})
}

// EncodeSignal wraps a call signal into a webrtc envelope.
func EncodeSignal(sig SignalPayload) ([]byte, error) {
	payload, err := json.Marshal(sig)
	if err != nil {
		return nil, fmt.Errorf("marshal signal payload: %w", err)
	}

	return json.Marshal(wireEnvelope{Type: KindSignal, Payload: payload})
}
