package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/lepko/lepko/internal/protocol"
)

// callPeer wraps the pion peer connection for one direct audio call. The
// signaling envelopes it produces are relayed through the room; media flows
// peer-to-peer once ICE completes.
type callPeer struct {
	pc         *webrtc.PeerConnection
	sendSignal func(protocol.SignalPayload) error

	mu        sync.Mutex
	remoteSet bool
	pending   []webrtc.ICECandidateInit
}

func newCallPeer(iceServers []webrtc.ICEServer, sendSignal func(protocol.SignalPayload) error) (*callPeer, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio); err != nil {
		pc.Close()
		return nil, fmt.Errorf("add audio transceiver: %w", err)
	}

	p := &callPeer{
		pc:         pc,
		sendSignal: sendSignal,
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}

		raw, err := json.Marshal(c.ToJSON())
		if err != nil {
			return
		}

		p.sendSignal(protocol.SignalPayload{
			Type:      protocol.SignalCandidate,
			Candidate: raw,
		})
	})

	return p, nil
}

// Offer starts a call as the caller: local offer goes out through the relay.
func (p *callPeer) Offer() error {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}

	if err := p.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	return p.sendSignal(protocol.SignalPayload{
		Type: protocol.SignalOffer,
		SDP:  offer.SDP,
	})
}

// AcceptOffer answers an incoming offer as the callee.
func (p *callPeer) AcceptOffer(sdp string) error {
	if err := p.setRemote(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: sdp}); err != nil {
		return err
	}

	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}

	if err := p.pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	return p.sendSignal(protocol.SignalPayload{
		Type: protocol.SignalAnswer,
		SDP:  answer.SDP,
	})
}

// AcceptAnswer completes the handshake on the caller side.
func (p *callPeer) AcceptAnswer(sdp string) error {
	return p.setRemote(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: sdp})
}

// AddCandidate feeds a relayed ICE candidate into the peer connection.
// Candidates arriving before the remote description are buffered.
func (p *callPeer) AddCandidate(raw json.RawMessage) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return fmt.Errorf("unmarshal ice candidate: %w", err)
	}

	p.mu.Lock()
	if !p.remoteSet {
		p.pending = append(p.pending, candidate)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	return p.pc.AddICECandidate(candidate)
}

func (p *callPeer) setRemote(desc webrtc.SessionDescription) error {
	if err := p.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}

	p.mu.Lock()
	p.remoteSet = true
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, candidate := range pending {
		if err := p.pc.AddICECandidate(candidate); err != nil {
			return fmt.Errorf("add buffered ice candidate: %w", err)
		}
	}

	return nil
}

func (p *callPeer) Close() error {
	return p.pc.Close()
}
