package relay

import (
	"log/slog"

	"github.com/lepko/lepko/internal/application/constant"
	"github.com/lepko/lepko/internal/application/metric"
	"github.com/lepko/lepko/internal/protocol"
)

// CallPhase is the room-level signaling state. One call slot per room: a
// third member cannot desynchronize an in-progress call by injecting an
// offer. "Connected" is client-local and never observed by the relay.
type CallPhase int

const (
	CallIdle CallPhase = iota
	CallOfferSent
	CallAnswerSent
)

// callSlot holds the single in-progress call of a room. Guarded by Room.mu.
type callSlot struct {
	phase  CallPhase
	caller *Session
	callee *Session
}

// CallPhase returns the room's current signaling phase.
func (r *Room) CallPhase() CallPhase {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.call.phase
}

// HandleSignal routes a call signal through the room's call slot. Frame is
// the original wire frame; accepted signals are forwarded unchanged.
// Out-of-turn signals are dropped with no reply to the sender, so a prober
// cannot learn whether a call is in progress.
func (r *Room) HandleSignal(from *Session, sig *protocol.SignalPayload, frame []byte) {
	switch sig.Type {
	case protocol.SignalOffer:
		r.handleOffer(from, frame)
	case protocol.SignalAnswer:
		r.handleAnswer(from, frame)
	case protocol.SignalCandidate:
		r.handleCandidate(from, frame)
	}
}

func (r *Room) handleOffer(from *Session, frame []byte) {
	r.mu.Lock()

	if r.call.phase != CallIdle {
		r.mu.Unlock()

		metric.RecordSignalingRejection("call_in_progress")
		slog.Debug("offer rejected, call already in progress",
			slog.Any(constant.RoomID, r.id),
			slog.Any(constant.SessionID, from.ID),
		)
		return
	}

	r.call.phase = CallOfferSent
	r.call.caller = from
	targets := r.othersLocked(from)

	r.mu.Unlock()

	for _, t := range targets {
		t.enqueue(frame)
	}
}

func (r *Room) handleAnswer(from *Session, frame []byte) {
	r.mu.Lock()

	// Only the first answer from someone other than the caller counts; the
	// caller answering itself is a protocol violation.
	if r.call.phase != CallOfferSent || from == r.call.caller {
		r.mu.Unlock()

		metric.RecordSignalingRejection("out_of_turn_answer")
		return
	}

	r.call.phase = CallAnswerSent
	r.call.callee = from
	caller := r.call.caller

	r.mu.Unlock()

	caller.enqueue(frame)
}

func (r *Room) handleCandidate(from *Session, frame []byte) {
	r.mu.Lock()

	var targets []*Session

	switch r.call.phase {
	case CallIdle:
		// No offer yet, nobody to route to.

	case CallOfferSent:
		// Trickle ICE: the caller may send candidates before an answer
		// arrives; they go to every potential callee.
		if from == r.call.caller {
			targets = r.othersLocked(from)
		}

	case CallAnswerSent:
		switch from {
		case r.call.caller:
			targets = []*Session{r.call.callee}
		case r.call.callee:
			targets = []*Session{r.call.caller}
		}
	}

	r.mu.Unlock()

	if len(targets) == 0 {
		metric.RecordSignalingRejection("stray_candidate")
		return
	}

	for _, t := range targets {
		t.enqueue(frame)
	}
}

// resetCallLocked frees the call slot when a participant leaves, so the
// room can host a new call.
func (r *Room) resetCallLocked(s *Session) {
	if s == r.call.caller || s == r.call.callee {
		r.call = callSlot{}
	}
}
