package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChat(t *testing.T) {
	env, err := Decode([]byte(`{"type":"chat","payload":"c2FsdA=="}`))
	require.NoError(t, err)

	assert.Equal(t, KindChat, env.Kind)
	assert.Equal(t, "c2FsdA==", env.Chat)
	assert.Nil(t, env.Signal)
}

func TestDecodeSignalSubtypes(t *testing.T) {
	cases := []struct {
		name    string
		frame   string
		sigType SignalType
	}{
		{"offer", `{"type":"webrtc","payload":{"type":"offer","sdp":"v=0"}}`, SignalOffer},
		{"answer", `{"type":"webrtc","payload":{"type":"answer","sdp":"v=0"}}`, SignalAnswer},
		{"candidate", `{"type":"webrtc","payload":{"type":"ice-candidate","candidate":{"candidate":"cand"}}}`, SignalCandidate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, err := Decode([]byte(tc.frame))
			require.NoError(t, err)

			assert.Equal(t, KindSignal, env.Kind)
			require.NotNil(t, env.Signal)
			assert.Equal(t, tc.sigType, env.Signal.Type)
		})
	}
}

func TestDecodeRejectsMalformedFrames(t *testing.T) {
	cases := []struct {
		name  string
		frame string
	}{
		{"not json", `not json at all`},
		{"unknown kind", `{"type":"file","payload":"x"}`},
		{"chat payload not a string", `{"type":"chat","payload":{"text":"hi"}}`},
		{"unknown signal subtype", `{"type":"webrtc","payload":{"type":"hangup"}}`},
		{"signal payload not an object", `{"type":"webrtc","payload":"offer"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, err := Decode([]byte(tc.frame))
			assert.Nil(t, env)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.NotEmpty(t, decodeErr.Reason)
		})
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	_, err := Decode([]byte(`{broken`))

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.True(t, errors.Is(err, decodeErr.Err))
}

func TestEncodeChatRoundTrip(t *testing.T) {
	frame, err := EncodeChat("opaque-blob")
	require.NoError(t, err)

	env, err := Decode(frame)
	require.NoError(t, err)

	assert.Equal(t, KindChat, env.Kind)
	assert.Equal(t, "opaque-blob", env.Chat)
}

func TestEncodeSignalRoundTrip(t *testing.T) {
	frame, err := EncodeSignal(SignalPayload{Type: SignalOffer, SDP: "v=0"})
	require.NoError(t, err)

	env, err := Decode(frame)
	require.NoError(t, err)

	require.NotNil(t, env.Signal)
	assert.Equal(t, SignalOffer, env.Signal.Type)
	assert.Equal(t, "v=0", env.Signal.SDP)
}
