package secret

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	msg := Message{Text: "meet at noon", TTLSeconds: 30}

	blob, err := Encrypt(msg, "correct horse")
	require.NoError(t, err)

	got, err := Decrypt(blob, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestWrongPassphraseFailsDecryption(t *testing.T) {
	blob, err := Encrypt(Message{Text: "secret"}, "alpha")
	require.NoError(t, err)

	_, err = Decrypt(blob, "bravo")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestCorruptedBlobsFailDecryption(t *testing.T) {
	blob, err := Encrypt(Message{Text: "secret"}, "alpha")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	// Flip one ciphertext bit: GCM authentication must reject it.
	raw[len(raw)-1] ^= 0x01
	_, err = Decrypt(base64.StdEncoding.EncodeToString(raw), "alpha")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	cases := []struct {
		name string
		blob string
	}{
		{"not base64", "%%not-base64%%"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("tiny"))},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decrypt(tc.blob, "alpha")
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		})
	}
}

func TestFreshSaltPerMessage(t *testing.T) {
	msg := Message{Text: "same plaintext"}

	first, err := Encrypt(msg, "alpha")
	require.NoError(t, err)
	second, err := Encrypt(msg, "alpha")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "identical plaintexts must not produce identical blobs")
}

func TestTTLTravelsInsideCiphertext(t *testing.T) {
	blob, err := Encrypt(Message{Text: "burn after reading", TTLSeconds: 5}, "alpha")
	require.NoError(t, err)

	got, err := Decrypt(blob, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 5, got.TTLSeconds)
}

func TestZeroTTLSurvivesRoundTrip(t *testing.T) {
	blob, err := Encrypt(Message{Text: "keep me"}, "alpha")
	require.NoError(t, err)

	got, err := Decrypt(blob, "alpha")
	require.NoError(t, err)
	assert.Zero(t, got.TTLSeconds)
}
