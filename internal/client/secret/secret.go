// Package secret is the end-to-end encryption layer of a pad. The relay
// only ever sees the opaque blobs produced here; the passphrase is typed
// independently by each participant and never transmitted.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize   = 32 // AES-256
	saltSize  = 16
	nonceSize = 12 // standard GCM nonce

	iterations = 100_000
)

// ErrDecryptionFailed covers wrong passphrase and corrupted blob alike.
// Deliberately indistinguishable: a wrong passphrase must not produce a
// recognizable "wrong password" signal.
var ErrDecryptionFailed = errors.New("decryption failed")

// Message is the client-local plaintext record. TTLSeconds is fixed by the
// sender at creation time; 0 means the message never expires. It travels
// inside the ciphertext, so the relay sees neither text nor lifetime.
type Message struct {
	Text       string `json:"text"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// Encrypt serializes msg and seals it with AES-256-GCM under a key derived
// from the passphrase. The blob is base64(salt || nonce || ciphertext); the
// salt is fresh per message.
func Encrypt(msg Message, passphrase string) (string, error) {
	plaintext, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := aead(passphrase, salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	blob := make([]byte, 0, saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a blob produced by Encrypt. Any failure, from bad base64 to
// an authentication mismatch, is reported as ErrDecryptionFailed.
func Decrypt(blob string, passphrase string) (Message, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return Message{}, ErrDecryptionFailed
	}

	if len(raw) < saltSize+nonceSize {
		return Message{}, ErrDecryptionFailed
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]
	ciphertext := raw[saltSize+nonceSize:]

	gcm, err := aead(passphrase, salt)
	if err != nil {
		return Message{}, ErrDecryptionFailed
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Message{}, ErrDecryptionFailed
	}

	var msg Message
	if err := json.Unmarshal(plaintext, &msg); err != nil {
		return Message{}, ErrDecryptionFailed
	}

	return msg, nil
}

func aead(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return gcm, nil
}
