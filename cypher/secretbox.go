package cypher

import (
	"chat-relay/errors"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	nonceSize = 24
	keySize   = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Every client sharing a passphrase must derive the same key.
var keySalt = []byte("chat-relay/secretbox/v1")

// Secretbox seals payloads with a key derived from a shared passphrase.
// Peers without the passphrase see an undecodable payload.
type Secretbox struct {
	key [keySize]byte
}

var _ Cypher = (*Secretbox)(nil)

// NewSecretbox derives the key once; argon2 is deliberately slow.
func NewSecretbox(passphrase string) *Secretbox {
	s := &Secretbox{}
	copy(s.key[:], argon2.IDKey([]byte(passphrase), keySalt, argonTime, argonMemory, argonThreads, keySize))
	return s
}

func (s *Secretbox) Encode(text string) string {
	var nonce [nonceSize]byte
	_, _ = rand.Read(nonce[:])
	sealed := secretbox.Seal(nonce[:], []byte(text), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(sealed)
}

func (s *Secretbox) Decode(text string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrDecode, err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", fmt.Errorf("%w: payload too short", errors.ErrDecode)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	opened, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", fmt.Errorf("%w: authentication failed", errors.ErrDecode)
	}
	return string(opened), nil
}

func (s *Secretbox) String() string { return SecretboxName }
