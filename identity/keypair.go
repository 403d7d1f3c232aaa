package identity

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
)

// KeyPair is a Curve25519 key pair identifying a simulated node.
type KeyPair struct {
	Public  [32]byte
	Private [32]byte
}

// GenerateKeyPair creates a key pair from 32 bytes read from r.
// Passing a seeded *rand.Rand yields reproducible identities.
func GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	if r == nil {
		return nil, errors.New("nil entropy source")
	}

	keyPair := &KeyPair{}
	if _, err := io.ReadFull(r, keyPair.Private[:]); err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	return FromSecretKey(keyPair.Private)
}

// FromSecretKey derives the public key for an existing private key.
func FromSecretKey(secretKey [32]byte) (*KeyPair, error) {
	if isZeroKey(secretKey) {
		return nil, errors.New("invalid secret key: all zeros")
	}

	public, err := curve25519.X25519(secretKey[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive public key: %w", err)
	}

	keyPair := &KeyPair{Private: secretKey}
	copy(keyPair.Public[:], public)
	return keyPair, nil
}

// isZeroKey checks if a key consists of all zeros.
func isZeroKey(key [32]byte) bool {
	for _, b := range key {
		if b != 0 {
			return false
		}
	}
	return true
}
