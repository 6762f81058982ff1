package provider

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Ed25519KeySize is the length of an ed25519 public key.
const Ed25519KeySize = 32

// ErrInvalidPublicKey is returned when a key cannot be parsed.
var ErrInvalidPublicKey = errors.New("invalid public key")

// PublicKey is an account identity. Its String form is the display form used
// everywhere outside the provider.
type PublicKey interface {
	String() string
}

// Ed25519Key is a Solana-style account key.
type Ed25519Key [Ed25519KeySize]byte

// String returns the base58 encoding of the key.
func (k Ed25519Key) String() string {
	return base58.Encode(k[:])
}

// Bytes returns a copy of the raw key.
func (k Ed25519Key) Bytes() []byte {
	out := make([]byte, Ed25519KeySize)
	copy(out, k[:])
	return out
}

// ParseEd25519Key decodes a base58 key.
func ParseEd25519Key(s string) (Ed25519Key, error) {
	var k Ed25519Key

	raw, err := base58.Decode(s)
	if err != nil {
		return k, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	if len(raw) != Ed25519KeySize {
		return k, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, Ed25519KeySize, len(raw))
	}

	copy(k[:], raw)
	return k, nil
}

// Ed25519KeyFromBytes copies a raw 32-byte key.
func Ed25519KeyFromBytes(b []byte) (Ed25519Key, error) {
	var k Ed25519Key
	if len(b) != Ed25519KeySize {
		return k, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, Ed25519KeySize, len(b))
	}
	copy(k[:], b)
	return k, nil
}
