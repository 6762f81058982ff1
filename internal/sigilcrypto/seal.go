// Package sigilcrypto seals local wallet secrets at rest and keeps them in
// locked memory while in use.
package sigilcrypto

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"filippo.io/age"
)

// ErrEmptyPassphrase is returned when sealing or opening with no passphrase.
var ErrEmptyPassphrase = errors.New("passphrase must not be empty")

// ErrWrongPassphrase is returned when a sealed blob does not open with the
// given passphrase.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted data")

// MaxWorkFactor is the highest scrypt cost age will open by default.
const MaxWorkFactor = 22

// workFactor is the scrypt cost used for new blobs. Zero keeps age's default.
//
//nolint:gochecknoglobals // Process-wide sealing cost
var workFactor atomic.Int32

// SetWorkFactor sets the scrypt cost, as log2 of N, for blobs sealed from now
// on. Zero restores age's default. Blobs already sealed keep their own cost.
func SetWorkFactor(logN int) {
	workFactor.Store(int32(logN)) //nolint:gosec // Validated by config, bounded by MaxWorkFactor
}

// Seal encrypts plaintext to an age scrypt recipient derived from passphrase.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if wf := workFactor.Load(); wf > 0 {
		recipient.SetWorkFactor(int(wf))
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing sealed data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}

	return buf.Bytes(), nil
}

// Open decrypts a blob produced by Seal.
func Open(sealed []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(sealed), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, ErrWrongPassphrase
		}
		return nil, fmt.Errorf("%w: %w", ErrWrongPassphrase, err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading sealed data: %w", err)
	}
	return plaintext, nil
}

// OpenSecure decrypts a blob straight into locked memory. The intermediate
// plaintext is wiped on every path.
func OpenSecure(sealed []byte, passphrase string) (*SecureBytes, error) {
	plaintext, err := Open(sealed, passphrase)
	defer wipe(plaintext)
	if err != nil {
		return nil, err
	}
	return SecureBytesFromSlice(plaintext), nil
}
