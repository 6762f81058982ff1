package localwallet

import (
	"errors"
	"sync"

	"github.com/zalando/go-keyring"
)

// TrustService is the keyring service under which trusted origins are kept.
const TrustService = "sigil-connect"

const trustedValue = "trusted"

// TrustStore remembers which origins may connect without a prompt.
type TrustStore interface {
	Trusted(origin, account string) bool
	Trust(origin, account string) error
	Revoke(origin, account string) error
}

// KeyringTrustStore keeps trusted origins in the OS keychain.
type KeyringTrustStore struct{}

// NewKeyringTrustStore creates a keychain-backed trust store.
func NewKeyringTrustStore() *KeyringTrustStore {
	return &KeyringTrustStore{}
}

func trustUser(origin, account string) string {
	return account + "@" + origin
}

// Trusted reports whether origin was approved for account.
func (KeyringTrustStore) Trusted(origin, account string) bool {
	v, err := keyring.Get(TrustService, trustUser(origin, account))
	return err == nil && v == trustedValue
}

// Trust records origin as approved for account.
func (KeyringTrustStore) Trust(origin, account string) error {
	return keyring.Set(TrustService, trustUser(origin, account), trustedValue)
}

// Revoke forgets origin. Revoking an unknown origin is not an error.
func (KeyringTrustStore) Revoke(origin, account string) error {
	err := keyring.Delete(TrustService, trustUser(origin, account))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// MemoryTrustStore keeps trust for the life of the process. Used where no
// keychain is reachable.
type MemoryTrustStore struct {
	mu      sync.Mutex
	trusted map[string]struct{}
}

// NewMemoryTrustStore creates an empty in-process trust store.
func NewMemoryTrustStore() *MemoryTrustStore {
	return &MemoryTrustStore{trusted: make(map[string]struct{})}
}

// Trusted reports whether origin was approved for account.
func (m *MemoryTrustStore) Trusted(origin, account string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.trusted[trustUser(origin, account)]
	return ok
}

// Trust records origin as approved for account.
func (m *MemoryTrustStore) Trust(origin, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trusted[trustUser(origin, account)] = struct{}{}
	return nil
}

// Revoke forgets origin.
func (m *MemoryTrustStore) Revoke(origin, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trusted, trustUser(origin, account))
	return nil
}

// KeyringAvailable reports whether the OS keychain is usable by writing, reading
// and deleting a throwaway entry.
func KeyringAvailable() bool {
	const (
		checkUser  = "check"
		checkValue = "ok"
	)
	service := TrustService + "-check"

	if err := keyring.Set(service, checkUser, checkValue); err != nil {
		return false
	}
	v, err := keyring.Get(service, checkUser)
	_ = keyring.Delete(service, checkUser)
	return err == nil && v == checkValue
}
