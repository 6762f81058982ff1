package sigilcrypto

import (
	"runtime"
	"sync"
)

// SecureBytes holds a secret in memory that is locked against swapping where
// the platform allows it and zeroed on Destroy.
type SecureBytes struct {
	mu     sync.Mutex
	data   []byte
	locked bool
}

// NewSecureBytes allocates size zeroed bytes.
func NewSecureBytes(size int) *SecureBytes {
	sb := &SecureBytes{data: make([]byte, size)}
	sb.locked = mlock(sb.data)

	runtime.SetFinalizer(sb, func(s *SecureBytes) {
		s.Destroy()
	})
	return sb
}

// SecureBytesFromSlice copies data into a new SecureBytes. The caller still
// owns data and should wipe it.
func SecureBytesFromSlice(data []byte) *SecureBytes {
	sb := NewSecureBytes(len(data))
	copy(sb.data, data)
	return sb
}

// Use runs fn with the secret. fn must not retain the slice. It reports
// false if the secret was already destroyed.
func (s *SecureBytes) Use(fn func([]byte)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return false
	}
	fn(s.data)
	return true
}

// Len returns the secret length, or zero after Destroy.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Locked reports whether the memory is mlocked.
func (s *SecureBytes) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Destroyed reports whether Destroy has run.
func (s *SecureBytes) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data == nil
}

// Destroy zeroes and unlocks the memory. Safe to call more than once.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}

	wipe(s.data)
	if s.locked {
		munlock(s.data)
		s.locked = false
	}
	s.data = nil

	runtime.SetFinalizer(s, nil)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
