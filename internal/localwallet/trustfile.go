package localwallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mrz1836/sigil-connect/internal/fileutil"
)

// trustFilePermissions is the permission mode for the trust file.
const trustFilePermissions = 0o600

// ErrCorruptTrustFile indicates the trust file is malformed JSON.
var ErrCorruptTrustFile = errors.New("trust file is corrupted")

// TrustEntry is one approved origin.
type TrustEntry struct {
	Origin    string    `json:"origin"`
	Account   string    `json:"account"`
	TrustedAt time.Time `json:"trusted_at"`
}

type trustFile struct {
	Entries map[string]TrustEntry `json:"entries"`
}

// FileTrustStore keeps trusted origins in a JSON file. Used where no
// keychain is reachable, so approvals still outlive the process.
type FileTrustStore struct {
	path string

	mu      sync.Mutex
	entries map[string]TrustEntry
}

// NewFileTrustStore loads the trust file at path. A missing file is an empty
// store. A corrupt file is moved aside and the store starts empty; the
// returned error reports where it went.
func NewFileTrustStore(path string) (*FileTrustStore, error) {
	s := &FileTrustStore{path: path, entries: make(map[string]TrustEntry)}

	data, err := os.ReadFile(path) //nolint:gosec // Path comes from configuration
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading trust file: %w", err)
	}

	var tf trustFile
	if err := json.Unmarshal(data, &tf); err != nil {
		corruptPath := fmt.Sprintf("%s.corrupt.%d", path, time.Now().UTC().UnixNano())
		if renameErr := os.Rename(path, corruptPath); renameErr != nil {
			return s, fmt.Errorf("%w: %w (also failed to move file: %w)", ErrCorruptTrustFile, err, renameErr)
		}
		return s, fmt.Errorf("%w: %w (moved to %s)", ErrCorruptTrustFile, err, corruptPath)
	}
	if tf.Entries != nil {
		s.entries = tf.Entries
	}
	return s, nil
}

// Path returns the trust file path.
func (s *FileTrustStore) Path() string {
	return s.path
}

// Trusted reports whether origin was approved for account.
func (s *FileTrustStore) Trusted(origin, account string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[trustUser(origin, account)]
	return ok
}

// Trust records origin as approved for account and saves the file.
func (s *FileTrustStore) Trust(origin, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[trustUser(origin, account)] = TrustEntry{
		Origin:    origin,
		Account:   account,
		TrustedAt: time.Now().UTC(),
	}
	return s.saveLocked()
}

// Revoke forgets origin. Revoking an unknown origin is not an error and does
// not touch the file.
func (s *FileTrustStore) Revoke(origin, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := trustUser(origin, account)
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.saveLocked()
}

// Entries returns every approved origin.
func (s *FileTrustStore) Entries() []TrustEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TrustEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

func (s *FileTrustStore) saveLocked() error {
	data, err := json.MarshalIndent(trustFile{Entries: s.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding trust file: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, trustFilePermissions); err != nil {
		return fmt.Errorf("writing trust file: %w", err)
	}
	return nil
}
