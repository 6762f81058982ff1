package localwallet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anyproto/go-slip10"
)

// DefaultDerivationPath is the Solana account path used by Phantom.
const DefaultDerivationPath = "m/44'/501'/0'/0'"

const hardenedOffset uint32 = 0x80000000

// ErrInvalidPath indicates a derivation path that is not fully hardened.
var ErrInvalidPath = errors.New("derivation path must be of the form m/a'/b'/...")

// ParsePath parses a hardened derivation path into child indexes. ed25519
// under SLIP-0010 only supports hardened children.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) < 2 || parts[0] != "m" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	indexes := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		num, ok := strings.CutSuffix(p, "'")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not hardened", ErrInvalidPath, p)
		}
		n, err := strconv.ParseUint(num, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
		indexes = append(indexes, uint32(n)+hardenedOffset)
	}
	return indexes, nil
}

// deriveKey walks the SLIP-0010 ed25519 tree and returns the 32-byte private
// key seed at path. The caller must wipe the result.
func deriveKey(seed []byte, path []uint32) ([]byte, error) {
	node, err := slip10.NewMasterNode(seed)
	if err != nil {
		return nil, fmt.Errorf("deriving master key: %w", err)
	}
	for _, index := range path {
		if node, err = node.Derive(index); err != nil {
			return nil, fmt.Errorf("deriving child %d: %w", index-hardenedOffset, err)
		}
	}

	out := make([]byte, 32)
	copy(out, node.RawSeed())
	return out, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
