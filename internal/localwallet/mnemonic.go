// Package localwallet is a terminal-hosted Phantom-compatible provider.
//
// It keeps a BIP39 mnemonic sealed on disk, derives the Solana account key
// along a hardened SLIP-0010 path, and asks an Approver before connecting or
// signing. The session controller reaches it through the same locator path a
// browser page uses for the real extension.
package localwallet

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"
)

var (
	// ErrInvalidWordCount indicates the mnemonic must be 12 or 24 words.
	ErrInvalidWordCount = errors.New("word count must be 12 or 24")

	// ErrInvalidMnemonic indicates the mnemonic failed BIP39 validation.
	ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

	// numberedListRegex matches numbered list prefixes like "1." "2)" "3:"
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)
)

// maxSuggestDistance bounds typo suggestions to near misses.
const maxSuggestDistance = 2

// GenerateMnemonic creates a fresh mnemonic of 12 or 24 words.
func GenerateMnemonic(words int) (string, error) {
	var bits int
	switch words {
	case 12:
		bits = 128
	case 24:
		bits = 256
	default:
		return "", ErrInvalidWordCount
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generating entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// NormalizeMnemonic lowercases the phrase and strips list numbering and
// extra whitespace, as pasted from a backup sheet.
func NormalizeMnemonic(input string) string {
	input = numberedListRegex.ReplaceAllString(input, " ")
	return strings.Join(strings.Fields(strings.ToLower(input)), " ")
}

// ValidateMnemonic checks word count, word list membership and checksum.
// The returned error names the closest word list entry for any typo.
func ValidateMnemonic(mnemonic string) error {
	words := strings.Fields(NormalizeMnemonic(mnemonic))
	if len(words) != 12 && len(words) != 24 {
		return ErrInvalidMnemonic
	}

	var typos []string
	for i, w := range words {
		if _, ok := bip39.GetWordIndex(w); ok {
			continue
		}
		if s := SuggestWord(w); s != "" {
			typos = append(typos, fmt.Sprintf("word %d %q (did you mean %q?)", i+1, w, s))
		} else {
			typos = append(typos, fmt.Sprintf("word %d %q", i+1, w))
		}
	}
	if len(typos) > 0 {
		return fmt.Errorf("%w: unknown %s", ErrInvalidMnemonic, strings.Join(typos, ", "))
	}

	if !bip39.IsMnemonicValid(strings.Join(words, " ")) {
		return fmt.Errorf("%w: checksum mismatch", ErrInvalidMnemonic)
	}
	return nil
}

// SuggestWord returns the closest BIP39 word within a small edit distance,
// or "" when nothing is close.
func SuggestWord(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	best, bestDist := "", maxSuggestDistance+1
	for _, w := range bip39.GetWordList() {
		d := levenshtein.ComputeDistance(input, w)
		if d < bestDist {
			best, bestDist = w, d
		}
	}
	return best
}

// mnemonicSeed returns the 64-byte BIP39 seed with an empty passphrase.
func mnemonicSeed(mnemonic string) ([]byte, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	return bip39.NewSeed(NormalizeMnemonic(mnemonic), ""), nil
}
