package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/mrz1836/sigil-connect/internal/config"
	sigilerr "github.com/mrz1836/sigil-connect/pkg/errors"
)

// minPassphraseLength is enforced when a keystore is created.
const minPassphraseLength = 8

// Prompt hooks, replaced in tests.
//
//nolint:gochecknoglobals // Swappable for tests
var (
	readPassphraseFn = readPassphrase
	newPassphraseFn  = promptNewPassphrase
)

// readPassphrase returns the keystore passphrase from the environment, or
// prompts with hidden input when stdin is a terminal.
func readPassphrase(prompt string) (string, error) {
	if v, ok := os.LookupEnv(config.EnvPassword); ok {
		return v, nil
	}

	fd := int(os.Stdin.Fd()) //nolint:gosec // Stdin descriptor fits in int
	if !term.IsTerminal(fd) {
		return "", sigilerr.WithSuggestion(sigilerr.ErrAuthentication,
			"set "+config.EnvPassword+" when stdin is not a terminal")
	}

	out(os.Stderr, "%s", prompt)
	b, err := term.ReadPassword(fd)
	outln(os.Stderr) // Add newline after hidden input
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

// promptNewPassphrase asks for a passphrase twice. The environment variable,
// when set, is taken as already confirmed.
func promptNewPassphrase() (string, error) {
	pass, err := readPassphrase("Choose a wallet passphrase: ")
	if err != nil {
		return "", err
	}
	if len(pass) < minPassphraseLength {
		return "", sigilerr.WithSuggestion(sigilerr.ErrInvalidInput,
			fmt.Sprintf("passphrase must be at least %d characters", minPassphraseLength))
	}
	if _, ok := os.LookupEnv(config.EnvPassword); ok {
		return pass, nil
	}

	confirm, err := readPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if confirm != pass {
		return "", sigilerr.WithSuggestion(sigilerr.ErrInvalidInput, "passphrases do not match")
	}
	return pass, nil
}
