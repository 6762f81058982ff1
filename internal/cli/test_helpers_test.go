package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil-connect/internal/config"
)

// resetFlags puts every package-level flag back to its default. Cobra keeps
// flag values between Execute calls.
func resetFlags() {
	homeDir = ""
	outputFormat = "auto"
	verbose = false
	noProvider = false
	connectTrusted = false
	connectQR = false
	walletWords = 12
	walletRestore = false
	walletQR = false
}

// newHome returns an isolated home directory with a fast-sealing config,
// and the shared keystore
// copied in when withKeystore is set. The origin is unique per test so
// trusted-origin entries never leak between tests.
func newHome(t *testing.T, withKeystore bool) string {
	t.Helper()

	home := t.TempDir()
	cfg := config.Defaults()
	cfg.Home = home
	cfg.Wallet.ScryptWorkFactor = config.MinScryptWorkFactor
	require.NoError(t, config.Save(cfg, config.Path(home)))

	if withKeystore {
		require.NoError(t, os.WriteFile(filepath.Join(home, config.DefaultKeystoreName), sharedKeystore, 0o600))
	}
	t.Setenv(config.EnvOrigin, "test://"+strings.ReplaceAll(t.Name(), "/", "-"))
	t.Setenv(config.EnvAutoApprove, "")
	return home
}

// withMockPrompts replaces the passphrase prompts and restores them on cleanup.
func withMockPrompts(t *testing.T, passphrase string) {
	t.Helper()
	origRead := readPassphraseFn
	origNew := newPassphraseFn
	t.Cleanup(func() {
		readPassphraseFn = origRead
		newPassphraseFn = origNew
	})

	readPassphraseFn = func(string) (string, error) { return passphrase, nil }
	newPassphraseFn = func() (string, error) { return passphrase, nil }
}

// executeCommand runs the root command with args and stdin, returning what
// was written to stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
