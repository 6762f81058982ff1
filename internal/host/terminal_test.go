package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/mrz1836/sigil-connect/internal/config"
	"github.com/mrz1836/sigil-connect/internal/localwallet"
	"github.com/mrz1836/sigil-connect/internal/provider"
	"github.com/mrz1836/sigil-connect/internal/provider/providertest"
	"github.com/mrz1836/sigil-connect/internal/session"
	"github.com/mrz1836/sigil-connect/internal/sigilcrypto"
	sigilerr "github.com/mrz1836/sigil-connect/pkg/errors"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestMain(m *testing.M) {
	keyring.MockInit()
	sigilcrypto.SetWorkFactor(10)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Home = t.TempDir()
	return cfg
}

func withKeystore(t *testing.T, cfg *config.Config) {
	t.Helper()
	_, err := localwallet.CreateKeystore(cfg.KeystorePath(), testMnemonic, "pw", cfg.Wallet.DerivationPath)
	require.NoError(t, err)
}

func fixedPassphrase(p string) func() (string, error) {
	return func() (string, error) { return p, nil }
}

func TestNewTerminal_NoKeystore(t *testing.T) {
	t.Parallel()
	called := false
	term, err := NewTerminal(Options{
		Config:     testConfig(t),
		Passphrase: func() (string, error) { called = true; return "", nil },
	})
	require.NoError(t, err)
	defer term.Close()

	_, ok := term.Locate()
	assert.False(t, ok)
	assert.Nil(t, term.Wallet())
	assert.False(t, called, "no keystore means no passphrase prompt")
}

func TestNewTerminal_Disabled(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	withKeystore(t, cfg)
	cfg.Provider.Enabled = false

	term, err := NewTerminal(Options{Config: cfg, Passphrase: fixedPassphrase("pw")})
	require.NoError(t, err)
	_, ok := term.Locate()
	assert.False(t, ok)
}

func TestNewTerminal_InjectsWallet(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Provider.Slot = "phantomTest"
	cfg.Wallet.AutoApprove = true
	withKeystore(t, cfg)

	term, err := NewTerminal(Options{Config: cfg, Passphrase: fixedPassphrase("pw"), Trust: localwallet.NewMemoryTrustStore()})
	require.NoError(t, err)
	defer term.Close()

	assert.Equal(t, "phantomTest", term.Slot())
	p, ok := term.Locate()
	require.True(t, ok)
	assert.Same(t, term.Wallet(), p)

	v, ok := term.Namespace().Lookup("phantomTest")
	require.True(t, ok)
	assert.Same(t, term.Wallet(), v)

	c := session.NewController(term.Locate)
	res := c.Connect(context.Background())
	require.Equal(t, session.OutcomeConnected, res.Outcome)
	assert.Equal(t, term.Wallet().Account().String(), res.Identity)

	res = c.Disconnect(context.Background())
	assert.Equal(t, session.OutcomeDisconnected, res.Outcome)
}

func TestNewTerminal_RejectingApproverByDefault(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	withKeystore(t, cfg)

	term, err := NewTerminal(Options{Config: cfg, Passphrase: fixedPassphrase("pw"), Trust: localwallet.NewMemoryTrustStore()})
	require.NoError(t, err)
	defer term.Close()

	c := session.NewController(term.Locate)
	res := c.Connect(context.Background())
	assert.Equal(t, session.OutcomeFailed, res.Outcome)
	require.ErrorIs(t, res.Err, provider.ErrUserRejected)
}

func TestNewTerminal_UnlockErrors(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Wallet.AutoApprove = true
	withKeystore(t, cfg)

	prompt := errors.New("no tty") //nolint:err113 // Test error
	tests := []struct {
		name       string
		passphrase func() (string, error)
		want       error
	}{
		{"no source", nil, provider.ErrUnauthorized},
		{"wrong passphrase", fixedPassphrase("nope"), sigilerr.ErrDecryptionFailed},
		{"prompt fails", func() (string, error) { return "", prompt }, prompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := NewTerminal(Options{Config: cfg, Passphrase: tt.passphrase, Trust: localwallet.NewMemoryTrustStore()})
			require.NoError(t, err, "construction never unlocks")
			defer term.Close()

			c := session.NewController(term.Locate)
			assert.True(t, c.State().ProviderPresent)

			res := c.Connect(context.Background())
			assert.Equal(t, session.OutcomeFailed, res.Outcome)
			require.ErrorIs(t, res.Err, tt.want)
			assert.Empty(t, c.State().Identity)
		})
	}
}

func TestNewTerminal_CorruptKeystore(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Home, config.DefaultKeystoreName), []byte("{"), 0o600))

	_, err := NewTerminal(Options{Config: cfg, Passphrase: fixedPassphrase("pw")})
	require.ErrorIs(t, err, sigilerr.ErrConfigInvalid)
}

func TestTerminal_LateInjection(t *testing.T) {
	t.Parallel()
	term, err := NewTerminal(Options{Config: testConfig(t)})
	require.NoError(t, err)

	c := session.NewController(term.Locate)
	assert.False(t, c.State().ProviderPresent)

	term.Inject(providertest.New().ConnectsAs("LATE"))
	res := c.Connect(context.Background())
	assert.Equal(t, session.OutcomeConnected, res.Outcome)
	assert.True(t, c.State().ProviderPresent)

	term.Eject()
	_, ok := term.Locate()
	assert.False(t, ok)
}

func TestDefaultTrustStore_Keychain(t *testing.T) {
	cfg := testConfig(t)

	_, ok := DefaultTrustStore(cfg, nil).(*localwallet.KeyringTrustStore)
	assert.True(t, ok)
}

func TestDefaultTrustStore_FileFallback(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keychain"))
	t.Cleanup(keyring.MockInit)

	cfg := testConfig(t)
	store := DefaultTrustStore(cfg, nil)
	fs, ok := store.(*localwallet.FileTrustStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(cfg.Home, config.DefaultTrustFileName), fs.Path())

	require.NoError(t, store.Trust("https://app.example", "ACC"))
	assert.True(t, DefaultTrustStore(cfg, nil).Trusted("https://app.example", "ACC"),
		"approvals outlive the store when no keychain is reachable")
}
