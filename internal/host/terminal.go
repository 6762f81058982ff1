// Package host provides the environments a session controller can run in.
//
// A host owns the namespace that providers are injected into. The terminal
// host keeps an in-process namespace and injects the local wallet when one
// has been set up; the js subpackage adapts a browser window.
package host

import (
	"path/filepath"

	"github.com/mrz1836/sigil-connect/internal/config"
	"github.com/mrz1836/sigil-connect/internal/locator"
	"github.com/mrz1836/sigil-connect/internal/localwallet"
	"github.com/mrz1836/sigil-connect/internal/provider"
	sigilerr "github.com/mrz1836/sigil-connect/pkg/errors"
)

// Logger receives diagnostic output. *config.Logger satisfies it.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// Options configures a Terminal.
type Options struct {
	Config *config.Config

	// Passphrase is called when the local wallet first has to be unlocked.
	Passphrase func() (string, error)

	// Approver answers prompts when auto-approve is off.
	Approver localwallet.Approver

	// Trust overrides the trusted-origin store. Defaults to DefaultTrustStore.
	Trust localwallet.TrustStore

	Logger Logger
}

// Terminal is the host used by the CLI.
type Terminal struct {
	ns     *locator.MapNamespace
	slot   string
	wallet *localwallet.Wallet
	logger Logger
}

// NewTerminal builds the terminal namespace. The local wallet is injected,
// still locked, into the configured slot when the provider is enabled and a
// keystore exists; otherwise the slot stays empty.
func NewTerminal(opts Options) (*Terminal, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	t := &Terminal{
		ns:     locator.NewMapNamespace(),
		slot:   cfg.GetProviderSlot(),
		logger: logger,
	}

	if !cfg.Provider.Enabled {
		logger.Debug("host: local provider disabled")
		return t, nil
	}

	path := cfg.KeystorePath()
	if !localwallet.KeystoreExists(path) {
		logger.Debug("host: no keystore at %s", path)
		return t, nil
	}

	ks, err := localwallet.LoadKeystore(path)
	if err != nil {
		return nil, err
	}
	t.wallet, err = localwallet.NewLocked(ks, opts.Passphrase, localwallet.Options{
		Origin:            cfg.Wallet.Origin,
		Approver:          approver(cfg, opts.Approver),
		Trust:             trustStore(cfg, opts.Trust, logger),
		RequestsPerSecond: cfg.Wallet.RequestsPerSecond,
		RequestBurst:      cfg.Wallet.RequestBurst,
		Logger:            logger,
	})
	if err != nil {
		return nil, sigilerr.WithCause(sigilerr.ErrConfigInvalid, err)
	}
	t.Inject(t.wallet)
	logger.Debug("host: injected local wallet %s into %q", ks.PublicKey, t.slot)
	return t, nil
}

func approver(cfg *config.Config, a localwallet.Approver) localwallet.Approver {
	if cfg.Wallet.AutoApprove {
		return localwallet.AutoApprover{Allow: true}
	}
	return a
}

func trustStore(cfg *config.Config, s localwallet.TrustStore, logger Logger) localwallet.TrustStore {
	if s != nil {
		return s
	}
	return DefaultTrustStore(cfg, logger)
}

// DefaultTrustStore returns the OS keychain store when one is reachable.
// Otherwise approvals go to a file in the home directory, or to process
// memory if that file cannot be read.
func DefaultTrustStore(cfg *config.Config, logger Logger) localwallet.TrustStore {
	if logger == nil {
		logger = nopLogger{}
	}
	if localwallet.KeyringAvailable() {
		return localwallet.NewKeyringTrustStore()
	}

	path := filepath.Join(cfg.Home, config.DefaultTrustFileName)
	fs, err := localwallet.NewFileTrustStore(path)
	switch {
	case fs == nil:
		logger.Error("host: %v, trusted origins last for this process only", err)
		return localwallet.NewMemoryTrustStore()
	case err != nil:
		logger.Error("host: %v", err)
	}
	logger.Debug("host: keychain unavailable, trusted origins kept in %s", path)
	return fs
}

// Slot returns the name providers are injected under.
func (t *Terminal) Slot() string {
	return t.slot
}

// Namespace returns the host namespace.
func (t *Terminal) Namespace() locator.Namespace {
	return t.ns
}

// Locate looks the provider up in the host namespace.
func (t *Terminal) Locate() (provider.Provider, bool) {
	return locator.Locate(t.ns, t.slot)
}

// Wallet returns the injected local wallet, or nil.
func (t *Terminal) Wallet() *localwallet.Wallet {
	return t.wallet
}

// Inject places v in the provider slot, replacing what was there.
func (t *Terminal) Inject(v any) {
	t.ns.Set(t.slot, v)
}

// Eject empties the provider slot.
func (t *Terminal) Eject() {
	t.ns.Delete(t.slot)
}

// Close ejects and wipes the local wallet.
func (t *Terminal) Close() {
	t.Eject()
	if t.wallet != nil {
		t.wallet.Close()
	}
}
