// Package config provides configuration management for sigil-connect.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/sigil-connect/internal/fileutil"
)

// Config validation errors.
var (
	// ErrInvalidSlot indicates the provider slot is not a valid global name.
	ErrInvalidSlot = errors.New("invalid provider slot")

	// ErrInvalidDerivationPath indicates the wallet derivation path is malformed.
	ErrInvalidDerivationPath = errors.New("invalid derivation path")

	// ErrInvalidRateLimit indicates a non-positive request rate or burst.
	ErrInvalidRateLimit = errors.New("invalid request rate limit")

	// ErrInvalidWorkFactor indicates a scrypt cost outside the range the
	// keystore can still be opened with.
	ErrInvalidWorkFactor = errors.New("invalid scrypt work factor")
)

// slotRegex matches identifiers usable as a global property name.
var slotRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]{0,63}$`)

// derivationPathRegex matches fully hardened paths such as m/44'/501'/0'/0'.
var derivationPathRegex = regexp.MustCompile(`^m(/[0-9]+')+$`)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Provider ProviderConfig `yaml:"provider"`
	Session  SessionConfig  `yaml:"session"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ProviderConfig defines where the provider is injected.
type ProviderConfig struct {
	// Slot is the global name the locator looks up.
	Slot string `yaml:"slot"`
	// Enabled controls whether the local wallet is injected at all.
	Enabled bool `yaml:"enabled"`
}

// SessionConfig defines session controller behavior.
type SessionConfig struct {
	FollowProviderEvents bool `yaml:"follow_provider_events"`
	OnlyIfTrusted        bool `yaml:"only_if_trusted"`
}

// WalletConfig defines the local development provider. ScryptWorkFactor is
// log2 of the scrypt cost for new keystores; zero keeps age's default.
type WalletConfig struct {
	Keystore          string  `yaml:"keystore"`
	DerivationPath    string  `yaml:"derivation_path"`
	Origin            string  `yaml:"origin"`
	AutoApprove       bool    `yaml:"auto_approve"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	RequestBurst      int     `yaml:"request_burst"`
	ScryptWorkFactor  int     `yaml:"scrypt_work_factor"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
	QR            bool   `yaml:"qr"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Wallet.Origin = SanitizeURL(cfg.Wallet.Origin)

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if !slotRegex.MatchString(c.Provider.Slot) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, c.Provider.Slot)
	}
	if !derivationPathRegex.MatchString(c.Wallet.DerivationPath) {
		return fmt.Errorf("%w: %q (ed25519 paths must be fully hardened)", ErrInvalidDerivationPath, c.Wallet.DerivationPath)
	}
	if c.Wallet.RequestsPerSecond <= 0 || c.Wallet.RequestBurst <= 0 {
		return ErrInvalidRateLimit
	}
	if wf := c.Wallet.ScryptWorkFactor; wf != 0 && (wf < MinScryptWorkFactor || wf > MaxScryptWorkFactor) {
		return fmt.Errorf("%w: %d (use 0 or %d-%d)", ErrInvalidWorkFactor, wf, MinScryptWorkFactor, MaxScryptWorkFactor)
	}
	return nil
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// KeystorePath returns the keystore path, resolved against the home
// directory when relative.
func (c *Config) KeystorePath() string {
	p := c.Wallet.Keystore
	if p == "" {
		p = DefaultKeystoreName
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "~") {
		return p
	}
	return filepath.Join(c.Home, p)
}

// GetHome returns the home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetProviderSlot returns the global name the locator looks up.
func (c *Config) GetProviderSlot() string {
	return c.Provider.Slot
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the log file path, defaulting to a file in the
// home directory.
func (c *Config) GetLoggingFile() string {
	if c.Logging.File == "" {
		return filepath.Join(c.Home, DefaultLogName)
	}
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// DefaultHome returns the default home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sigil-connect"
	}
	return filepath.Join(home, ".sigil-connect")
}
