package config

// DefaultSlot is the global name injected wallets use.
const DefaultSlot = "solana"

// DefaultDerivationPath is the account path used by Phantom-compatible wallets.
const DefaultDerivationPath = "m/44'/501'/0'/0'"

// DefaultKeystoreName is the keystore file name inside the home directory.
const DefaultKeystoreName = "keystore.json"

// DefaultTrustFileName holds trusted origins when no OS keychain is available.
const DefaultTrustFileName = "trusted-origins.json"

// DefaultLogName is the log file name inside the home directory.
const DefaultLogName = "sigil-connect.log"

// Scrypt cost bounds for keystores, as log2 of N.
const (
	MinScryptWorkFactor = 10
	MaxScryptWorkFactor = 22
)

// DefaultOrigin identifies this application to the wallet.
const DefaultOrigin = "sigil-connect://localhost"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.sigil-connect",
		Provider: ProviderConfig{
			Slot:    DefaultSlot,
			Enabled: true,
		},
		Session: SessionConfig{
			FollowProviderEvents: false,
			OnlyIfTrusted:        false,
		},
		Wallet: WalletConfig{
			Keystore:          DefaultKeystoreName,
			DerivationPath:    DefaultDerivationPath,
			Origin:            DefaultOrigin,
			AutoApprove:       false,
			RequestsPerSecond: 5,
			RequestBurst:      5,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
			QR:            false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "",
		},
	}
}
