package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome         = "SIGIL_CONNECT_HOME"
	EnvOutputFormat = "SIGIL_CONNECT_OUTPUT_FORMAT"
	EnvVerbose      = "SIGIL_CONNECT_VERBOSE"
	EnvLogLevel     = "SIGIL_CONNECT_LOG_LEVEL"
	EnvProviderSlot = "SIGIL_CONNECT_PROVIDER_SLOT"
	EnvOrigin       = "SIGIL_CONNECT_ORIGIN"
	EnvAutoApprove  = "SIGIL_CONNECT_AUTO_APPROVE"
	EnvPassword     = "SIGIL_CONNECT_PASSWORD" // #nosec G101 -- env var name, not a credential
	EnvNoColor      = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// Slot names are identifiers; shell quoting and stray punctuation are dropped.
	if v := sanitize.PathName(strings.TrimSpace(os.Getenv(EnvProviderSlot))); v != "" {
		cfg.Provider.Slot = v
	}

	if v := SanitizeURL(os.Getenv(EnvOrigin)); v != "" {
		cfg.Wallet.Origin = v
	}

	if v := os.Getenv(EnvAutoApprove); v != "" {
		cfg.Wallet.AutoApprove = parseBool(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans an origin URL by removing invalid characters and trimming whitespace.
// This strips copy-paste artifacts such as quotes, angle brackets and newlines.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}
