// Package cli implements the sigil-connect command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil-connect/internal/config"
	"github.com/mrz1836/sigil-connect/internal/fileutil"
	"github.com/mrz1836/sigil-connect/internal/output"
	"github.com/mrz1836/sigil-connect/internal/sigilcrypto"
	sigilerr "github.com/mrz1836/sigil-connect/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	noProvider   bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sigil-connect",
	Short: "Connect to a Phantom-compatible wallet from the terminal",
	Long: `sigil-connect finds an injected Phantom-compatible wallet provider and
manages a connect/disconnect session with it.

In the terminal the provider is a local development wallet, created with
'sigil-connect wallet init'. The same session controller runs in the browser
through the sigil-connect-wasm build, where the provider is the real
extension.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd.OutOrStdout())
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		format := output.FormatText
		if formatter != nil {
			format = formatter.Format()
		}
		_ = output.FormatError(os.Stderr, err, format)
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return sigilerr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals(stdout io.Writer) error {
	// Determine home directory
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}
	home, err := fileutil.ExpandHome(home)
	if err != nil {
		return sigilerr.Wrap(err, "resolving home directory")
	}

	// Load or create config
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		// Use defaults if config doesn't exist
		cfg = config.Defaults()
	}
	cfg.Home = home

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if cfg.Home, err = fileutil.ExpandHome(cfg.Home); err != nil {
		return sigilerr.Wrap(err, "resolving home directory")
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}
	if noProvider {
		cfg.Provider.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return sigilerr.WithCause(sigilerr.ErrConfigInvalid, err)
	}

	sigilcrypto.SetWorkFactor(cfg.Wallet.ScryptWorkFactor)

	// Initialize logger
	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLogger(logLevel, cfg.GetLoggingFile())
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, stdout)

	return nil
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "session", Title: "Session:"},
		&cobra.Group{ID: "wallet", Title: "Local Wallet:"},
		&cobra.Group{ID: "config", Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID("config")
	rootCmd.SetCompletionCommandGroupID("config")

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "sigil-connect data directory (default: ~/.sigil-connect)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noProvider, "no-provider", false, "do not inject the local wallet")
}
