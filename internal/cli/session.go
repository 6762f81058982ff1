package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil-connect/internal/output"
	"github.com/mrz1836/sigil-connect/internal/session"
	sigilerr "github.com/mrz1836/sigil-connect/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	connectTrusted bool
	connectQR      bool
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command
var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show whether a provider is present",
	GroupID: "session",
	Long: `Look up the provider slot and show which of the three session views applies:
no provider, provider found but not connected, or connected.

A new session never starts connected, so status never asks for a passphrase.`,
	Example: `  sigil-connect status
  sigil-connect status -o json
  sigil-connect status --no-provider`,
	RunE: runStatus,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command
var connectCmd = &cobra.Command{
	Use:     "connect",
	Short:   "Connect to the injected wallet",
	GroupID: "session",
	Long: `Locate the provider afresh and ask it to authorize this application.

The local wallet is unlocked with the keystore passphrase (prompted, or read
from SIGIL_CONNECT_PASSWORD) and then asks for approval unless this origin
was trusted before. With --trusted the wallet connects only if it would not
need to ask.`,
	Example: `  sigil-connect connect
  sigil-connect connect --trusted
  SIGIL_CONNECT_AUTO_APPROVE=1 sigil-connect connect --qr`,
	RunE: runConnect,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command
var disconnectCmd = &cobra.Command{
	Use:     "disconnect",
	Short:   "End the wallet session",
	GroupID: "session",
	Long: `Ask the provider to end its session with this application.

Each invocation starts a new session, which is never connected, so this
mainly exercises the provider's disconnect path. Use the shell command to
connect and disconnect within one session.`,
	Example: `  sigil-connect disconnect
  sigil-connect disconnect -o json`,
	RunE: runDisconnect,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	connectCmd.Flags().BoolVar(&connectTrusted, "trusted", false, "only connect if the origin is already trusted")
	connectCmd.Flags().BoolVar(&connectQR, "qr", false, "show the connected account as a QR code")

	rootCmd.AddCommand(statusCmd, connectCmd, disconnectCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc, err := newCommandContext(cmd, sessionOptions{})
	if err != nil {
		return err
	}
	defer cc.Close()

	return output.RenderSession(cmd.OutOrStdout(), cc.Fmt.Format(), cc.Controller.State(), nil)
}

func runConnect(cmd *cobra.Command, _ []string) error {
	cc, err := newCommandContext(cmd, sessionOptions{onlyIfTrusted: connectTrusted})
	if err != nil {
		return err
	}
	defer cc.Close()

	res := cc.Controller.Connect(cmdContext(cmd))
	if err := renderResult(cmd, cc, res); err != nil {
		return err
	}

	if res.Outcome == session.OutcomeConnected && (connectQR || cc.Config.Output.QR) && !cc.Fmt.IsJSON() {
		_ = output.RenderQR(cmd.OutOrStdout(), output.IdentityURI(res.Identity), output.DefaultQRConfig())
	}
	return resultError(res, sigilerr.ErrConnectFailed)
}

func runDisconnect(cmd *cobra.Command, _ []string) error {
	cc, err := newCommandContext(cmd, sessionOptions{})
	if err != nil {
		return err
	}
	defer cc.Close()

	res := cc.Controller.Disconnect(cmdContext(cmd))
	if err := renderResult(cmd, cc, res); err != nil {
		return err
	}
	return resultError(res, sigilerr.ErrDisconnectFailed)
}

// renderResult shows the session view after a lifecycle call. Failed calls
// render nothing; the error is reported by Execute.
func renderResult(cmd *cobra.Command, cc *CommandContext, res session.Result) error {
	if res.Outcome == session.OutcomeFailed {
		return nil
	}
	return output.RenderSession(cmd.OutOrStdout(), cc.Fmt.Format(), cc.Controller.State(), &res)
}

// resultError maps a lifecycle result to the CLI error taxonomy. failed is
// the error reported for an OutcomeFailed result.
func resultError(res session.Result, failed error) error {
	switch res.Outcome {
	case session.OutcomeNoProvider:
		return sigilerr.WithSuggestion(sigilerr.ErrNoProvider,
			"run 'sigil-connect wallet init' to create a local wallet, or install Phantom: "+output.InstallURL)
	case session.OutcomeBusy:
		return sigilerr.WithCause(sigilerr.ErrSessionBusy, res.Err)
	case session.OutcomeFailed:
		return sigilerr.WithCause(failed, res.Err)
	default:
		return nil
	}
}
