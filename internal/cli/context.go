package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil-connect/internal/config"
	"github.com/mrz1836/sigil-connect/internal/host"
	"github.com/mrz1836/sigil-connect/internal/localwallet"
	"github.com/mrz1836/sigil-connect/internal/metrics"
	"github.com/mrz1836/sigil-connect/internal/output"
	"github.com/mrz1836/sigil-connect/internal/provider"
	"github.com/mrz1836/sigil-connect/internal/session"
)

// CommandContext holds the session plumbing for one command.
type CommandContext struct {
	Config     *config.Config
	Logger     *config.Logger
	Fmt        *output.Formatter
	Lines      *localwallet.LineReader
	Host       *host.Terminal
	Controller *session.Controller
	Metrics    *metrics.Metrics
}

// sessionOptions are per-command overrides of the configured session
// behavior.
type sessionOptions struct {
	onlyIfTrusted bool
	onChange      func(session.State)
}

// newCommandContext builds the terminal host and a session controller over
// it. The controller looks up the host once, here.
func newCommandContext(cmd *cobra.Command, so sessionOptions) (*CommandContext, error) {
	lines := localwallet.NewLineReader(cmd.InOrStdin())

	term, err := host.NewTerminal(host.Options{
		Config: cfg,
		Passphrase: func() (string, error) {
			return readPassphraseFn("Wallet passphrase: ")
		},
		Approver: localwallet.NewTerminalApprover(lines, cmd.ErrOrStderr()),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithMetrics(metrics.Global),
		session.WithConnectOptions(provider.ConnectOptions{
			OnlyIfTrusted: so.onlyIfTrusted || cfg.Session.OnlyIfTrusted,
		}),
	}
	if cfg.Session.FollowProviderEvents {
		opts = append(opts, session.WithProviderEvents())
	}
	if so.onChange != nil {
		opts = append(opts, session.WithOnChange(so.onChange))
	}

	ctrl := session.NewController(term.Locate, opts...)
	logger.Debug("cli: session %s started (provider present: %t)", ctrl.ID(), ctrl.State().ProviderPresent)

	return &CommandContext{
		Config:     cfg,
		Logger:     logger,
		Fmt:        formatter,
		Lines:      lines,
		Host:       term,
		Controller: ctrl,
		Metrics:    metrics.Global,
	}, nil
}

// Close ejects and wipes the local wallet.
func (c *CommandContext) Close() {
	c.Host.Close()
}

// cmdContext returns the command's context, or Background for commands run
// outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
