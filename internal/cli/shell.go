package cli

import (
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil-connect/internal/output"
	"github.com/mrz1836/sigil-connect/internal/session"
	sigilerr "github.com/mrz1836/sigil-connect/pkg/errors"
)

// maxSuggestDistance bounds "did you mean" suggestions for shell commands.
const maxSuggestDistance = 2

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command
var shellCmd = &cobra.Command{
	Use:     "shell",
	Short:   "Run an interactive session",
	GroupID: "session",
	Long: `Start one session and drive it interactively.

The session state is printed whenever it changes, including changes the
provider reports on its own when session.follow_provider_events is set.
Type 'help' for the list of commands.`,
	Example: `  sigil-connect shell
  printf 'connect\ny\nstatus\ndisconnect\nquit\n' | SIGIL_CONNECT_PASSWORD=secret sigil-connect shell`,
	RunE: runShell,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(shellCmd)
}

// shellCommand is one REPL command.
type shellCommand struct {
	help string
	run  func(sh *shell) error
}

// shell holds the state of one interactive session.
type shell struct {
	cmd  *cobra.Command
	cc   *CommandContext
	out  io.Writer
	done bool
}

//nolint:gochecknoglobals // Static command table
var shellCommands map[string]shellCommand

//nolint:gochecknoinits // Table refers to handlers that refer back to it
func init() {
	shellCommands = map[string]shellCommand{
		"connect":    {help: "connect the wallet", run: (*shell).connect},
		"disconnect": {help: "end the wallet session", run: (*shell).disconnect},
		"status":     {help: "show the session", run: (*shell).status},
		"metrics":    {help: "show session counters", run: (*shell).metrics},
		"inject":     {help: "put the local wallet back into the provider slot", run: (*shell).inject},
		"eject":      {help: "empty the provider slot", run: (*shell).eject},
		"help":       {help: "list commands", run: (*shell).help},
		"quit":       {help: "leave the shell", run: (*shell).quit},
		"exit":       {help: "leave the shell", run: (*shell).quit},
	}
}

func runShell(cmd *cobra.Command, _ []string) error {
	var ready atomic.Bool
	w := cmd.OutOrStdout()

	cc, err := newCommandContext(cmd, sessionOptions{
		onChange: func(s session.State) {
			if ready.Load() {
				_ = output.RenderSession(w, formatter.Format(), s, nil)
			}
		},
	})
	if err != nil {
		return err
	}
	defer cc.Close()

	sh := &shell{cmd: cmd, cc: cc, out: w}
	if !cc.Fmt.IsJSON() {
		outln(w, "sigil-connect shell. Type 'help' for commands.")
	}
	_ = output.RenderSession(w, cc.Fmt.Format(), cc.Controller.State(), nil)
	ready.Store(true)

	ctx := cmdContext(cmd)
	for !sh.done {
		if !cc.Fmt.IsJSON() {
			out(w, "sigil> ")
		}
		line, err := cc.Lines.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			outln(w)
			return nil
		}
		if err != nil {
			return err
		}
		if err := sh.exec(line); err != nil {
			_ = output.FormatError(cmd.ErrOrStderr(), err, cc.Fmt.Format())
		}
	}
	return nil
}

// exec runs one input line. Blank lines are ignored.
func (sh *shell) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])

	c, ok := shellCommands[name]
	if !ok {
		err := sigilerr.WithDetails(sigilerr.ErrUnknownCommand, map[string]string{"command": name})
		if s := suggestCommand(name); s != "" {
			err = sigilerr.WithSuggestion(err, "did you mean '"+s+"'?")
		}
		return err
	}

	sh.cc.Logger.Debug("shell: %s", name)
	return c.run(sh)
}

// suggestCommand returns the closest known command within
// maxSuggestDistance, or "".
func suggestCommand(input string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, name := range commandNames() {
		if d := levenshtein.ComputeDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func commandNames() []string {
	names := make([]string, 0, len(shellCommands))
	for name := range shellCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// connect and disconnect rely on the change callback to show the new view;
// outcomes that change nothing are reported as errors.
func (sh *shell) connect() error {
	res := sh.cc.Controller.Connect(cmdContext(sh.cmd))
	return resultError(res, sigilerr.ErrConnectFailed)
}

func (sh *shell) disconnect() error {
	res := sh.cc.Controller.Disconnect(cmdContext(sh.cmd))
	if res.Outcome == session.OutcomeDisconnected && !sh.cc.Fmt.IsJSON() {
		output.Success(sh.out, "Disconnected")
	}
	return resultError(res, sigilerr.ErrDisconnectFailed)
}

func (sh *shell) status() error {
	return output.RenderSession(sh.out, sh.cc.Fmt.Format(), sh.cc.Controller.State(), nil)
}

func (sh *shell) metrics() error {
	snap := sh.cc.Metrics.Snapshot()
	if sh.cc.Fmt.IsJSON() {
		return sh.cc.Fmt.Print(snap)
	}

	t := output.NewTable("METRIC", "VALUE")
	t.AddRow("connect attempts", strconv.FormatInt(snap.ConnectAttempts, 10))
	t.AddRow("connect successes", strconv.FormatInt(snap.ConnectSuccesses, 10))
	t.AddRow("connect failures", strconv.FormatInt(snap.ConnectFailures, 10))
	t.AddRow("disconnect attempts", strconv.FormatInt(snap.DisconnectAttempts, 10))
	t.AddRow("disconnect successes", strconv.FormatInt(snap.DisconnectSuccesses, 10))
	t.AddRow("disconnect failures", strconv.FormatInt(snap.DisconnectFailures, 10))
	t.AddRow("provider absent", strconv.FormatInt(snap.ProviderAbsent, 10))
	t.AddRow("busy rejections", strconv.FormatInt(snap.BusyRejections, 10))
	t.AddRow("provider events", strconv.FormatInt(snap.ProviderEvents, 10))
	t.AddRow("connect success rate", strconv.FormatFloat(sh.cc.Metrics.ConnectSuccessRate(), 'f', 1, 64)+"%")
	return t.Render(sh.out)
}

func (sh *shell) inject() error {
	w := sh.cc.Host.Wallet()
	if w == nil {
		return sigilerr.WithSuggestion(sigilerr.ErrKeystoreNotFound, "run 'sigil-connect wallet init' first")
	}
	sh.cc.Host.Inject(w)
	output.Info(sh.out, "Local wallet injected into %q", sh.cc.Host.Slot())
	return nil
}

func (sh *shell) eject() error {
	sh.cc.Host.Eject()
	output.Info(sh.out, "Provider slot %q emptied", sh.cc.Host.Slot())
	return nil
}

func (sh *shell) help() error {
	t := output.NewTable("COMMAND", "DESCRIPTION")
	for _, name := range commandNames() {
		t.AddRow(name, shellCommands[name].help)
	}
	return t.Render(sh.out)
}

func (sh *shell) quit() error {
	sh.done = true
	return nil
}
