package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walkCommands calls fn for cmd and every command below it, skipping the
// help and completion commands cobra generates.
func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	if cmd.HasParent() && (cmd.Name() == "help" || cmd.Name() == "completion") && cmd.Parent() == rootCmd {
		return
	}
	fn(cmd)
	for _, sub := range cmd.Commands() {
		walkCommands(sub, fn)
	}
}

func TestAllCommandsHaveShortDescription(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.Short, "%s: missing Short description", cmd.CommandPath())
		})
	})
}

func TestAllCommandsHaveLongDescription(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.Long, "%s: missing Long description", cmd.CommandPath())
		})
	})
}

// TestLeafCommandsHaveExamples verifies that every runnable command has an
// Example field.
func TestLeafCommandsHaveExamples(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		if cmd.RunE == nil && cmd.Run == nil {
			return
		}
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.Example, "%s: leaf command missing Example field", cmd.CommandPath())
		})
	})
}

func TestNoEmbeddedExamplesInLong(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.False(t,
				strings.Contains(cmd.Long, "\nExample:") || strings.Contains(cmd.Long, "\nExamples:"),
				"%s: Long contains embedded examples", cmd.CommandPath())
		})
	})
}

func TestAllFlagsHaveDescriptions(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			t.Run(cmd.CommandPath()+"/--"+f.Name, func(t *testing.T) {
				assert.NotEmpty(t, f.Usage, "flag --%s on %s has no description", f.Name, cmd.CommandPath())
			})
		})
	})
}

func TestCommandGroupsAssigned(t *testing.T) {
	for _, cmd := range rootCmd.Commands() {
		if !cmd.IsAvailableCommand() {
			continue
		}
		t.Run(cmd.Name(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.GroupID, "top-level command %q missing GroupID", cmd.Name())
		})
	}
}

func TestRootHelpContainsGroups(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Session:")
	assert.Contains(t, stdout, "Local Wallet:")
	assert.Contains(t, stdout, "Configuration:")
}

func TestWalletHelpShowsSubcommands(t *testing.T) {
	buf := new(bytes.Buffer)
	walletCmd.SetOut(buf)
	t.Cleanup(func() { walletCmd.SetOut(nil) })

	require.NoError(t, walletCmd.Help())
	help := buf.String()

	assert.Contains(t, help, "Available Commands:")
	for _, sub := range walletCmd.Commands() {
		assert.Contains(t, help, sub.Name())
	}
}

func TestWalkCommandsVisitsAll(t *testing.T) {
	var visited []string
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		visited = append(visited, cmd.CommandPath())
	})

	for _, path := range []string{
		"sigil-connect",
		"sigil-connect status",
		"sigil-connect connect",
		"sigil-connect disconnect",
		"sigil-connect shell",
		"sigil-connect wallet",
		"sigil-connect wallet init",
		"sigil-connect wallet address",
		"sigil-connect wallet revoke",
		"sigil-connect version",
	} {
		assert.Contains(t, visited, path)
	}
}
