package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil-connect/internal/config"
)

func TestShell_ConnectDisconnect(t *testing.T) {
	home := newHome(t, true)
	withMockPrompts(t, testPassphrase)

	script := strings.Join([]string{"status", "connect", "y", "status", "disconnect", "quit"}, "\n") + "\n"
	stdout, stderr, err := executeCommand(t, script, "shell", "--home", home, "-o", "text")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Wallet found, not connected.")
	assert.Contains(t, stdout, "Connected account: "+sharedAddress)
	assert.Contains(t, stdout, "Disconnected")
	assert.Contains(t, stderr, "Approve? [y/N]")

	// The view after disconnect is the disconnected one again.
	last := stdout[strings.LastIndex(stdout, "Connected account"):]
	assert.Contains(t, last, "Wallet found, not connected.")
}

func TestShell_EndOfInputExits(t *testing.T) {
	home := newHome(t, false)

	stdout, _, err := executeCommand(t, "status\n", "shell", "--home", home, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No provider found")
}

func TestShell_UnknownCommandSuggests(t *testing.T) {
	home := newHome(t, false)

	_, stderr, err := executeCommand(t, "conect\nexit\n", "shell", "--home", home, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stderr, "unknown command")
	assert.Contains(t, stderr, "did you mean 'connect'?")
}

func TestShell_EjectThenConnect(t *testing.T) {
	home := newHome(t, true)
	withMockPrompts(t, testPassphrase)
	t.Setenv(config.EnvAutoApprove, "1")

	script := "eject\nconnect\ninject\nconnect\nquit\n"
	stdout, stderr, err := executeCommand(t, script, "shell", "--home", home, "-o", "text")
	require.NoError(t, err)

	assert.Contains(t, stdout, `Provider slot "solana" emptied`)
	assert.Contains(t, stderr, "no wallet provider found")
	assert.Contains(t, stdout, `Local wallet injected into "solana"`)
	assert.Contains(t, stdout, "Connected account: "+sharedAddress)
}

func TestShell_InjectWithoutWallet(t *testing.T) {
	home := newHome(t, false)

	_, stderr, err := executeCommand(t, "inject\nquit\n", "shell", "--home", home, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stderr, "wallet init")
}

func TestShell_MetricsAndHelp(t *testing.T) {
	home := newHome(t, false)

	stdout, _, err := executeCommand(t, "metrics\nhelp\nquit\n", "shell", "--home", home, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "connect success rate")
	assert.Contains(t, stdout, "provider absent")
	for _, name := range commandNames() {
		assert.Contains(t, stdout, name)
	}
}

func TestSuggestCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "connect", suggestCommand("conect"))
	assert.Equal(t, "status", suggestCommand("statsu"))
	assert.Equal(t, "eject", suggestCommand("ejct"))
	assert.Empty(t, suggestCommand("withdraw"))
}
