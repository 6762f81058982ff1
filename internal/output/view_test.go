package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil-connect/internal/output"
	"github.com/mrz1836/sigil-connect/internal/provider"
	"github.com/mrz1836/sigil-connect/internal/session"
)

func TestRenderSession_Text(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		state    session.State
		contains string
		excludes string
	}{
		{"connected", session.State{ProviderPresent: true, Identity: "ABC123"}, "Connected account: ABC123", "No provider"},
		{"disconnected", session.State{ProviderPresent: true}, "run 'connect'", "Connected account"},
		{"no provider", session.State{}, "No provider found. Install Phantom: https://phantom.app/", "Connected account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, output.RenderSession(&buf, output.FormatText, tt.state, nil))
			assert.Contains(t, buf.String(), tt.contains)
			assert.NotContains(t, buf.String(), tt.excludes)
		})
	}
}

func TestRenderSession_BusyNote(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	last := session.Result{Outcome: session.OutcomeBusy, Err: session.ErrOperationInFlight}
	require.NoError(t, output.RenderSession(&buf, output.FormatText, session.State{ProviderPresent: true}, &last))
	assert.Contains(t, buf.String(), "still running")
}

func TestRenderSession_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	last := session.Result{Outcome: session.OutcomeFailed, Err: provider.ErrUserRejected}
	require.NoError(t, output.RenderSession(&buf, output.FormatJSON, session.State{ProviderPresent: true}, &last))

	var view output.SessionView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.Equal(t, "disconnected", view.Display)
	assert.True(t, view.ProviderPresent)
	assert.Empty(t, view.Identity)
	assert.Equal(t, "failed", view.Outcome)
	assert.Contains(t, view.Error, "4001")
	assert.Empty(t, view.InstallURL)
}

func TestNewSessionView_NoProviderHasInstallURL(t *testing.T) {
	t.Parallel()

	view := output.NewSessionView(session.State{}, nil)
	assert.Equal(t, "no_provider", view.Display)
	assert.Equal(t, output.InstallURL, view.InstallURL)
	assert.Empty(t, view.Outcome)
}
