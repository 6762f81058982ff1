package output

import (
	"fmt"
	"io"

	"github.com/mrz1836/sigil-connect/internal/session"
)

// InstallURL is where users without a provider are sent.
const InstallURL = "https://phantom.app/"

// SessionView is the JSON shape of a session.
type SessionView struct {
	Display         string `json:"display"`
	ProviderPresent bool   `json:"provider_present"`
	Identity        string `json:"identity,omitempty"`
	Outcome         string `json:"outcome,omitempty"`
	Error           string `json:"error,omitempty"`
	InstallURL      string `json:"install_url,omitempty"`
}

// NewSessionView builds the view of s, annotated with the last result if
// there was one.
func NewSessionView(s session.State, last *session.Result) SessionView {
	v := SessionView{
		Display:         s.Display().String(),
		ProviderPresent: s.ProviderPresent,
		Identity:        s.Identity,
	}
	if s.Display() == session.DisplayNoProvider {
		v.InstallURL = InstallURL
	}
	if last != nil {
		v.Outcome = last.Outcome.String()
		if last.Err != nil {
			v.Error = last.Err.Error()
		}
	}
	return v
}

// RenderSession writes the one view that matches the session state.
func RenderSession(w io.Writer, format Format, s session.State, last *session.Result) error {
	view := NewSessionView(s, last)
	if format == FormatJSON {
		return writeJSON(w, view)
	}

	var err error
	switch s.Display() {
	case session.DisplayConnected:
		_, err = fmt.Fprintf(w, "Connected account: %s\n  (run 'disconnect' to end the session)\n", s.Identity)
	case session.DisplayDisconnected:
		_, err = fmt.Fprintln(w, "Wallet found, not connected.\n  (run 'connect' to connect your wallet)")
	default:
		_, err = fmt.Fprintf(w, "No provider found. Install Phantom: %s\n", InstallURL)
	}
	if err != nil {
		return err
	}

	if last != nil && last.Outcome == session.OutcomeBusy {
		_, err = fmt.Fprintln(w, "  (another connect or disconnect is still running)")
	}
	return err
}
