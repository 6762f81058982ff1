// Package session tracks the connection between this application and an
// injected wallet provider.
//
// A Controller locates the provider once at start-up, then exposes two
// lifecycle operations, Connect and Disconnect, which delegate to the
// provider and update the connected identity. Provider failures never
// escape as errors or panics: they are logged, counted, and reported back
// in a Result so a presentation layer can choose what to show.
package session

import (
	"errors"
)

// Session errors.
var (
	// ErrOperationInFlight indicates a lifecycle call was rejected because
	// another one had not finished yet.
	ErrOperationInFlight = errors.New("a connect or disconnect is already in progress")

	// ErrMissingIdentity indicates the provider reported success without a
	// usable public key.
	ErrMissingIdentity = errors.New("provider returned no public key")
)

// Display is one of the three mutually exclusive views of a session.
type Display int

// Session displays.
const (
	// DisplayNoProvider means no compatible provider was found.
	DisplayNoProvider Display = iota

	// DisplayDisconnected means a provider is present but not connected.
	DisplayDisconnected

	// DisplayConnected means a provider is present and an identity is held.
	DisplayConnected
)

// String returns the display name.
func (d Display) String() string {
	switch d {
	case DisplayConnected:
		return "connected"
	case DisplayDisconnected:
		return "disconnected"
	default:
		return "no_provider"
	}
}

// State is the read-only view of a session consumed by presentation code.
type State struct {
	// ProviderPresent reports whether a provider reference is held.
	ProviderPresent bool `json:"provider_present"`

	// Identity is the display form of the connected public key.
	// Empty means no identity.
	Identity string `json:"identity,omitempty"`
}

// Connected reports whether an identity is held.
func (s State) Connected() bool {
	return s.Identity != ""
}

// Display returns which view the presentation layer should show.
func (s State) Display() Display {
	switch {
	case !s.ProviderPresent:
		return DisplayNoProvider
	case s.Identity == "":
		return DisplayDisconnected
	default:
		return DisplayConnected
	}
}

// Outcome classifies the result of a lifecycle call.
type Outcome int

// Lifecycle outcomes.
const (
	// OutcomeConnected means connect succeeded and the identity was stored.
	OutcomeConnected Outcome = iota + 1

	// OutcomeDisconnected means disconnect succeeded and the identity was cleared.
	OutcomeDisconnected

	// OutcomeNoProvider means there was no provider to delegate to.
	OutcomeNoProvider

	// OutcomeFailed means the provider call failed; state is unchanged.
	OutcomeFailed

	// OutcomeBusy means another lifecycle call was still running.
	OutcomeBusy
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeConnected:
		return "connected"
	case OutcomeDisconnected:
		return "disconnected"
	case OutcomeNoProvider:
		return "no_provider"
	case OutcomeFailed:
		return "failed"
	case OutcomeBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Result reports what a lifecycle call did.
type Result struct {
	Outcome Outcome

	// Identity is the identity held after the call.
	Identity string

	// Err explains a failed or busy outcome. It is informational only; the
	// controller has already logged it.
	Err error

	changed bool
}

// Changed reports whether the call mutated the identity. A disconnect of a
// session that held no identity, or a connect that returned the identity
// already held, changes nothing.
func (r Result) Changed() bool {
	return r.changed
}

// Logger receives diagnostic output. *config.Logger satisfies it.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
