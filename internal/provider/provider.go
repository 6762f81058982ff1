// Package provider defines the contract of an injected wallet provider.
//
// A provider is owned by its host (a browser page, or the terminal host in
// this repository). Callers only ever hold a non-owning reference to it and
// delegate the connect/disconnect lifecycle to it.
package provider

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the capability set exposed by an injected wallet.
type Provider interface {
	// PublicKey returns the connected account, or nil when there is none.
	PublicKey() PublicKey

	// ConnectionState reports whether the provider considers itself connected.
	ConnectionState() ConnectionState

	// Connect asks the wallet to authorize this application. The wallet may
	// show its own approval UI, so the call can block until the user answers.
	Connect(ctx context.Context, opts ConnectOptions) (ConnectResponse, error)

	// Disconnect ends the wallet-side session.
	Disconnect(ctx context.Context) error

	// SignTransaction signs a single transaction.
	SignTransaction(ctx context.Context, tx *Transaction) (*Transaction, error)

	// SignAllTransactions signs a batch of transactions.
	SignAllTransactions(ctx context.Context, txs []*Transaction) ([]*Transaction, error)

	// SignMessage signs an arbitrary message. display controls how the wallet
	// shows the message to the user.
	SignMessage(ctx context.Context, message []byte, display DisplayEncoding) (*SignedMessage, error)

	// On registers a handler for a provider-originated event.
	On(event Event, handler Handler)

	// Request is the generic method dispatcher.
	Request(ctx context.Context, method RequestMethod, params any) (any, error)
}

// Marker is implemented by providers that identify their kind. Only objects
// whose marker reports true are accepted by the locator.
type Marker interface {
	IsPhantom() bool
}

// ConnectOptions modifies a connect request.
type ConnectOptions struct {
	// OnlyIfTrusted connects silently when the application was approved
	// before, and fails with ErrUserRejected otherwise.
	OnlyIfTrusted bool `json:"onlyIfTrusted,omitempty"`
}

// ConnectResponse is returned by a successful connect.
type ConnectResponse struct {
	PublicKey PublicKey
}

// ConnectionState is a tri-state connection flag.
type ConnectionState int

// Connection states.
const (
	StateUnknown ConnectionState = iota
	StateConnected
	StateDisconnected
)

// String returns the state name.
func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is a provider-originated event name.
type Event string

// Provider events.
const (
	EventConnect        Event = "connect"
	EventDisconnect     Event = "disconnect"
	EventAccountChanged Event = "accountChanged"
)

// Handler receives event arguments. For EventConnect and EventAccountChanged
// the argument is a PublicKey (nil when the account went away).
type Handler func(args any)

// RequestMethod names a method reachable through Request.
type RequestMethod string

// Request methods.
const (
	MethodConnect             RequestMethod = "connect"
	MethodDisconnect          RequestMethod = "disconnect"
	MethodSignTransaction     RequestMethod = "signTransaction"
	MethodSignAllTransactions RequestMethod = "signAllTransactions"
	MethodSignMessage         RequestMethod = "signMessage"
)

// ParseRequestMethod validates a method name.
func ParseRequestMethod(s string) (RequestMethod, error) {
	switch m := RequestMethod(strings.TrimSpace(s)); m {
	case MethodConnect, MethodDisconnect, MethodSignTransaction, MethodSignAllTransactions, MethodSignMessage:
		return m, nil
	default:
		return "", NewError(CodeMethodNotFound, fmt.Sprintf("method %q not found", s))
	}
}

// DisplayEncoding controls how a message is shown by the wallet.
type DisplayEncoding string

// Display encodings.
const (
	DisplayUTF8 DisplayEncoding = "utf8"
	DisplayHex  DisplayEncoding = "hex"
)

// Transaction is an opaque serialized message plus collected signatures.
type Transaction struct {
	Message    []byte      `json:"message"`
	Signatures []Signature `json:"signatures,omitempty"`
}

// Signature pairs a signer with its signature bytes.
type Signature struct {
	PublicKey string `json:"publicKey"`
	Signature []byte `json:"signature"`
}

// SignedMessage is the result of SignMessage.
type SignedMessage struct {
	Signature []byte    `json:"signature"`
	PublicKey PublicKey `json:"-"`
}

// SignMessageParams are the params accepted by Request for MethodSignMessage.
type SignMessageParams struct {
	Message []byte          `json:"message"`
	Display DisplayEncoding `json:"display,omitempty"`
}
