// Package providertest provides a scriptable Provider for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

// StringKey is a PublicKey whose display form is the string itself.
type StringKey string

func (k StringKey) String() string { return string(k) }

// Fake is a synthetic provider. Zero value connects nothing; set the func
// fields to script behavior.
type Fake struct {
	Phantom bool

	ConnectFunc    func(ctx context.Context, opts provider.ConnectOptions) (provider.ConnectResponse, error)
	DisconnectFunc func(ctx context.Context) error

	mu              sync.Mutex
	key             provider.PublicKey
	connectCalls    int
	disconnectCalls int
	lastOpts        provider.ConnectOptions
	handlers        map[provider.Event][]provider.Handler
}

// New returns a Fake flagged as the expected provider kind.
func New() *Fake {
	return &Fake{Phantom: true}
}

// ConnectsAs scripts Connect to succeed with the given key.
func (f *Fake) ConnectsAs(key string) *Fake {
	f.ConnectFunc = func(context.Context, provider.ConnectOptions) (provider.ConnectResponse, error) {
		return provider.ConnectResponse{PublicKey: StringKey(key)}, nil
	}
	return f
}

// ConnectFails scripts Connect to fail with err.
func (f *Fake) ConnectFails(err error) *Fake {
	f.ConnectFunc = func(context.Context, provider.ConnectOptions) (provider.ConnectResponse, error) {
		return provider.ConnectResponse{}, err
	}
	return f
}

// DisconnectFails scripts Disconnect to fail with err.
func (f *Fake) DisconnectFails(err error) *Fake {
	f.DisconnectFunc = func(context.Context) error { return err }
	return f
}

// IsPhantom implements provider.Marker.
func (f *Fake) IsPhantom() bool { return f.Phantom }

// PublicKey returns the key of the last successful connect.
func (f *Fake) PublicKey() provider.PublicKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key
}

// ConnectionState reports connected while a key is held.
func (f *Fake) ConnectionState() provider.ConnectionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.key != nil {
		return provider.StateConnected
	}
	return provider.StateDisconnected
}

// Connect runs ConnectFunc, or rejects when it is unset.
func (f *Fake) Connect(ctx context.Context, opts provider.ConnectOptions) (provider.ConnectResponse, error) {
	f.mu.Lock()
	f.connectCalls++
	f.lastOpts = opts
	fn := f.ConnectFunc
	f.mu.Unlock()

	if fn == nil {
		return provider.ConnectResponse{}, provider.ErrUserRejected
	}

	resp, err := fn(ctx, opts)
	if err == nil {
		f.mu.Lock()
		f.key = resp.PublicKey
		f.mu.Unlock()
	}
	return resp, err
}

// Disconnect runs DisconnectFunc, succeeding when it is unset.
func (f *Fake) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	f.disconnectCalls++
	fn := f.DisconnectFunc
	f.mu.Unlock()

	if fn != nil {
		if err := fn(ctx); err != nil {
			return err
		}
	}

	f.mu.Lock()
	f.key = nil
	f.mu.Unlock()
	return nil
}

// SignTransaction is not supported by the fake.
func (f *Fake) SignTransaction(context.Context, *provider.Transaction) (*provider.Transaction, error) {
	return nil, provider.ErrMethodNotFound
}

// SignAllTransactions is not supported by the fake.
func (f *Fake) SignAllTransactions(context.Context, []*provider.Transaction) ([]*provider.Transaction, error) {
	return nil, provider.ErrMethodNotFound
}

// SignMessage is not supported by the fake.
func (f *Fake) SignMessage(context.Context, []byte, provider.DisplayEncoding) (*provider.SignedMessage, error) {
	return nil, provider.ErrMethodNotFound
}

// On records a handler.
func (f *Fake) On(event provider.Event, handler provider.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = make(map[provider.Event][]provider.Handler)
	}
	f.handlers[event] = append(f.handlers[event], handler)
}

// Emit calls every handler registered for event.
func (f *Fake) Emit(event provider.Event, args any) {
	f.mu.Lock()
	handlers := append([]provider.Handler(nil), f.handlers[event]...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(args)
	}
}

// HandlerCount returns the number of handlers registered for event.
func (f *Fake) HandlerCount(event provider.Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers[event])
}

// Request dispatches connect and disconnect.
func (f *Fake) Request(ctx context.Context, method provider.RequestMethod, _ any) (any, error) {
	switch method {
	case provider.MethodConnect:
		return f.Connect(ctx, provider.ConnectOptions{})
	case provider.MethodDisconnect:
		return nil, f.Disconnect(ctx)
	default:
		return nil, provider.ErrMethodNotFound
	}
}

// ConnectCalls returns how many times Connect ran.
func (f *Fake) ConnectCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connectCalls
}

// DisconnectCalls returns how many times Disconnect ran.
func (f *Fake) DisconnectCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnectCalls
}

// LastConnectOptions returns the options of the most recent Connect.
func (f *Fake) LastConnectOptions() provider.ConnectOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpts
}

var _ provider.Provider = (*Fake)(nil)
