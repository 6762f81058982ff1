package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mrz1836/sigil-connect/internal/metrics"
	"github.com/mrz1836/sigil-connect/internal/provider"
)

// LocateFunc returns the injected provider, if there is one.
type LocateFunc func() (provider.Provider, bool)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic logger.
func WithLogger(l Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. Defaults to metrics.Global.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithOnChange registers a callback run after every state mutation.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// WithConnectOptions sets the options passed to provider.Connect.
func WithConnectOptions(opts provider.ConnectOptions) Option {
	return func(c *Controller) {
		c.connectOpts = opts
	}
}

// WithProviderEvents makes the controller follow provider-originated
// disconnect and accountChanged events.
func WithProviderEvents() Option {
	return func(c *Controller) {
		c.followEvents = true
	}
}

// Controller owns the session state. The zero value is not usable; create
// one with NewController.
type Controller struct {
	id           string
	locate       LocateFunc
	logger       Logger
	metrics      *metrics.Metrics
	onChange     func(State)
	connectOpts  provider.ConnectOptions
	followEvents bool

	mu       sync.Mutex
	provider provider.Provider
	identity string

	inFlight atomic.Bool
}

// NewController creates a controller and looks up the provider once.
// It never connects on its own, even if the provider holds a trusted session.
func NewController(locate LocateFunc, opts ...Option) *Controller {
	c := &Controller{
		id:      uuid.NewString(),
		locate:  locate,
		logger:  nopLogger{},
		metrics: metrics.Global,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initialize()
	return c
}

// ID returns the controller's correlation id as used in log lines.
func (c *Controller) ID() string {
	return c.id
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		ProviderPresent: c.provider != nil,
		Identity:        c.identity,
	}
}

func (c *Controller) initialize() {
	p, ok := c.lookup()
	if !ok {
		c.logger.Debug("session %s: no provider found", c.id)
		return
	}

	c.mu.Lock()
	c.provider = p
	c.mu.Unlock()

	c.logger.Debug("session %s: provider found (%s)", c.id, p.ConnectionState())
	if c.followEvents {
		c.subscribe(p)
	}
	c.notify()
}

// Connect locates the provider afresh and asks it to authorize this
// application. On success the identity is stored. On failure the identity is
// left as it was.
func (c *Controller) Connect(ctx context.Context) Result {
	if !c.begin("connect") {
		return c.busy()
	}
	defer c.end()

	p, ok := c.lookup()
	if !ok {
		c.metrics.RecordProviderAbsent()
		c.logger.Debug("session %s: connect skipped, no provider", c.id)
		return Result{Outcome: OutcomeNoProvider, Identity: c.State().Identity}
	}

	identity, err := connectIdentity(ctx, p, c.connectOpts)
	c.metrics.RecordConnect(err)
	if err != nil {
		c.logger.Error("session %s: error connecting wallet: %v", c.id, err)
		return Result{Outcome: OutcomeFailed, Identity: c.State().Identity, Err: err}
	}

	c.logger.Debug("session %s: wallet account %s", c.id, identity)

	c.mu.Lock()
	adopted := c.provider == nil
	if adopted {
		// The provider was injected after start-up; keep it so the
		// identity always has a provider behind it.
		c.provider = p
	}
	changed := c.identity != identity
	c.identity = identity
	c.mu.Unlock()

	if adopted && c.followEvents {
		c.subscribe(p)
	}
	if changed || adopted {
		c.notify()
	}

	return Result{Outcome: OutcomeConnected, Identity: identity, changed: changed}
}

// Disconnect asks the cached provider to end the session. On success the
// identity is cleared. On failure the identity is kept, even though the
// provider side may already be torn down.
func (c *Controller) Disconnect(ctx context.Context) Result {
	if !c.begin("disconnect") {
		return c.busy()
	}
	defer c.end()

	c.mu.Lock()
	p := c.provider
	c.mu.Unlock()

	if p == nil {
		c.metrics.RecordProviderAbsent()
		c.logger.Debug("session %s: disconnect skipped, no provider", c.id)
		return Result{Outcome: OutcomeNoProvider, Identity: c.State().Identity}
	}

	err := disconnect(ctx, p)
	c.metrics.RecordDisconnect(err)
	if err != nil {
		c.logger.Error("session %s: error disconnecting wallet: %v", c.id, err)
		return Result{Outcome: OutcomeFailed, Identity: c.State().Identity, Err: err}
	}

	c.mu.Lock()
	changed := c.identity != ""
	c.identity = ""
	c.mu.Unlock()

	c.logger.Debug("session %s: wallet disconnected", c.id)
	if changed {
		c.notify()
	}

	return Result{Outcome: OutcomeDisconnected, changed: changed}
}

func (c *Controller) begin(op string) bool {
	if c.inFlight.CompareAndSwap(false, true) {
		return true
	}
	c.metrics.RecordBusy()
	c.logger.Debug("session %s: %s rejected, another call is in flight", c.id, op)
	return false
}

func (c *Controller) end() {
	c.inFlight.Store(false)
}

func (c *Controller) busy() Result {
	return Result{Outcome: OutcomeBusy, Identity: c.State().Identity, Err: ErrOperationInFlight}
}

func (c *Controller) lookup() (p provider.Provider, ok bool) {
	if c.locate == nil {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("session %s: provider lookup panicked: %v", c.id, r)
			p, ok = nil, false
		}
	}()
	return c.locate()
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.State())
}

// connectIdentity runs provider.Connect and extracts the display identity.
// A panic inside the provider is reported as an internal provider error.
func connectIdentity(ctx context.Context, p provider.Provider, opts provider.ConnectOptions) (identity string, err error) {
	defer recoverProvider(&err)

	resp, err := p.Connect(ctx, opts)
	if err != nil {
		return "", err
	}
	if resp.PublicKey == nil {
		return "", ErrMissingIdentity
	}

	identity = resp.PublicKey.String()
	if identity == "" {
		return "", ErrMissingIdentity
	}
	return identity, nil
}

func disconnect(ctx context.Context, p provider.Provider) (err error) {
	defer recoverProvider(&err)
	return p.Disconnect(ctx)
}

func recoverProvider(err *error) {
	if r := recover(); r != nil {
		*err = provider.NewError(provider.CodeInternal, fmt.Sprintf("provider panic: %v", r))
	}
}
