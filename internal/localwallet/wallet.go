package localwallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

// Default request limits.
const (
	DefaultRequestsPerSecond = 5
	DefaultRequestBurst      = 5
)

// Logger receives diagnostic output. *config.Logger satisfies it.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// Options configures a Wallet.
type Options struct {
	// Origin identifies the application asking for access.
	Origin string
	// Approver decides connect and sign requests. Defaults to rejecting.
	Approver Approver
	// Trust remembers approved origins. Defaults to in-memory.
	Trust TrustStore
	// RequestsPerSecond and RequestBurst bound Request per method.
	RequestsPerSecond float64
	RequestBurst      int
	Logger            Logger
}

// Wallet is a provider backed by a local account. It is safe for concurrent
// use.
type Wallet struct {
	pub      provider.Ed25519Key
	unlock   func() (*Account, error)
	origin   string
	approver Approver
	trust    TrustStore
	limiter  *methodLimiter
	logger   Logger
	events   emitter

	unlockMu sync.Mutex

	mu        sync.Mutex
	account   *Account
	connected bool
	closed    bool
}

var errNoPassphrase = errors.New("no passphrase source configured")

var (
	_ provider.Provider = (*Wallet)(nil)
	_ provider.Marker   = (*Wallet)(nil)
)

// New wraps an unlocked account. The wallet owns the account and wipes it on
// Close.
func New(account *Account, opts Options) *Wallet {
	w := newWallet(account.PublicKey, opts)
	w.account = account
	return w
}

// NewLocked creates a wallet that unlocks ks on the first request that needs
// the secret key. passphrase is called at most once per successful unlock.
func NewLocked(ks *Keystore, passphrase func() (string, error), opts Options) (*Wallet, error) {
	pub, err := ks.Address()
	if err != nil {
		return nil, err
	}

	w := newWallet(pub, opts)
	w.unlock = func() (*Account, error) {
		if passphrase == nil {
			return nil, errNoPassphrase
		}
		pass, err := passphrase()
		if err != nil {
			return nil, err
		}
		return ks.Unlock(pass)
	}
	return w, nil
}

func newWallet(pub provider.Ed25519Key, opts Options) *Wallet {
	if opts.Approver == nil {
		opts.Approver = AutoApprover{Allow: false}
	}
	if opts.Trust == nil {
		opts.Trust = NewMemoryTrustStore()
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if opts.RequestBurst <= 0 {
		opts.RequestBurst = DefaultRequestBurst
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	return &Wallet{
		pub:      pub,
		origin:   opts.Origin,
		approver: opts.Approver,
		trust:    opts.Trust,
		limiter:  newMethodLimiter(opts.RequestsPerSecond, opts.RequestBurst),
		logger:   opts.Logger,
	}
}

// IsPhantom marks the wallet as a compatible provider.
func (w *Wallet) IsPhantom() bool { return true }

// Account returns the wallet's public key whether or not it is connected or
// unlocked.
func (w *Wallet) Account() provider.Ed25519Key {
	return w.pub
}

// Locked reports whether the secret key has not been unlocked yet.
func (w *Wallet) Locked() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account == nil
}

// Unlock decrypts the secret key if that has not happened yet. Failures are
// reported as provider.ErrUnauthorized wrapping the cause.
func (w *Wallet) Unlock() error {
	w.unlockMu.Lock()
	defer w.unlockMu.Unlock()

	w.mu.Lock()
	closed, unlocked := w.closed, w.account != nil
	w.mu.Unlock()
	switch {
	case closed:
		return provider.ErrDisconnected
	case unlocked:
		return nil
	}

	account, err := w.unlock()
	if err != nil {
		w.logger.Error("localwallet: unlock failed: %v", err)
		return fmt.Errorf("%w: %w", provider.ErrUnauthorized, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		account.Close()
		return provider.ErrDisconnected
	}
	w.account = account
	return nil
}

// PublicKey returns the account while connected, nil otherwise.
func (w *Wallet) PublicKey() provider.PublicKey {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return nil
	}
	return w.pub
}

// ConnectionState reports the wallet-side session state.
func (w *Wallet) ConnectionState() provider.ConnectionState {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.connected {
		return provider.StateConnected
	}
	return provider.StateDisconnected
}

// Connect unlocks the wallet and approves the origin. With OnlyIfTrusted it
// never prompts for approval and rejects origins that were not approved
// before.
func (w *Wallet) Connect(ctx context.Context, opts provider.ConnectOptions) (provider.ConnectResponse, error) {
	if err := w.usable(); err != nil {
		return provider.ConnectResponse{}, err
	}

	account := w.pub.String()
	trusted := w.trust.Trusted(w.origin, account)
	if !trusted && opts.OnlyIfTrusted {
		return provider.ConnectResponse{}, provider.ErrUserRejected
	}

	if err := w.Unlock(); err != nil {
		return provider.ConnectResponse{}, err
	}

	if trusted {
		w.logger.Debug("localwallet: %s is trusted, connecting silently", w.origin)
	} else {
		if err := w.approve(ctx, ApprovalRequest{Kind: ApproveConnect, Origin: w.origin, Account: account}); err != nil {
			return provider.ConnectResponse{}, err
		}
		if err := w.trust.Trust(w.origin, account); err != nil {
			w.logger.Error("localwallet: remembering %s: %v", w.origin, err)
		}
	}

	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()

	w.events.emit(provider.EventConnect, w.pub)
	return provider.ConnectResponse{PublicKey: w.pub}, nil
}

// Disconnect ends the wallet-side session. Trust is kept; use Revoke to
// forget the origin.
func (w *Wallet) Disconnect(context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return provider.ErrDisconnected
	}
	was := w.connected
	w.connected = false
	w.mu.Unlock()

	if was {
		w.events.emit(provider.EventDisconnect, nil)
	}
	return nil
}

// Revoke forgets the origin's approval and ends any session.
func (w *Wallet) Revoke(ctx context.Context) error {
	if err := w.trust.Revoke(w.origin, w.pub.String()); err != nil {
		return fmt.Errorf("revoking %s: %w", w.origin, err)
	}
	if err := w.Disconnect(ctx); err != nil && !errors.Is(err, provider.ErrDisconnected) {
		return err
	}
	return nil
}

// SignMessage signs message after approval. The message is shown as text
// when display is utf8 and valid, as 0x-prefixed hex otherwise.
func (w *Wallet) SignMessage(ctx context.Context, message []byte, display provider.DisplayEncoding) (*provider.SignedMessage, error) {
	if err := w.authorized(); err != nil {
		return nil, err
	}

	detail := hexutil.Encode(message)
	if display != provider.DisplayHex && utf8.Valid(message) {
		detail = string(message)
	}
	if err := w.approve(ctx, ApprovalRequest{
		Kind:    ApproveSignMessage,
		Origin:  w.origin,
		Account: w.pub.String(),
		Detail:  detail,
	}); err != nil {
		return nil, err
	}

	sig, err := w.sign(message)
	if err != nil {
		return nil, err
	}
	return &provider.SignedMessage{Signature: sig, PublicKey: w.pub}, nil
}

// SignTransaction signs tx.Message and returns a copy carrying the
// signature. A previous signature by this account is replaced.
func (w *Wallet) SignTransaction(ctx context.Context, tx *provider.Transaction) (*provider.Transaction, error) {
	signed, err := w.SignAllTransactions(ctx, []*provider.Transaction{tx})
	if err != nil {
		return nil, err
	}
	return signed[0], nil
}

// SignAllTransactions signs a batch after a single approval.
func (w *Wallet) SignAllTransactions(ctx context.Context, txs []*provider.Transaction) ([]*provider.Transaction, error) {
	if err := w.authorized(); err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, provider.NewError(provider.CodeInvalidInput, "no transactions to sign")
	}
	for i, tx := range txs {
		if tx == nil || len(tx.Message) == 0 {
			return nil, provider.NewError(provider.CodeInvalidInput, fmt.Sprintf("transaction %d has no message", i))
		}
	}

	detail := hexutil.Encode(txs[0].Message)
	if len(txs) > 1 {
		detail = fmt.Sprintf("%d transactions, first %s", len(txs), detail)
	}
	if err := w.approve(ctx, ApprovalRequest{
		Kind:    ApproveSignTransaction,
		Origin:  w.origin,
		Account: w.pub.String(),
		Detail:  detail,
	}); err != nil {
		return nil, err
	}

	signer := w.pub.String()
	out := make([]*provider.Transaction, len(txs))
	for i, tx := range txs {
		sig, err := w.sign(tx.Message)
		if err != nil {
			return nil, err
		}
		out[i] = withSignature(tx, provider.Signature{PublicKey: signer, Signature: sig})
	}
	return out, nil
}

func withSignature(tx *provider.Transaction, sig provider.Signature) *provider.Transaction {
	cp := &provider.Transaction{
		Message:    append([]byte(nil), tx.Message...),
		Signatures: make([]provider.Signature, 0, len(tx.Signatures)+1),
	}
	replaced := false
	for _, s := range tx.Signatures {
		if s.PublicKey == sig.PublicKey {
			s = sig
			replaced = true
		}
		cp.Signatures = append(cp.Signatures, s)
	}
	if !replaced {
		cp.Signatures = append(cp.Signatures, sig)
	}
	return cp
}

// On registers an event handler.
func (w *Wallet) On(event provider.Event, handler provider.Handler) {
	w.events.on(event, handler)
}

// Close ends the session and wipes the secret key. The wallet is unusable
// afterwards.
func (w *Wallet) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	was := w.connected
	account := w.account
	w.closed = true
	w.connected = false
	w.account = nil
	w.mu.Unlock()

	if account != nil {
		account.Close()
	}
	if was {
		w.events.emit(provider.EventDisconnect, nil)
	}
}

// sign signs with the unlocked account. Connected implies unlocked.
func (w *Wallet) sign(message []byte) ([]byte, error) {
	w.mu.Lock()
	account := w.account
	w.mu.Unlock()

	if account == nil {
		return nil, provider.ErrUnauthorized
	}
	return account.sign(message)
}

func (w *Wallet) usable() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return provider.ErrDisconnected
	}
	return nil
}

func (w *Wallet) authorized() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.closed:
		return provider.ErrDisconnected
	case !w.connected:
		return provider.ErrUnauthorized
	default:
		return nil
	}
}

// approve turns an approver answer into the provider error a page expects.
func (w *Wallet) approve(ctx context.Context, req ApprovalRequest) error {
	ok, err := w.approver.Approve(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return provider.ErrUserRejected
		}
		return provider.NewError(provider.CodeInternal, fmt.Sprintf("approval failed: %v", err))
	}
	if !ok {
		w.logger.Debug("localwallet: %s rejected for %s", req.Kind, req.Origin)
		return provider.ErrUserRejected
	}
	return nil
}
