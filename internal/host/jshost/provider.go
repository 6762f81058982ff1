//go:build js && wasm

package jshost

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/mr-tron/base58"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

// Provider wraps an injected JS wallet object.
type Provider struct {
	obj js.Value
}

var (
	_ provider.Provider = (*Provider)(nil)
	_ provider.Marker   = (*Provider)(nil)
)

// IsPhantom reads the isPhantom flag. Only a literal true counts.
func (p *Provider) IsPhantom() bool {
	v := p.obj.Get("isPhantom")
	return v.Type() == js.TypeBoolean && v.Bool()
}

// key is a JS PublicKey; String delegates to its toString.
type key struct {
	v js.Value
}

func (k key) String() string {
	if k.v.Get("toBase58").Type() == js.TypeFunction {
		return k.v.Call("toBase58").String()
	}
	return k.v.Call("toString").String()
}

func publicKeyOf(v js.Value) provider.PublicKey {
	switch v.Type() {
	case js.TypeObject:
		return key{v: v}
	case js.TypeString:
		if k, err := provider.ParseEd25519Key(v.String()); err == nil {
			return k
		}
	}
	return nil
}

// PublicKey returns the connected account, or nil.
func (p *Provider) PublicKey() provider.PublicKey {
	return publicKeyOf(p.obj.Get("publicKey"))
}

// ConnectionState reads isConnected.
func (p *Provider) ConnectionState() provider.ConnectionState {
	v := p.obj.Get("isConnected")
	if v.Type() != js.TypeBoolean {
		return provider.StateUnknown
	}
	if v.Bool() {
		return provider.StateConnected
	}
	return provider.StateDisconnected
}

// Connect calls connect() and awaits the wallet's approval UI.
func (p *Provider) Connect(ctx context.Context, opts provider.ConnectOptions) (provider.ConnectResponse, error) {
	var args []any
	if opts.OnlyIfTrusted {
		args = append(args, map[string]any{"onlyIfTrusted": true})
	}
	promise, err := call(p.obj, "connect", args...)
	if err != nil {
		return provider.ConnectResponse{}, err
	}
	res, err := await(ctx, promise)
	if err != nil {
		return provider.ConnectResponse{}, err
	}

	pk := js.Undefined()
	if res.Type() == js.TypeObject {
		pk = res.Get("publicKey")
	}
	return provider.ConnectResponse{PublicKey: publicKeyOf(pk)}, nil
}

// Disconnect calls disconnect().
func (p *Provider) Disconnect(ctx context.Context) error {
	promise, err := call(p.obj, "disconnect")
	if err != nil {
		return err
	}
	_, err = await(ctx, promise)
	return err
}

// SignMessage passes the message as a Uint8Array.
func (p *Provider) SignMessage(ctx context.Context, message []byte, display provider.DisplayEncoding) (*provider.SignedMessage, error) {
	promise, err := call(p.obj, "signMessage", bytesToJS(message), string(display))
	if err != nil {
		return nil, err
	}
	res, err := await(ctx, promise)
	if err != nil {
		return nil, err
	}
	if res.Type() != js.TypeObject {
		return nil, provider.NewError(provider.CodeInternal, "signMessage returned no result")
	}
	return &provider.SignedMessage{
		Signature: bytesFromJS(res.Get("signature")),
		PublicKey: publicKeyOf(res.Get("publicKey")),
	}, nil
}

// SignTransaction goes through request with the base58 message, the only
// form that needs no web3 Transaction class on the page.
func (p *Provider) SignTransaction(ctx context.Context, tx *provider.Transaction) (*provider.Transaction, error) {
	if tx == nil {
		return nil, provider.ErrInvalidInput
	}
	res, err := p.request(ctx, provider.MethodSignTransaction, tx)
	if err != nil {
		return nil, err
	}
	return signedFromJS(tx, res)
}

// SignAllTransactions signs each transaction in turn.
func (p *Provider) SignAllTransactions(ctx context.Context, txs []*provider.Transaction) ([]*provider.Transaction, error) {
	out := make([]*provider.Transaction, 0, len(txs))
	for _, tx := range txs {
		signed, err := p.SignTransaction(ctx, tx)
		if err != nil {
			return nil, err
		}
		out = append(out, signed)
	}
	return out, nil
}

func signedFromJS(tx *provider.Transaction, res js.Value) (*provider.Transaction, error) {
	if res.Type() != js.TypeObject {
		return nil, provider.NewError(provider.CodeInternal, "signTransaction returned no result")
	}
	sig, err := base58.Decode(res.Get("signature").String())
	if err != nil {
		return nil, provider.NewError(provider.CodeInternal, fmt.Sprintf("decoding signature: %v", err))
	}

	out := &provider.Transaction{Message: tx.Message}
	out.Signatures = append(out.Signatures, tx.Signatures...)
	out.Signatures = append(out.Signatures, provider.Signature{
		PublicKey: res.Get("publicKey").String(),
		Signature: sig,
	})
	return out, nil
}

// On subscribes to a wallet event. The JS callback lives as long as the page.
func (p *Provider) On(event provider.Event, handler provider.Handler) {
	fn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		a := arg(args)
		switch event {
		case provider.EventConnect, provider.EventAccountChanged:
			handler(publicKeyOf(a))
		default:
			handler(nil)
		}
		return nil
	})
	_, _ = call(p.obj, "on", string(event), fn)
}

// Request forwards to request({method, params}). params take the same typed
// forms the local wallet accepts, or a plain map[string]any.
func (p *Provider) Request(ctx context.Context, method provider.RequestMethod, params any) (any, error) {
	if _, err := provider.ParseRequestMethod(string(method)); err != nil {
		return nil, err
	}
	return p.request(ctx, method, params)
}

func (p *Provider) request(ctx context.Context, method provider.RequestMethod, params any) (js.Value, error) {
	converted, err := requestParams(method, params)
	if err != nil {
		return js.Undefined(), err
	}
	req := map[string]any{"method": string(method)}
	if converted != nil {
		req["params"] = toJS(converted)
	}
	promise, err := call(p.obj, "request", req)
	if err != nil {
		return js.Undefined(), err
	}
	return await(ctx, promise)
}

// toJS swaps bytesParam values for Uint8Arrays so js.ValueOf accepts the tree.
func toJS(v any) any {
	switch t := v.(type) {
	case bytesParam:
		return bytesToJS(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = toJS(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toJS(e)
		}
		return out
	default:
		return v
	}
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func bytesFromJS(v js.Value) []byte {
	if v.Type() != js.TypeObject {
		return nil
	}
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}
