package localwallet

import (
	"context"
	"fmt"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

// Request dispatches a generic method call. Params per method:
//
//	connect              provider.ConnectOptions, *provider.ConnectOptions or nil
//	disconnect           ignored
//	signMessage          provider.SignMessageParams or *provider.SignMessageParams
//	signTransaction      *provider.Transaction
//	signAllTransactions  []*provider.Transaction
//
// Each method is rate limited on its own; an exhausted bucket fails with
// provider.ErrLimitExceeded.
func (w *Wallet) Request(ctx context.Context, method provider.RequestMethod, params any) (any, error) {
	if _, err := provider.ParseRequestMethod(string(method)); err != nil {
		return nil, err
	}
	if !w.limiter.allow(method) {
		return nil, provider.ErrLimitExceeded
	}

	switch method {
	case provider.MethodConnect:
		var opts provider.ConnectOptions
		switch p := params.(type) {
		case nil:
		case provider.ConnectOptions:
			opts = p
		case *provider.ConnectOptions:
			if p != nil {
				opts = *p
			}
		default:
			return nil, invalidParams(method, params)
		}
		return w.Connect(ctx, opts)

	case provider.MethodDisconnect:
		return nil, w.Disconnect(ctx)

	case provider.MethodSignMessage:
		var p provider.SignMessageParams
		switch v := params.(type) {
		case provider.SignMessageParams:
			p = v
		case *provider.SignMessageParams:
			if v == nil {
				return nil, invalidParams(method, params)
			}
			p = *v
		default:
			return nil, invalidParams(method, params)
		}
		if p.Display == "" {
			p.Display = provider.DisplayUTF8
		}
		return w.SignMessage(ctx, p.Message, p.Display)

	case provider.MethodSignTransaction:
		tx, ok := params.(*provider.Transaction)
		if !ok {
			return nil, invalidParams(method, params)
		}
		return w.SignTransaction(ctx, tx)

	default: // provider.MethodSignAllTransactions
		txs, ok := params.([]*provider.Transaction)
		if !ok {
			return nil, invalidParams(method, params)
		}
		return w.SignAllTransactions(ctx, txs)
	}
}

func invalidParams(method provider.RequestMethod, params any) error {
	return provider.NewError(provider.CodeInvalidInput, fmt.Sprintf("invalid params %T for %s", params, method))
}
