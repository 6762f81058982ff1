package jshost

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

// bytesParam marks bytes that must reach the page as a Uint8Array.
type bytesParam []byte

// requestParams converts typed Request params into the plain maps, slices and
// strings the page's request() expects. A map[string]any is passed through as
// is. Anything else fails with an invalid-input error.
func requestParams(method provider.RequestMethod, params any) (any, error) {
	if params == nil {
		return nil, nil
	}
	if m, ok := params.(map[string]any); ok {
		return m, nil
	}

	switch method {
	case provider.MethodConnect:
		switch p := params.(type) {
		case provider.ConnectOptions:
			return map[string]any{"onlyIfTrusted": p.OnlyIfTrusted}, nil
		case *provider.ConnectOptions:
			if p == nil {
				return nil, nil
			}
			return map[string]any{"onlyIfTrusted": p.OnlyIfTrusted}, nil
		}

	case provider.MethodDisconnect:
		return nil, nil

	case provider.MethodSignMessage:
		switch p := params.(type) {
		case provider.SignMessageParams:
			return signMessageParams(p), nil
		case *provider.SignMessageParams:
			if p != nil {
				return signMessageParams(*p), nil
			}
		}

	case provider.MethodSignTransaction:
		if tx, ok := params.(*provider.Transaction); ok && tx != nil {
			return map[string]any{"message": base58.Encode(tx.Message)}, nil
		}

	case provider.MethodSignAllTransactions:
		if txs, ok := params.([]*provider.Transaction); ok {
			messages := make([]any, 0, len(txs))
			for _, tx := range txs {
				if tx == nil {
					return nil, invalidParams(method, tx)
				}
				messages = append(messages, base58.Encode(tx.Message))
			}
			return map[string]any{"messages": messages}, nil
		}
	}

	return nil, invalidParams(method, params)
}

func signMessageParams(p provider.SignMessageParams) map[string]any {
	display := p.Display
	if display == "" {
		display = provider.DisplayUTF8
	}
	return map[string]any{
		"message": bytesParam(p.Message),
		"display": string(display),
	}
}

func invalidParams(method provider.RequestMethod, params any) error {
	return provider.NewError(provider.CodeInvalidInput, fmt.Sprintf("invalid params %T for %s", params, method))
}
