//go:build js && wasm

package jshost

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

// await blocks until the promise settles or ctx is done. A rejection is
// converted into a provider error.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	if promise.Type() != js.TypeObject || promise.Get("then").Type() != js.TypeFunction {
		return promise, nil
	}

	type settled struct {
		val js.Value
		err error
	}
	ch := make(chan settled, 1)

	onResolve := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ch <- settled{val: arg(args)}
		return nil
	})
	onReject := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ch <- settled{err: errorFromJS(arg(args))}
		return nil
	})
	defer onResolve.Release()
	defer onReject.Release()

	promise.Call("then", onResolve, onReject)

	select {
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	case s := <-ch:
		return s.val, s.err
	}
}

func arg(args []js.Value) js.Value {
	if len(args) == 0 {
		return js.Undefined()
	}
	return args[0]
}

// errorFromJS reads the {code, message} shape wallets reject with.
func errorFromJS(v js.Value) error {
	if v.Type() != js.TypeObject {
		return provider.NewError(provider.CodeInternal, v.String())
	}

	code := provider.CodeInternal
	if c := v.Get("code"); c.Type() == js.TypeNumber {
		code = c.Int()
	}
	msg := "unknown error"
	if m := v.Get("message"); m.Type() == js.TypeString {
		msg = m.String()
	}
	return provider.NewError(code, msg)
}

// call invokes method on obj, converting synchronous JS exceptions into
// provider errors. Any other panic, such as js.ValueOf rejecting an argument,
// becomes an internal provider error.
func call(obj js.Value, method string, args ...any) (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = js.Undefined()
			if jsErr, ok := r.(js.Error); ok {
				err = errorFromJS(jsErr.Value)
				return
			}
			err = provider.NewError(provider.CodeInternal, fmt.Sprintf("calling %s: %v", method, r))
		}
	}()
	return obj.Call(method, args...), nil
}
