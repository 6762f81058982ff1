//go:build js && wasm

// Command sigil-connect-wasm runs the session controller inside a web page.
//
// It exposes a global sigilConnect object with connect(), disconnect() and
// state(). connect and disconnect return promises that resolve with the new
// state; they never reject. Assign sigilConnect.onchange to be called with
// the state after every change.
package main

import (
	"context"
	"syscall/js"

	"github.com/mrz1836/sigil-connect/internal/config"
	"github.com/mrz1836/sigil-connect/internal/host/jshost"
	"github.com/mrz1836/sigil-connect/internal/output"
	"github.com/mrz1836/sigil-connect/internal/session"
)

// consoleWriter sends log lines to console.log.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", string(p))
	return len(p), nil
}

func main() {
	global := js.Global()
	exports := global.Get("Object").New()

	level, slot := config.LogLevelError, config.DefaultSlot
	if cfg := global.Get("sigilConnectConfig"); cfg.Type() == js.TypeObject {
		if v := cfg.Get("logLevel"); v.Type() == js.TypeString {
			level = config.ParseLogLevel(v.String())
		}
		if v := cfg.Get("slot"); v.Type() == js.TypeString && v.String() != "" {
			slot = v.String()
		}
	}
	logger := config.NewWriterLogger(level, consoleWriter{})

	var ctrl *session.Controller
	ctrl = session.NewController(jshost.Locate(global, slot),
		session.WithLogger(logger),
		session.WithOnChange(func(s session.State) {
			if fn := exports.Get("onchange"); fn.Type() == js.TypeFunction {
				fn.Invoke(stateToJS(s, nil))
			}
		}),
	)

	exports.Set("connect", lifecycle(func() session.Result {
		return ctrl.Connect(context.Background())
	}, ctrl))
	exports.Set("disconnect", lifecycle(func() session.Result {
		return ctrl.Disconnect(context.Background())
	}, ctrl))
	exports.Set("state", js.FuncOf(func(js.Value, []js.Value) any {
		return stateToJS(ctrl.State(), nil)
	}))
	global.Set("sigilConnect", exports)

	select {}
}

// lifecycle wraps a controller call in a promise. The call runs on its own
// goroutine because awaiting the wallet blocks.
func lifecycle(run func() session.Result, ctrl *session.Controller) js.Func {
	return js.FuncOf(func(js.Value, []js.Value) any {
		executor := js.FuncOf(func(_ js.Value, args []js.Value) any {
			resolve := args[0]
			go func() {
				res := run()
				resolve.Invoke(stateToJS(ctrl.State(), &res))
			}()
			return nil
		})
		defer executor.Release()
		return js.Global().Get("Promise").New(executor)
	})
}

func stateToJS(s session.State, last *session.Result) js.Value {
	v := output.NewSessionView(s, last)
	return js.ValueOf(map[string]any{
		"display":         v.Display,
		"providerPresent": v.ProviderPresent,
		"identity":        v.Identity,
		"outcome":         v.Outcome,
		"error":           v.Error,
		"installUrl":      v.InstallURL,
	})
}
