//go:build js && wasm

package jshost

import (
	"syscall/js"

	"github.com/mrz1836/sigil-connect/internal/locator"
	"github.com/mrz1836/sigil-connect/internal/provider"
)

// Window is a namespace over a JS global object, normally js.Global().
type Window struct {
	global js.Value
}

var _ locator.Namespace = Window{}

// NewWindow wraps global.
func NewWindow(global js.Value) Window {
	return Window{global: global}
}

// Lookup returns the property name wrapped as a provider when it is an
// object. Missing, null and non-object values are absent.
func (w Window) Lookup(name string) (any, bool) {
	v := w.global.Get(name)
	if v.Type() != js.TypeObject {
		return nil, false
	}
	return &Provider{obj: v}, true
}

// Locate returns a lookup bound to the window and slot.
func Locate(global js.Value, slot string) func() (provider.Provider, bool) {
	return locator.Func(NewWindow(global), slot)
}
