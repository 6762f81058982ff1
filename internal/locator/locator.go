// Package locator discovers an injected wallet provider in a host namespace.
package locator

import (
	"sync"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

// DefaultSlot is the well-known name providers are injected under.
const DefaultSlot = "solana"

// Namespace is a host-wide table of named globals.
type Namespace interface {
	Lookup(name string) (any, bool)
}

// Locate returns the provider held in slot, if the slot is populated with an
// object that implements the provider contract and whose marker is set.
// It never fails; absence is reported through the boolean.
func Locate(ns Namespace, slot string) (provider.Provider, bool) {
	if ns == nil {
		return nil, false
	}

	v, ok := ns.Lookup(slot)
	if !ok || v == nil {
		return nil, false
	}

	marker, ok := v.(provider.Marker)
	if !ok || !marker.IsPhantom() {
		return nil, false
	}

	p, ok := v.(provider.Provider)
	if !ok {
		return nil, false
	}
	return p, true
}

// Func binds a namespace and slot into a lookup closure.
func Func(ns Namespace, slot string) func() (provider.Provider, bool) {
	return func() (provider.Provider, bool) {
		return Locate(ns, slot)
	}
}

// MapNamespace is an in-process namespace. Hosts inject providers into it,
// possibly after the controller has already looked it up.
type MapNamespace struct {
	mu      sync.RWMutex
	globals map[string]any
}

// NewMapNamespace creates an empty namespace.
func NewMapNamespace() *MapNamespace {
	return &MapNamespace{globals: make(map[string]any)}
}

// Lookup implements Namespace.
func (n *MapNamespace) Lookup(name string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.globals[name]
	return v, ok
}

// Set stores v under name.
func (n *MapNamespace) Set(name string, v any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.globals[name] = v
}

// Delete removes name.
func (n *MapNamespace) Delete(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.globals, name)
}
