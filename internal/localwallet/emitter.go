package localwallet

import (
	"sync"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

// emitter fans provider events out to registered handlers.
type emitter struct {
	mu       sync.Mutex
	handlers map[provider.Event][]provider.Handler
}

func (e *emitter) on(event provider.Event, h provider.Handler) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers == nil {
		e.handlers = make(map[provider.Event][]provider.Handler)
	}
	e.handlers[event] = append(e.handlers[event], h)
}

// emit calls handlers outside the lock so they may call back into the wallet.
func (e *emitter) emit(event provider.Event, args any) {
	e.mu.Lock()
	hs := append([]provider.Handler(nil), e.handlers[event]...)
	e.mu.Unlock()

	for _, h := range hs {
		h(args)
	}
}
