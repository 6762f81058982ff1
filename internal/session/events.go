package session

import (
	"github.com/mrz1836/sigil-connect/internal/provider"
)

// subscribe follows provider-originated session changes. Handlers may run on
// any goroutine.
func (c *Controller) subscribe(p provider.Provider) {
	p.On(provider.EventDisconnect, func(any) {
		c.applyEvent(provider.EventDisconnect, "")
	})

	p.On(provider.EventAccountChanged, func(args any) {
		c.applyEvent(provider.EventAccountChanged, identityFromEvent(args))
	})

	c.logger.Debug("session %s: following provider events", c.id)
}

// applyEvent replaces the identity. An account change only applies to a
// session that is already connected. Events raised while a Connect or
// Disconnect is in flight are echoes of that call, which sets the identity
// itself.
func (c *Controller) applyEvent(event provider.Event, identity string) {
	if c.inFlight.Load() {
		c.logger.Debug("session %s: %s event ignored, call in flight", c.id, event)
		return
	}

	c.mu.Lock()
	if c.identity == "" || c.identity == identity {
		c.mu.Unlock()
		return
	}
	c.identity = identity
	c.mu.Unlock()

	c.metrics.RecordProviderEvent()
	if identity == "" {
		c.logger.Debug("session %s: %s event cleared identity", c.id, event)
	} else {
		c.logger.Debug("session %s: %s event, wallet account %s", c.id, event, identity)
	}
	c.notify()
}

func identityFromEvent(args any) (identity string) {
	defer func() {
		if recover() != nil {
			identity = ""
		}
	}()

	key, ok := args.(provider.PublicKey)
	if !ok || key == nil {
		return ""
	}
	return key.String()
}
