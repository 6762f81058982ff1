package localwallet

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

// methodLimiter rate limits Request per method with a token bucket each.
type methodLimiter struct {
	mu       sync.RWMutex
	limiters map[provider.RequestMethod]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newMethodLimiter(perSecond float64, burst int) *methodLimiter {
	return &methodLimiter{
		limiters: make(map[provider.RequestMethod]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// allow reports whether one more call to method may proceed now.
func (m *methodLimiter) allow(method provider.RequestMethod) bool {
	return m.get(method).Allow()
}

func (m *methodLimiter) get(method provider.RequestMethod) *rate.Limiter {
	m.mu.RLock()
	l, ok := m.limiters[method]
	m.mu.RUnlock()
	if ok {
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok = m.limiters[method]; ok {
		return l
	}
	l = rate.NewLimiter(m.limit, m.burst)
	m.limiters[method] = l
	return l
}
