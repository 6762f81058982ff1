// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
package metrics

import (
	"sync/atomic"
)

// Metrics holds lifecycle counters using atomic operations for thread safety.
type Metrics struct {
	connectAttempts  atomic.Int64
	connectSuccesses atomic.Int64
	connectFailures  atomic.Int64

	disconnectAttempts  atomic.Int64
	disconnectSuccesses atomic.Int64
	disconnectFailures  atomic.Int64

	// Calls that found no provider to delegate to
	providerAbsent atomic.Int64

	// Calls rejected because another lifecycle call was in flight
	busyRejections atomic.Int64

	// Identity changes driven by provider events
	providerEvents atomic.Int64
}

// Global is the global metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordConnect records a connect call that reached a provider.
func (m *Metrics) RecordConnect(err error) {
	m.connectAttempts.Add(1)
	if err != nil {
		m.connectFailures.Add(1)
		return
	}
	m.connectSuccesses.Add(1)
}

// RecordDisconnect records a disconnect call that reached a provider.
func (m *Metrics) RecordDisconnect(err error) {
	m.disconnectAttempts.Add(1)
	if err != nil {
		m.disconnectFailures.Add(1)
		return
	}
	m.disconnectSuccesses.Add(1)
}

// RecordProviderAbsent records a lifecycle call with no provider.
func (m *Metrics) RecordProviderAbsent() {
	m.providerAbsent.Add(1)
}

// RecordBusy records a lifecycle call rejected as overlapping.
func (m *Metrics) RecordBusy() {
	m.busyRejections.Add(1)
}

// RecordProviderEvent records an identity change caused by a provider event.
func (m *Metrics) RecordProviderEvent() {
	m.providerEvents.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	ConnectAttempts     int64 `json:"connect_attempts"`
	ConnectSuccesses    int64 `json:"connect_successes"`
	ConnectFailures     int64 `json:"connect_failures"`
	DisconnectAttempts  int64 `json:"disconnect_attempts"`
	DisconnectSuccesses int64 `json:"disconnect_successes"`
	DisconnectFailures  int64 `json:"disconnect_failures"`
	ProviderAbsent      int64 `json:"provider_absent"`
	BusyRejections      int64 `json:"busy_rejections"`
	ProviderEvents      int64 `json:"provider_events"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ConnectAttempts:     m.connectAttempts.Load(),
		ConnectSuccesses:    m.connectSuccesses.Load(),
		ConnectFailures:     m.connectFailures.Load(),
		DisconnectAttempts:  m.disconnectAttempts.Load(),
		DisconnectSuccesses: m.disconnectSuccesses.Load(),
		DisconnectFailures:  m.disconnectFailures.Load(),
		ProviderAbsent:      m.providerAbsent.Load(),
		BusyRejections:      m.busyRejections.Load(),
		ProviderEvents:      m.providerEvents.Load(),
	}
}

// ConnectSuccessRate returns the connect success rate as a percentage (0-100).
// Returns 0 if no connect has reached a provider.
func (m *Metrics) ConnectSuccessRate() float64 {
	attempts := m.connectAttempts.Load()
	if attempts == 0 {
		return 0
	}
	return float64(m.connectSuccesses.Load()) / float64(attempts) * 100
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.connectAttempts.Store(0)
	m.connectSuccesses.Store(0)
	m.connectFailures.Store(0)
	m.disconnectAttempts.Store(0)
	m.disconnectSuccesses.Store(0)
	m.disconnectFailures.Store(0)
	m.providerAbsent.Store(0)
	m.busyRejections.Store(0)
	m.providerEvents.Store(0)
}
