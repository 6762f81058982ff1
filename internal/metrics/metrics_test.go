package metrics

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordConnect(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordConnect(nil)
	m.RecordConnect(errors.New("rejected"))
	m.RecordConnect(nil)

	s := m.Snapshot()
	assert.Equal(t, int64(3), s.ConnectAttempts)
	assert.Equal(t, int64(2), s.ConnectSuccesses)
	assert.Equal(t, int64(1), s.ConnectFailures)
	assert.InDelta(t, 66.67, m.ConnectSuccessRate(), 0.01)
}

func TestMetrics_RecordDisconnect(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordDisconnect(errors.New("boom"))
	m.RecordDisconnect(nil)

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.DisconnectAttempts)
	assert.Equal(t, int64(1), s.DisconnectSuccesses)
	assert.Equal(t, int64(1), s.DisconnectFailures)
}

func TestMetrics_SuccessRateNoCalls(t *testing.T) {
	t.Parallel()
	m := &Metrics{}
	assert.InDelta(t, 0.0, m.ConnectSuccessRate(), 0)
}

func TestMetrics_Concurrent(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordBusy()
			m.RecordProviderAbsent()
			m.RecordProviderEvent()
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	assert.Equal(t, int64(50), s.BusyRejections)
	assert.Equal(t, int64(50), s.ProviderAbsent)
	assert.Equal(t, int64(50), s.ProviderEvents)
}

func TestMetrics_Reset(t *testing.T) {
	t.Parallel()
	m := &Metrics{}
	m.RecordConnect(nil)
	m.RecordDisconnect(nil)
	m.RecordBusy()

	m.Reset()
	assert.Equal(t, Snapshot{}, m.Snapshot())
}
