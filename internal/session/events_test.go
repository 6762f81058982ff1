package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil-connect/internal/provider"
	"github.com/mrz1836/sigil-connect/internal/provider/providertest"
)

func TestEvents_NotFollowedByDefault(t *testing.T) {
	t.Parallel()

	fake := providertest.New().ConnectsAs("ABC123")
	c, _, _ := newTestController(t, fixed(fake))
	require.Equal(t, OutcomeConnected, c.Connect(context.Background()).Outcome)

	assert.Zero(t, fake.HandlerCount(provider.EventDisconnect))
	fake.Emit(provider.EventDisconnect, nil)

	// Provider-side disconnects are not reflected unless opted in.
	assert.Equal(t, "ABC123", c.State().Identity)
}

func TestEvents_DisconnectClearsIdentity(t *testing.T) {
	t.Parallel()

	fake := providertest.New().ConnectsAs("ABC123")
	c, _, m := newTestController(t, fixed(fake), WithProviderEvents())
	require.Equal(t, 1, fake.HandlerCount(provider.EventDisconnect))
	require.Equal(t, OutcomeConnected, c.Connect(context.Background()).Outcome)

	fake.Emit(provider.EventDisconnect, nil)

	assert.Empty(t, c.State().Identity)
	assert.True(t, c.State().ProviderPresent)
	assert.Equal(t, int64(1), m.Snapshot().ProviderEvents)
}

func TestEvents_EchoDuringDisconnectNotCounted(t *testing.T) {
	t.Parallel()

	fake := providertest.New().ConnectsAs("ABC123")
	fake.DisconnectFunc = func(context.Context) error {
		// Wallets announce their own teardown before returning.
		fake.Emit(provider.EventDisconnect, nil)
		return nil
	}
	var changes int
	c, logger, m := newTestController(t, fixed(fake), WithProviderEvents(), WithOnChange(func(State) { changes++ }))
	require.Equal(t, OutcomeConnected, c.Connect(context.Background()).Outcome)
	changes = 0

	res := c.Disconnect(context.Background())

	assert.Equal(t, OutcomeDisconnected, res.Outcome)
	assert.True(t, res.Changed())
	assert.Empty(t, c.State().Identity)
	assert.Equal(t, 1, changes)

	snap := m.Snapshot()
	assert.Zero(t, snap.ProviderEvents)
	assert.Equal(t, int64(1), snap.DisconnectSuccesses)
	for _, line := range logger.debugLines() {
		assert.NotContains(t, line, "event cleared identity")
	}
}

func TestEvents_EchoDuringConnectNotCounted(t *testing.T) {
	t.Parallel()

	fake := providertest.New().ConnectsAs("ABC123")
	c, _, m := newTestController(t, fixed(fake), WithProviderEvents())
	require.Equal(t, OutcomeConnected, c.Connect(context.Background()).Outcome)

	fake.ConnectFunc = func(context.Context, provider.ConnectOptions) (provider.ConnectResponse, error) {
		fake.Emit(provider.EventAccountChanged, providertest.StringKey("XYZ789"))
		return provider.ConnectResponse{PublicKey: providertest.StringKey("XYZ789")}, nil
	}
	res := c.Connect(context.Background())

	assert.True(t, res.Changed())
	assert.Equal(t, "XYZ789", c.State().Identity)
	assert.Zero(t, m.Snapshot().ProviderEvents)
}

func TestEvents_AccountChanged(t *testing.T) {
	t.Parallel()

	fake := providertest.New().ConnectsAs("ABC123")
	c, _, _ := newTestController(t, fixed(fake), WithProviderEvents())
	require.Equal(t, OutcomeConnected, c.Connect(context.Background()).Outcome)

	fake.Emit(provider.EventAccountChanged, providertest.StringKey("XYZ789"))
	assert.Equal(t, "XYZ789", c.State().Identity)

	fake.Emit(provider.EventAccountChanged, nil)
	assert.Empty(t, c.State().Identity)
}

func TestEvents_AccountChangedIgnoredWhileDisconnected(t *testing.T) {
	t.Parallel()

	fake := providertest.New()
	c, _, m := newTestController(t, fixed(fake), WithProviderEvents())

	fake.Emit(provider.EventAccountChanged, providertest.StringKey("XYZ789"))

	assert.Empty(t, c.State().Identity)
	assert.Zero(t, m.Snapshot().ProviderEvents)
}

func TestEvents_SubscribesAdoptedProvider(t *testing.T) {
	t.Parallel()

	fake := providertest.New().ConnectsAs("ABC123")
	var present bool
	locate := func() (provider.Provider, bool) {
		if !present {
			return nil, false
		}
		return fake, true
	}

	c, _, _ := newTestController(t, locate, WithProviderEvents())
	assert.Zero(t, fake.HandlerCount(provider.EventDisconnect))

	present = true
	require.Equal(t, OutcomeConnected, c.Connect(context.Background()).Outcome)
	assert.Equal(t, 1, fake.HandlerCount(provider.EventDisconnect))

	fake.Emit(provider.EventDisconnect, nil)
	assert.Empty(t, c.State().Identity)
}

func TestIdentityFromEvent(t *testing.T) {
	t.Parallel()

	var key provider.Ed25519Key
	key[0] = 9

	assert.Empty(t, identityFromEvent(nil))
	assert.Empty(t, identityFromEvent(42))
	assert.Equal(t, "ABC", identityFromEvent(providertest.StringKey("ABC")))
	assert.Equal(t, key.String(), identityFromEvent(key))
}
