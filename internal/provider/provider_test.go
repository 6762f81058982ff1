package provider_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

func TestEd25519Key_RoundTrip(t *testing.T) {
	t.Parallel()

	var k provider.Ed25519Key
	for i := range k {
		k[i] = byte(i + 1)
	}

	parsed, err := provider.ParseEd25519Key(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)
	assert.Equal(t, k[:], parsed.Bytes())
}

func TestEd25519Key_ZeroKey(t *testing.T) {
	t.Parallel()

	// The system program address is 32 zero bytes.
	var k provider.Ed25519Key
	assert.Equal(t, "11111111111111111111111111111111", k.String())
}

func TestParseEd25519Key_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad alphabet", "0OIl"},
		{"too short", "ABC123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := provider.ParseEd25519Key(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, provider.ErrInvalidPublicKey)
		})
	}
}

func TestEd25519KeyFromBytes(t *testing.T) {
	t.Parallel()

	_, err := provider.Ed25519KeyFromBytes(make([]byte, 31))
	require.ErrorIs(t, err, provider.ErrInvalidPublicKey)

	k, err := provider.Ed25519KeyFromBytes(make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, provider.Ed25519Key{}, k)
}

func TestError_IsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("connect: %w", provider.NewError(provider.CodeUserRejected, "User rejected the request."))

	assert.ErrorIs(t, err, provider.ErrUserRejected)
	assert.True(t, provider.IsUserRejected(err))
	assert.NotErrorIs(t, err, provider.ErrUnauthorized)
	assert.Equal(t, provider.CodeUserRejected, provider.CodeOf(err))
	assert.Equal(t, provider.CodeInternal, provider.CodeOf(errors.New("boom")))
	assert.Contains(t, provider.ErrLimitExceeded.Error(), "-32005")
}

func TestParseRequestMethod(t *testing.T) {
	t.Parallel()

	m, err := provider.ParseRequestMethod(" signMessage ")
	require.NoError(t, err)
	assert.Equal(t, provider.MethodSignMessage, m)

	_, err = provider.ParseRequestMethod("signIn")
	require.ErrorIs(t, err, provider.ErrMethodNotFound)
}

func TestConnectionState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "connected", provider.StateConnected.String())
	assert.Equal(t, "disconnected", provider.StateDisconnected.String())
	assert.Equal(t, "unknown", provider.StateUnknown.String())
}
