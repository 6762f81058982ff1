package localwallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil-connect/internal/provider"
)

func TestRequest_Dispatch(t *testing.T) {
	t.Parallel()
	w := newTestWallet(t, AutoApprover{Allow: true})
	ctx := context.Background()

	res, err := w.Request(ctx, provider.MethodConnect, nil)
	require.NoError(t, err)
	resp, ok := res.(provider.ConnectResponse)
	require.True(t, ok)
	assert.Equal(t, w.Account().String(), resp.PublicKey.String())

	res, err = w.Request(ctx, provider.MethodSignMessage, provider.SignMessageParams{Message: []byte("hi")})
	require.NoError(t, err)
	msg, ok := res.(*provider.SignedMessage)
	require.True(t, ok)
	assert.True(t, Verify(w.Account(), []byte("hi"), msg.Signature))

	res, err = w.Request(ctx, provider.MethodSignTransaction, &provider.Transaction{Message: []byte{1}})
	require.NoError(t, err)
	assert.IsType(t, &provider.Transaction{}, res)

	res, err = w.Request(ctx, provider.MethodSignAllTransactions, []*provider.Transaction{{Message: []byte{1}}})
	require.NoError(t, err)
	assert.IsType(t, []*provider.Transaction{}, res)

	_, err = w.Request(ctx, provider.MethodDisconnect, nil)
	require.NoError(t, err)
	assert.Nil(t, w.PublicKey())
}

func TestRequest_ConnectOptionsPointer(t *testing.T) {
	t.Parallel()
	w := newTestWallet(t, AutoApprover{Allow: true})

	_, err := w.Request(context.Background(), provider.MethodConnect, &provider.ConnectOptions{OnlyIfTrusted: true})
	require.ErrorIs(t, err, provider.ErrUserRejected)
}

func TestRequest_Errors(t *testing.T) {
	t.Parallel()
	w := newTestWallet(t, AutoApprover{Allow: true})
	ctx := context.Background()

	_, err := w.Request(ctx, "signIn", nil)
	require.ErrorIs(t, err, provider.ErrMethodNotFound)

	_, err = w.Request(ctx, provider.MethodConnect, "yes please")
	require.ErrorIs(t, err, provider.ErrInvalidInput)

	_, err = w.Request(ctx, provider.MethodSignMessage, []byte("raw"))
	require.ErrorIs(t, err, provider.ErrInvalidInput)

	_, err = w.Request(ctx, provider.MethodSignTransaction, []byte("raw"))
	require.ErrorIs(t, err, provider.ErrInvalidInput)
}

func TestRequest_RateLimited(t *testing.T) {
	t.Parallel()
	account, err := DeriveAccount(testMnemonic, DefaultDerivationPath)
	require.NoError(t, err)
	w := New(account, Options{Origin: testOrigin, Approver: AutoApprover{Allow: true}, RequestsPerSecond: 0.001, RequestBurst: 2})
	defer w.Close()
	ctx := context.Background()

	for range 2 {
		_, err = w.Request(ctx, provider.MethodDisconnect, nil)
		require.NoError(t, err)
	}
	_, err = w.Request(ctx, provider.MethodDisconnect, nil)
	require.ErrorIs(t, err, provider.ErrLimitExceeded)

	// Buckets are per method.
	_, err = w.Request(ctx, provider.MethodConnect, nil)
	require.NoError(t, err)
}
