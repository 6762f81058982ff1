package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil-connect/internal/output"
	sigilerr "github.com/mrz1836/sigil-connect/pkg/errors"
)

// failingWriter implements io.Writer but always returns an error.
type failingWriter struct{}

func (failingWriter) Write(_ []byte) (n int, err error) {
	return 0, errors.New("write failed") //nolint:err113 // Test error
}

func TestFormatError_Nil(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, nil, output.FormatJSON))
	require.NoError(t, output.FormatError(&buf, nil, output.FormatText))
	assert.Empty(t, buf.String())
}

func TestFormatError_GenericJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, errors.New("something went wrong"), output.FormatJSON)) //nolint:err113 // Test error

	var result output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "GENERAL_ERROR", result.Error.Code)
	assert.Equal(t, "something went wrong", result.Error.Message)
	assert.Equal(t, sigilerr.ExitGeneral, result.Error.ExitCode)
}

func TestFormatError_SigilErrorJSON(t *testing.T) {
	t.Parallel()
	err := sigilerr.WithSuggestion(
		sigilerr.WithDetails(sigilerr.ErrNoProvider, map[string]string{"slot": "solana"}),
		"create a local wallet with 'sigil-connect wallet init'",
	)

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, err, output.FormatJSON))

	var result output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "NO_PROVIDER", result.Error.Code)
	assert.Equal(t, "no wallet provider found", result.Error.Message)
	assert.Equal(t, map[string]string{"slot": "solana"}, result.Error.Details)
	assert.Equal(t, sigilerr.ExitNotFound, result.Error.ExitCode)
	assert.NotEmpty(t, result.Error.Suggestion)
}

func TestFormatError_SigilErrorText(t *testing.T) {
	t.Parallel()
	err := sigilerr.WithSuggestion(
		sigilerr.WithDetails(sigilerr.WithCause(sigilerr.ErrConnectFailed, errors.New("user rejected")), //nolint:err113 // Test error
			map[string]string{"origin": "sigil-connect://localhost", "attempt": "1"}),
		"approve the request in your wallet",
	)

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, err, output.FormatText))

	assert.Equal(t,
		"Error: wallet connection failed: user rejected\n"+
			"\nDetails:\n"+
			"  attempt: 1\n"+
			"  origin: sigil-connect://localhost\n"+
			"\nSuggestion: approve the request in your wallet\n",
		buf.String())
}

func TestFormatError_WrappedSentinelNotRepeated(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, sigilerr.Wrap(sigilerr.ErrKeystoreNotFound, "loading wallet"), output.FormatText))
	assert.Equal(t, "Error: loading wallet: local wallet keystore not found\n", buf.String())
}

func TestFormatError_WriteFailure(t *testing.T) {
	t.Parallel()
	require.Error(t, output.FormatError(failingWriter{}, sigilerr.ErrGeneral, output.FormatText))
}

func TestFormatSuccess(t *testing.T) {
	t.Parallel()

	var text bytes.Buffer
	require.NoError(t, output.FormatSuccess(&text, "keystore created", output.FormatText))
	assert.Equal(t, "keystore created\n", text.String())

	var js bytes.Buffer
	require.NoError(t, output.FormatSuccess(&js, "keystore created", output.FormatJSON))
	assert.JSONEq(t, `{"status":"success","message":"keystore created"}`, js.String())
}
