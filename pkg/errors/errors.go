// Package errors provides structured error handling for sigil-connect.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Authentication or authorization failed
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied
	ExitBusy       = 6 // Another operation is in progress
)

const codeGeneral = "GENERAL_ERROR"

// SigilError is the structured error type.
type SigilError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *SigilError) Error() string {
	msg := e.Message

	// Sorted for deterministic output
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *SigilError) Unwrap() error {
	return e.Cause
}

// Is matches SigilErrors by code.
func (e *SigilError) Is(target error) bool {
	var t *SigilError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &SigilError{
		Code:     codeGeneral,
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &SigilError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrAuthentication = &SigilError{
		Code:     "AUTHENTICATION_FAILED",
		Message:  "authentication failed",
		ExitCode: ExitAuth,
	}

	ErrNotFound = &SigilError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	ErrPermission = &SigilError{
		Code:     "PERMISSION_DENIED",
		Message:  "permission denied",
		ExitCode: ExitPermission,
	}

	// Session errors.
	ErrNoProvider = &SigilError{
		Code:     "NO_PROVIDER",
		Message:  "no wallet provider found",
		ExitCode: ExitNotFound,
	}

	ErrConnectFailed = &SigilError{
		Code:     "CONNECT_FAILED",
		Message:  "wallet connection failed",
		ExitCode: ExitAuth,
	}

	ErrDisconnectFailed = &SigilError{
		Code:     "DISCONNECT_FAILED",
		Message:  "wallet disconnect failed",
		ExitCode: ExitGeneral,
	}

	ErrSessionBusy = &SigilError{
		Code:     "SESSION_BUSY",
		Message:  "another connect or disconnect is in progress",
		ExitCode: ExitBusy,
	}

	// Keystore errors.
	ErrKeystoreNotFound = &SigilError{
		Code:     "KEYSTORE_NOT_FOUND",
		Message:  "local wallet keystore not found",
		ExitCode: ExitNotFound,
	}

	ErrKeystoreExists = &SigilError{
		Code:     "KEYSTORE_EXISTS",
		Message:  "local wallet keystore already exists",
		ExitCode: ExitInput,
	}

	ErrInvalidMnemonic = &SigilError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	ErrDecryptionFailed = &SigilError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong password or corrupted file",
		ExitCode: ExitAuth,
	}

	// Config errors.
	ErrConfigInvalid = &SigilError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownCommand = &SigilError{
		Code:     "UNKNOWN_COMMAND",
		Message:  "unknown command",
		ExitCode: ExitInput,
	}
)

// New creates a new SigilError with the given code and message.
func New(code, message string) *SigilError {
	return &SigilError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// clone copies err into a new SigilError. Foreign errors become general
// errors with err as the cause, and foreign is reported true.
func clone(err error) (c *SigilError, foreign bool) {
	var se *SigilError
	if errors.As(err, &se) {
		cp := *se
		return &cp, false
	}
	return &SigilError{
		Code:     codeGeneral,
		Message:  err.Error(),
		Cause:    err,
		ExitCode: ExitGeneral,
	}, true
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)
	c, foreign := clone(err)
	if foreign {
		c.Message = msg
	} else {
		c.Message = fmt.Sprintf("%s: %s", msg, c.Message)
		c.Cause = err
	}
	return c
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}
	c, _ := clone(err)
	c.Details = details
	return c
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	c, _ := clone(err)
	c.Suggestion = suggestion
	return c
}

// WithCause attaches an underlying cause, keeping code and message.
func WithCause(err, cause error) error {
	if err == nil {
		return nil
	}
	c, _ := clone(err)
	c.Cause = cause
	return c
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var se *SigilError
	if errors.As(err, &se) {
		return se.ExitCode
	}
	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var se *SigilError
	if errors.As(err, &se) {
		return se.Code
	}
	return codeGeneral
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
