package provider

import (
	"errors"
	"fmt"
)

// Wallet error codes.
const (
	CodeUserRejected        = 4001
	CodeUnauthorized        = 4100
	CodeDisconnected        = 4900
	CodeInvalidInput        = -32000
	CodeResourceUnavailable = -32002
	CodeTransactionRejected = -32003
	CodeLimitExceeded       = -32005
	CodeMethodNotFound      = -32601
	CodeInternal            = -32603
)

// Error is a failure reported by a provider.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewError creates a provider error.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// Is matches provider errors by code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors, compared by code.
var (
	ErrUserRejected        = NewError(CodeUserRejected, "user rejected the request")
	ErrUnauthorized        = NewError(CodeUnauthorized, "the requested method and account have not been authorized")
	ErrDisconnected        = NewError(CodeDisconnected, "provider is disconnected")
	ErrInvalidInput        = NewError(CodeInvalidInput, "invalid input")
	ErrResourceUnavailable = NewError(CodeResourceUnavailable, "requested resource not available")
	ErrTransactionRejected = NewError(CodeTransactionRejected, "transaction rejected")
	ErrLimitExceeded       = NewError(CodeLimitExceeded, "request limit exceeded")
	ErrMethodNotFound      = NewError(CodeMethodNotFound, "method not found")
	ErrInternal            = NewError(CodeInternal, "internal error")
)

// IsUserRejected reports whether err is a user rejection.
func IsUserRejected(err error) bool {
	return errors.Is(err, ErrUserRejected)
}

// CodeOf returns the provider error code of err, or CodeInternal for foreign
// errors.
func CodeOf(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeInternal
}
