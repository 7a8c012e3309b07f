// Package errors defines the application error taxonomy shared by the
// gateway, the broker and the tool handlers.
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrInvalidArgument is returned when an invalid argument is provided
	ErrInvalidArgument = "invalid_argument"

	// ErrNoCredentials is returned when no token record exists for a
	// (user, provider) pair
	ErrNoCredentials = "no_credentials"

	// ErrRefreshFailed is returned when a refresh-token exchange with the
	// upstream token endpoint fails
	ErrRefreshFailed = "refresh_failed"

	// ErrUpstream is returned when an upstream REST API responds with a
	// non-2xx status
	ErrUpstream = "upstream"

	// ErrTimeout is returned when an upstream call exceeds its deadline
	ErrTimeout = "timeout"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string, cause error) *Error {
	return NewError(ErrInvalidArgument, message, cause)
}

// NewNoCredentialsError creates a new no credentials error
func NewNoCredentialsError(message string, cause error) *Error {
	return NewError(ErrNoCredentials, message, cause)
}

// NewRefreshFailedError creates a new refresh failed error
func NewRefreshFailedError(message string, cause error) *Error {
	return NewError(ErrRefreshFailed, message, cause)
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(message string, cause error) *Error {
	return NewError(ErrUpstream, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *Error {
	return NewError(ErrTimeout, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

func isType(err error, errorType string) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == errorType
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return isType(err, ErrInvalidArgument)
}

// IsNoCredentials checks if the error is a no credentials error
func IsNoCredentials(err error) bool {
	return isType(err, ErrNoCredentials)
}

// IsRefreshFailed checks if the error is a refresh failed error
func IsRefreshFailed(err error) bool {
	return isType(err, ErrRefreshFailed)
}

// IsUpstream checks if the error is an upstream error
func IsUpstream(err error) bool {
	return isType(err, ErrUpstream)
}

// IsTimeout checks if the error is a timeout error
func IsTimeout(err error) bool {
	return isType(err, ErrTimeout)
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return isType(err, ErrInternal)
}
