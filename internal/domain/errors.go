// Package domain contains the SDK's core types and errors.
// Domain errors represent failure categories of brain API calls, NOT raw
// transport errors. Adapters map wire-level failures into these types so
// callers handle one taxonomy regardless of which endpoint failed.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrConfiguration indicates a mandatory construction parameter is missing
	// or invalid. Raised before any network access.
	ErrConfiguration = errors.New("configuration error")

	// ErrUsage indicates a programmer error such as an unsupported HTTP verb.
	ErrUsage = errors.New("usage error")

	// ErrConnection indicates the transport could not reach the server.
	ErrConnection = errors.New("connection error")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("timeout")

	// ErrMisconfiguredRedirect indicates the server answered with a redirect,
	// which the API never does for a correctly configured base URL.
	ErrMisconfiguredRedirect = errors.New("misconfigured redirect")

	// ErrServer indicates the server answered with an HTTP error status.
	ErrServer = errors.New("server error")
)

// ConfigurationError provides context for missing or invalid configuration.
type ConfigurationError struct {
	Parameter string
	Reason    string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Parameter, e.Reason)
	}

	return fmt.Sprintf("configuration error: %s is missing", e.Parameter)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError creates a configuration error for a missing parameter.
func NewConfigurationError(parameter string) error {
	return &ConfigurationError{Parameter: parameter}
}

// NewConfigurationErrorWithReason creates a configuration error with detail.
func NewConfigurationErrorWithReason(parameter, reason string) error {
	return &ConfigurationError{Parameter: parameter, Reason: reason}
}

// UsageError provides context for programmer errors.
type UsageError struct {
	Reason string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return "usage error: " + e.Reason
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UsageError) Unwrap() error {
	return ErrUsage
}

// NewUsageError creates a usage error with context.
func NewUsageError(reason string) error {
	return &UsageError{Reason: reason}
}

// ConnectionError provides context for transport-level connection failures.
// Connection failures are never retried.
type ConnectionError struct {
	URL       string
	RequestID string
	Cause     error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("unable to connect to %s (request id %s): %v", e.URL, e.RequestID, e.Cause)
	}

	return fmt.Sprintf("unable to connect to %s: %v", e.URL, e.Cause)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConnectionError) Unwrap() error {
	return ErrConnection
}

// NewConnectionError creates a connection error with context.
func NewConnectionError(url, requestID string, cause error) error {
	return &ConnectionError{URL: url, RequestID: requestID, Cause: cause}
}

// TimeoutError provides context for requests that exceeded the configured
// timeout. Timeouts are never retried.
type TimeoutError struct {
	URL       string
	Timeout   time.Duration
	RequestID string
	Cause     error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s (request id %s)", e.URL, e.Timeout, e.RequestID)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// NewTimeoutError creates a timeout error with context.
func NewTimeoutError(url string, timeout time.Duration, requestID string, cause error) error {
	return &TimeoutError{URL: url, Timeout: timeout, RequestID: requestID, Cause: cause}
}

// MisconfiguredRedirectError reports a redirect status from the server.
// Redirect following is disabled for mutating verbs, and the API is not
// expected to redirect at all, so a redirect almost always means the
// configured base URL is wrong.
type MisconfiguredRedirectError struct {
	StatusCode int
	URL        string
}

// Error implements the error interface.
func (e *MisconfiguredRedirectError) Error() string {
	return fmt.Sprintf("%d redirect received: likely misconfigured url: %s", e.StatusCode, e.URL)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *MisconfiguredRedirectError) Unwrap() error {
	return ErrMisconfiguredRedirect
}

// NewMisconfiguredRedirectError creates a redirect error with context.
func NewMisconfiguredRedirectError(statusCode int, url string) error {
	return &MisconfiguredRedirectError{StatusCode: statusCode, URL: url}
}

// ServerError carries the structured diagnostics for an HTTP error status.
// Every field is populated best-effort and independently: a malformed or
// missing piece of the response never prevents the others from being
// captured.
type ServerError struct {
	// Dump is the parsed JSON error body, or a generic marker string when
	// the body could not be parsed.
	Dump any

	// StatusCode is the HTTP status code of the failing response.
	StatusCode int

	// Code is the formatted error-code string, populated only when the body
	// matched the error envelope. Empty otherwise.
	Code string

	// Message is the formatted human-readable message, including the request
	// id and span id when available. Never empty.
	Message string

	// Elapsed is the time until response headers arrived.
	Elapsed time.Duration

	// TimeTaken is the server-reported timing header, empty when absent.
	TimeTaken string

	// Cause is the underlying transport error, if any.
	Cause error
}

// Error implements the error interface. The text includes the code, message,
// and raw dump so that server-reported markers anywhere in the body remain
// visible to substring checks.
func (e *ServerError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ". " + msg
	}

	if e.Dump != nil {
		return fmt.Sprintf("server error (status %d): %s [%v]", e.StatusCode, msg, e.Dump)
	}

	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, msg)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ServerError) Unwrap() error {
	return ErrServer
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsUsage checks if an error is a usage error.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage)
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsMisconfiguredRedirect checks if an error is a redirect error.
func IsMisconfiguredRedirect(err error) bool {
	return errors.Is(err, ErrMisconfiguredRedirect)
}

// IsServer checks if an error is a server error.
func IsServer(err error) bool {
	return errors.Is(err, ErrServer)
}
