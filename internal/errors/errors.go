// Package errors provides custom error types for the sidebuddy bridge and pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common cases
var (
	ErrBridgeTimeout   = errors.New("bridge request timed out")
	ErrBridgeClosed    = errors.New("bridge is closed")
	ErrEmptyContext    = errors.New("no content available")
	ErrRemoteRequest   = errors.New("remote request failed")
	ErrNetwork         = errors.New("network error")
	ErrInvalidResponse = errors.New("invalid response format")
)

// BridgeTimeoutError is returned when the host does not answer a bridge
// request within the deadline.
type BridgeTimeoutError struct {
	Action  string
	Timeout time.Duration
}

func (e *BridgeTimeoutError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("bridge request timed out after %s", e.Timeout)
	}
	return fmt.Sprintf("bridge request %q timed out after %s", e.Action, e.Timeout)
}

// Is allows comparison with sentinel errors
func (e *BridgeTimeoutError) Is(target error) bool {
	if target == ErrBridgeTimeout {
		return true
	}
	_, ok := target.(*BridgeTimeoutError)
	return ok
}

// NewBridgeTimeoutError creates a new BridgeTimeoutError
func NewBridgeTimeoutError(action string, timeout time.Duration) *BridgeTimeoutError {
	return &BridgeTimeoutError{Action: action, Timeout: timeout}
}

// EmptyContextError is returned when a stage needs page content and none is available
type EmptyContextError struct {
	Message string
}

func (e *EmptyContextError) Error() string {
	if e.Message == "" {
		return "no content available to generate a podcast"
	}
	return fmt.Sprintf("no content available: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *EmptyContextError) Is(target error) bool {
	if target == ErrEmptyContext {
		return true
	}
	_, ok := target.(*EmptyContextError)
	return ok
}

// NewEmptyContextError creates a new EmptyContextError
func NewEmptyContextError(message string) *EmptyContextError {
	return &EmptyContextError{Message: message}
}

// RemoteRequestError represents a non-2xx answer from the backend.
// Message holds the human-readable text extracted from the error body.
type RemoteRequestError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
}

func (e *RemoteRequestError) Error() string {
	return e.Message
}

// Is allows comparison with sentinel errors
func (e *RemoteRequestError) Is(target error) bool {
	if target == ErrRemoteRequest {
		return true
	}
	_, ok := target.(*RemoteRequestError)
	return ok
}

// NewRemoteRequestError creates a new RemoteRequestError
func NewRemoteRequestError(statusCode int, endpoint, message, body string) *RemoteRequestError {
	return &RemoteRequestError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// NetworkError represents a transport failure (connection refused, DNS, reset)
type NetworkError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrNetwork {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Cause: cause}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// IsBridgeTimeout reports whether err is a bridge timeout
func IsBridgeTimeout(err error) bool {
	return errors.Is(err, ErrBridgeTimeout)
}

// IsEmptyContext reports whether err is an empty context error
func IsEmptyContext(err error) bool {
	return errors.Is(err, ErrEmptyContext)
}

// IsRemoteRequest reports whether err is a non-2xx backend answer
func IsRemoteRequest(err error) bool {
	return errors.Is(err, ErrRemoteRequest)
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var remoteErr *RemoteRequestError
	if errors.As(err, &remoteErr) {
		return remoteErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var remoteErr *RemoteRequestError
	if errors.As(err, &remoteErr) {
		return remoteErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the raw error body carried by err, or ""
func GetResponseBody(err error) string {
	var remoteErr *RemoteRequestError
	if errors.As(err, &remoteErr) {
		return remoteErr.Body
	}
	return ""
}
