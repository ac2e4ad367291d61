package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestBridgeTimeoutError(t *testing.T) {
	err := NewBridgeTimeoutError("get-page-content", 3*time.Second)

	expected := `bridge request "get-page-content" timed out after 3s`
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrBridgeTimeout) {
		t.Error("Expected error to match ErrBridgeTimeout")
	}
	if !err.Is(NewBridgeTimeoutError("other", time.Second)) {
		t.Error("Expected error to match another BridgeTimeoutError")
	}
	if errors.Is(err, ErrNetwork) {
		t.Error("Expected error not to match ErrNetwork")
	}

	noAction := NewBridgeTimeoutError("", time.Second)
	if noAction.Error() != "bridge request timed out after 1s" {
		t.Errorf("Error() = %s", noAction.Error())
	}
}

func TestEmptyContextError(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"default message", "", "no content available to generate a podcast"},
		{"custom message", "page is blank", "no content available: page is blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEmptyContextError(tt.message)
			if err.Error() != tt.want {
				t.Errorf("Error() = %s, want %s", err.Error(), tt.want)
			}
			if !IsEmptyContext(err) {
				t.Error("IsEmptyContext should be true")
			}
		})
	}
}

func TestRemoteRequestError(t *testing.T) {
	err := NewRemoteRequestError(422, "/api/transcript", "bad input", `{"detail":[{"msg":"bad input"}]}`)

	if err.Error() != "bad input" {
		t.Errorf("Error() = %s, want bad input", err.Error())
	}
	if !IsRemoteRequest(err) {
		t.Error("IsRemoteRequest should be true")
	}

	wrapped := fmt.Errorf("transcript stage: %w", err)
	if GetHTTPStatus(wrapped) != 422 {
		t.Errorf("GetHTTPStatus = %d, want 422", GetHTTPStatus(wrapped))
	}
	if GetEndpoint(wrapped) != "/api/transcript" {
		t.Errorf("GetEndpoint = %s", GetEndpoint(wrapped))
	}
	if GetResponseBody(wrapped) == "" {
		t.Error("GetResponseBody should return the raw body")
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("generate transcript", "http://127.0.0.1:8000/api/transcript", cause)

	expected := "network error during generate transcript at http://127.0.0.1:8000/api/transcript: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected Unwrap to expose the cause")
	}
	if !IsNetworkError(err) {
		t.Error("IsNetworkError should be true")
	}
	if GetEndpoint(err) != "http://127.0.0.1:8000/api/transcript" {
		t.Errorf("GetEndpoint = %s", GetEndpoint(err))
	}
	if GetHTTPStatus(err) != 0 {
		t.Error("network errors carry no HTTP status")
	}

	noEndpoint := NewNetworkError("dial host", "", cause)
	if noEndpoint.Error() != "network error during dial host: connection refused" {
		t.Errorf("Error() = %s", noEndpoint.Error())
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("missing audio_url", "audio_url")

	if err.Error() != "parse error: missing audio_url" {
		t.Errorf("Error() = %s", err.Error())
	}
	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("Expected error to match ErrInvalidResponse")
	}
	if errors.Is(err, ErrRemoteRequest) {
		t.Error("Expected error not to match ErrRemoteRequest")
	}
}

func TestPredicatesOnNil(t *testing.T) {
	if IsBridgeTimeout(nil) || IsEmptyContext(nil) || IsRemoteRequest(nil) || IsNetworkError(nil) {
		t.Error("predicates should be false for nil")
	}
	if GetEndpoint(nil) != "" || GetResponseBody(nil) != "" {
		t.Error("accessors should be empty for nil")
	}
}
