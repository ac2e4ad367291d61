// Package models contains data types and constants for the sidebuddy bridge and podcast backend.
package models

// Backend endpoints, relative to the configured base URL
const (
	DefaultBackendURL  = "http://127.0.0.1:8000"
	EndpointTranscript = "/api/transcript"
	EndpointAudio      = "/api/audio"
)

// Bridge message actions
const (
	ActionGetPageContent  = "get-page-content"
	ActionCopyToClipboard = "copy-to-clipboard"
)

// Limits carried over from the sidebar panel
const (
	// MaxMessageLength bounds chat drafts and extracted page content (in runes)
	MaxMessageLength = 10000

	// DefaultBridgeTimeoutMs is the unified timeout for every bridge request
	DefaultBridgeTimeoutMs = 3000

	// DefaultBackendTimeoutSec bounds a single backend request; audio
	// synthesis for long transcripts is slow
	DefaultBackendTimeoutSec = 600
)

// SampleContext is used in place of page content when the webpage-context
// setting is off.
const SampleContext = "Nội dung mẫu để thử nghiệm..."

// Speaker voices used by the audio stage
const (
	VoiceSpeaker1 = "vi-VN-HoaiMyNeural"
	VoiceSpeaker2 = "vi-VN-NamMinhNeural"
)

// DefaultHeaders returns the default headers for backend requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}
