// Package podcast provides the client and session workflow for the two-stage
// transcript-then-audio podcast backend.
package podcast

// GJSON paths for extracting values from backend responses.
const (
	// Validation errors follow the FastAPI shape: {"detail":[{"msg":"..."}]}
	PathDetailMsg = "detail.0.msg"
	// Some errors carry a plain string: {"detail":"..."}
	PathDetail = "detail"

	PathTranscript = "transcript"
	PathAudioURL   = "audio_url"
)

// Fallback messages when the error body carries nothing readable
const (
	MsgTranscriptFailed = "transcript generation failed"
	MsgAudioFailed      = "audio generation failed"
)

// maxErrorBody bounds how much of an error body is kept for diagnostics
const maxErrorBody = 4096

// maxResponseBody bounds successful response bodies
const maxResponseBody = 32 << 20
