package podcast

import (
	"fmt"

	"github.com/sidebuddy/sidebuddy/internal/models"
)

// Session is the state of one podcast generation flow. Values are replaced,
// not mutated: every operation returns a new Session.
type Session struct {
	Form       models.TranscriptForm
	SourceURL  string
	Context    string
	Transcript models.Transcript
	Result     *models.PipelineResult
}

// NewSession creates an empty session for form
func NewSession(form models.TranscriptForm) Session {
	return Session{Form: form}
}

// HasTranscript reports whether the audio stage can run
func (s Session) HasTranscript() bool {
	return len(s.Transcript) > 0
}

// AudioURL returns the generated audio URL, or "" before stage 2 completes
func (s Session) AudioURL() string {
	if s.Result == nil {
		return ""
	}
	return s.Result.AudioURL
}

// EditLine returns a session whose transcript has line index rewritten.
// The previous audio result is kept.
func (s Session) EditLine(index int, text string) Session {
	next := s
	next.Transcript = EditLine(s.Transcript, index, text)
	return next
}

// EditLine returns a copy of transcript with the text of line index replaced.
// ID and SpeakerID are unchanged and the input is never modified. An index
// outside [0, len(transcript)) is a programming error and panics.
func EditLine(transcript models.Transcript, index int, text string) models.Transcript {
	if index < 0 || index >= len(transcript) {
		panic(fmt.Sprintf("podcast: EditLine index %d out of range [0,%d)", index, len(transcript)))
	}
	next := transcript.Clone()
	next[index].Text = text
	return next
}
