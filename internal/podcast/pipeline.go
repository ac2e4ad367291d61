package podcast

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

var (
	// ErrBusy is returned when a stage is started while another is in flight
	ErrBusy = errors.New("a podcast stage is already running")
	// ErrNoTranscript is returned when the audio stage has nothing to voice
	ErrNoTranscript = errors.New("no transcript to generate audio from")
)

// Backend generates transcripts and audio. *Client implements it.
type Backend interface {
	GenerateTranscript(ctx context.Context, contextText string, cfg models.TranscriptConfig) (models.Transcript, error)
	GenerateAudio(ctx context.Context, transcript models.Transcript, voices models.VoiceMap) (string, error)
}

// ContextSource supplies the text a transcript is generated from.
// *bridge.Bridge implements it.
type ContextSource interface {
	RequestPageContent(ctx context.Context) (string, error)
}

// StaticSource is a ContextSource that always returns its own text
type StaticSource string

// RequestPageContent returns s
func (s StaticSource) RequestPageContent(context.Context) (string, error) {
	return string(s), nil
}

// SampleSource is used when webpage context is turned off
var SampleSource = StaticSource(models.SampleContext)

// Pipeline runs the two podcast stages. At most one stage runs at a time.
type Pipeline struct {
	backend Backend
	source  ContextSource
	voices  models.VoiceMap

	inFlight atomic.Bool
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithVoiceMap overrides the speaker to voice mapping used by the audio stage
func WithVoiceMap(voices models.VoiceMap) PipelineOption {
	return func(p *Pipeline) {
		if len(voices) > 0 {
			p.voices = voices
		}
	}
}

// NewPipeline creates a Pipeline reading context from source
func NewPipeline(backend Backend, source ContextSource, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		backend: backend,
		source:  source,
		voices:  models.DefaultVoiceMap(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Busy reports whether a stage is in flight
func (p *Pipeline) Busy() bool {
	return p.inFlight.Load()
}

// Voices returns the voice map sent with audio requests
func (p *Pipeline) Voices() models.VoiceMap {
	return p.voices
}

// Transcribe runs stage 1: fetch context, then generate a transcript.
// On success the previous transcript and audio result are replaced. On
// failure s is returned unchanged along with the error.
func (p *Pipeline) Transcribe(ctx context.Context, s Session) (Session, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return s, ErrBusy
	}
	defer p.inFlight.Store(false)

	if err := s.Form.Validate(); err != nil {
		return s, err
	}

	text, err := p.source.RequestPageContent(ctx)
	if err != nil {
		return s, err
	}
	if strings.TrimSpace(text) == "" {
		return s, apierrors.NewEmptyContextError("")
	}

	slog.Debug("generating transcript", "context_chars", len(text))

	transcript, err := p.backend.GenerateTranscript(ctx, text, s.Form.Prepare())
	if err != nil {
		return s, err
	}

	next := s
	next.Context = text
	next.Transcript = transcript
	next.Result = nil
	return next, nil
}

// Synthesize runs stage 2 on the session's current transcript, including
// any local edits.
func (p *Pipeline) Synthesize(ctx context.Context, s Session) (Session, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return s, ErrBusy
	}
	defer p.inFlight.Store(false)

	if !s.HasTranscript() {
		return s, ErrNoTranscript
	}

	audioURL, err := p.backend.GenerateAudio(ctx, s.Transcript.Clone(), p.voices)
	if err != nil {
		return s, err
	}

	next := s
	next.Result = &models.PipelineResult{AudioURL: audioURL}
	return next, nil
}
