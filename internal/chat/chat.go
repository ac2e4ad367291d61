// Package chat composes chat messages, optionally grounded in the content of
// the current page, and hands them to a chat backend.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/samber/lo"

	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

var (
	// ErrEmptyDraft is returned when submitting a draft with no text and no files
	ErrEmptyDraft = errors.New("message is empty")
	// ErrMessageTooLong is returned when the draft text exceeds MaxMessageLength runes
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", models.MaxMessageLength)
)

// File is an attachment on a draft, such as a captured screenshot
type File struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Draft is the message being composed
type Draft struct {
	Text  string `json:"text"`
	Files []File `json:"files,omitempty"`
}

// IsEmpty reports whether the draft has neither text nor files
func (d Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Text) == "" && len(d.Files) == 0
}

// Validate checks the draft against the submission rules
func (d Draft) Validate() error {
	if d.IsEmpty() {
		return ErrEmptyDraft
	}
	if utf8.RuneCountInString(d.Text) > models.MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// Submission is a validated draft plus the page context sent with it
type Submission struct {
	Message Draft  `json:"message"`
	Context string `json:"context,omitempty"`
}

// Sink receives submissions. The chat model itself lives behind it.
type Sink interface {
	Submit(ctx context.Context, s Submission) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, s Submission) error

// Submit calls f
func (f SinkFunc) Submit(ctx context.Context, s Submission) error {
	return f(ctx, s)
}

// WriterSink writes each submission as one JSON line
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink on w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Submit encodes s to the writer
func (ws *WriterSink) Submit(_ context.Context, s Submission) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return json.NewEncoder(ws.w).Encode(s)
}

// PageSource supplies page text for context. *bridge.Bridge implements it.
type PageSource interface {
	RequestPageContent(ctx context.Context) (string, error)
}

// Composer holds the current draft and submits it
type Composer struct {
	source PageSource
	sink   Sink

	mu             sync.Mutex
	draft          Draft
	webpageContext bool
}

// NewComposer creates a Composer. source may be nil when page context is
// never used.
func NewComposer(source PageSource, sink Sink) *Composer {
	return &Composer{source: source, sink: sink}
}

// SetWebpageContext toggles attaching page content to submissions
func (c *Composer) SetWebpageContext(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.webpageContext = on
}

// WebpageContext reports whether page content is attached
func (c *Composer) WebpageContext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.webpageContext
}

// SetText replaces the draft text
func (c *Composer) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Text = text
}

// AddFile attaches a file to the draft
func (c *Composer) AddFile(f File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Files = append(c.draft.Files, f)
}

// RemoveFile drops the attachment at index; out of range is ignored
func (c *Composer) RemoveFile(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Files = lo.Filter(c.draft.Files, func(_ File, i int) bool {
		return i != index
	})
}

// Draft returns a copy of the current draft
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.draft
	d.Files = append([]File(nil), c.draft.Files...)
	return d
}

// Reset clears the draft
func (c *Composer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{}
}

// Submit validates the draft, fetches page context when enabled and hands
// the submission to the sink. The draft is cleared only when the sink
// accepts it.
func (c *Composer) Submit(ctx context.Context) (Submission, error) {
	draft := c.Draft()
	if err := draft.Validate(); err != nil {
		return Submission{}, err
	}

	sub := Submission{Message: draft}

	if c.WebpageContext() {
		if c.source == nil {
			return Submission{}, apierrors.NewEmptyContextError("webpage context is on but no page is connected")
		}
		text, err := c.source.RequestPageContent(ctx)
		if err != nil {
			return Submission{}, fmt.Errorf("failed to get page context: %w", err)
		}
		sub.Context = text
	}

	if err := c.sink.Submit(ctx, sub); err != nil {
		return Submission{}, err
	}

	c.Reset()
	return sub, nil
}
