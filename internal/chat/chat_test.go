package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidebuddy/sidebuddy/internal/bridge"
	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

type staticSource struct {
	text string
	err  error
	hits int
}

func (s *staticSource) RequestPageContent(context.Context) (string, error) {
	s.hits++
	return s.text, s.err
}

type recordingSink struct {
	got []Submission
	err error
}

func (r *recordingSink) Submit(_ context.Context, s Submission) error {
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, s)
	return nil
}

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantErr error
	}{
		{"empty", Draft{}, ErrEmptyDraft},
		{"whitespace", Draft{Text: " \n "}, ErrEmptyDraft},
		{"file only", Draft{Files: []File{{Name: "shot.png"}}}, nil},
		{"at limit", Draft{Text: strings.Repeat("ă", models.MaxMessageLength)}, nil},
		{"over limit", Draft{Text: strings.Repeat("a", models.MaxMessageLength+1)}, ErrMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestComposer_SubmitWithoutContext(t *testing.T) {
	source := &staticSource{text: "page"}
	sink := &recordingSink{}
	c := NewComposer(source, sink)

	c.SetText("What is this about?")
	sub, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "What is this about?", sub.Message.Text)
	assert.Empty(t, sub.Context)
	assert.Equal(t, 0, source.hits)
	assert.Len(t, sink.got, 1)
	assert.True(t, c.Draft().IsEmpty(), "draft is reset after submit")
}

func TestComposer_SubmitWithContext(t *testing.T) {
	source := &staticSource{text: "page body"}
	sink := &recordingSink{}
	c := NewComposer(source, sink)
	c.SetWebpageContext(true)

	c.SetText("Summarize")
	sub, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "page body", sub.Context)
	assert.Equal(t, 1, source.hits)
}

func TestComposer_DraftKeptOnFailure(t *testing.T) {
	t.Run("context failure", func(t *testing.T) {
		source := &staticSource{err: apierrors.NewBridgeTimeoutError(models.ActionGetPageContent, time.Second)}
		sink := &recordingSink{}
		c := NewComposer(source, sink)
		c.SetWebpageContext(true)
		c.SetText("keep me")

		_, err := c.Submit(context.Background())
		assert.True(t, apierrors.IsBridgeTimeout(err))
		assert.Equal(t, "keep me", c.Draft().Text)
		assert.Empty(t, sink.got)
	})

	t.Run("sink failure", func(t *testing.T) {
		calls := 0
		sink := SinkFunc(func(_ context.Context, s Submission) error {
			calls++
			assert.Equal(t, "keep me too", s.Message.Text)
			return errors.New("model unavailable")
		})
		c := NewComposer(nil, sink)
		c.SetText("keep me too")

		_, err := c.Submit(context.Background())
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, "keep me too", c.Draft().Text)
	})

	t.Run("too long", func(t *testing.T) {
		sink := &recordingSink{}
		c := NewComposer(nil, sink)
		long := strings.Repeat("x", models.MaxMessageLength+1)
		c.SetText(long)

		_, err := c.Submit(context.Background())
		assert.ErrorIs(t, err, ErrMessageTooLong)
		assert.Equal(t, long, c.Draft().Text)
	})
}

func TestComposer_ContextOnWithoutSource(t *testing.T) {
	c := NewComposer(nil, &recordingSink{})
	c.SetWebpageContext(true)
	c.SetText("hi")

	_, err := c.Submit(context.Background())
	assert.True(t, apierrors.IsEmptyContext(err))
}

func TestComposer_Files(t *testing.T) {
	c := NewComposer(nil, &recordingSink{})
	c.AddFile(File{Name: "a.png"})
	c.AddFile(File{Name: "b.png"})
	c.AddFile(File{Name: "c.png"})

	c.RemoveFile(1)
	c.RemoveFile(9)

	names := []string{}
	for _, f := range c.Draft().Files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a.png", "c.png"}, names)
}

func TestComposer_SubmitOverBridge(t *testing.T) {
	panel, host := bridge.Pipe("chrome-extension://sidebuddy", "https://page.example")
	h := bridge.NewHost(host, bridge.ContentFunc(func(context.Context) (string, error) {
		return "bridged page", nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = h.Serve(ctx) }()

	b, err := bridge.New(panel, bridge.WithAllowedOrigins("https://page.example"))
	require.NoError(t, err)
	defer b.Close()

	var buf bytes.Buffer
	c := NewComposer(b, NewWriterSink(&buf))
	c.SetWebpageContext(true)
	c.SetText("Explain")

	_, err = c.Submit(ctx)
	require.NoError(t, err)

	var decoded Submission
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Explain", decoded.Message.Text)
	assert.Equal(t, "bridged page", decoded.Context)
}
