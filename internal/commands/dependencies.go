package commands

import (
	"io"
	"os"

	"github.com/sidebuddy/sidebuddy/internal/bridge"
	"github.com/sidebuddy/sidebuddy/internal/config"
	"github.com/sidebuddy/sidebuddy/internal/models"
	"github.com/sidebuddy/sidebuddy/internal/podcast"
	"github.com/sidebuddy/sidebuddy/internal/tui"
)

// EditorInterface runs the interactive transcript review
type EditorInterface interface {
	RunTranscriptEditor(title string, transcript models.Transcript, names map[string]string) (tui.EditorResult, error)
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Backend generates transcripts and audio. When nil a client for the
	// configured backend URL is created.
	Backend podcast.Backend

	// Editor is the transcript review UI.
	Editor EditorInterface

	// Clipboard is used by the in-process host for shared results.
	Clipboard bridge.Clipboard

	// Stdin is read when content is piped in.
	Stdin io.Reader
}

// DefaultEditor is the production implementation of EditorInterface.
type DefaultEditor struct {
	Theme tui.Theme
}

func (d *DefaultEditor) RunTranscriptEditor(title string, transcript models.Transcript, names map[string]string) (tui.EditorResult, error) {
	return tui.RunTranscriptEditor(title, transcript, names, d.Theme)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Editor:    &DefaultEditor{Theme: tui.TokyoNightTheme},
		Clipboard: bridge.SystemClipboard{},
		Stdin:     os.Stdin,
	}
}

// withDefaults fills the unset fields of deps
func (d *Dependencies) withDefaults() *Dependencies {
	out := NewDependencies()
	if d == nil {
		return out
	}
	if d.Backend != nil {
		out.Backend = d.Backend
	}
	if d.Editor != nil {
		out.Editor = d.Editor
	}
	if d.Clipboard != nil {
		out.Clipboard = d.Clipboard
	}
	if d.Stdin != nil {
		out.Stdin = d.Stdin
	}
	return out
}

// backend returns the injected backend or a client for cfg
func (d *Dependencies) backend(cfg config.Config) (podcast.Backend, error) {
	if d.Backend != nil {
		return d.Backend, nil
	}
	return podcast.NewClient(cfg.BackendURL, podcast.WithRequestTimeout(cfg.BackendTimeout()))
}
