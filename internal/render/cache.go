package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// styledRenderer serializes Render calls on one glamour renderer.
type styledRenderer struct {
	mu sync.Mutex
	tr *glamour.TermRenderer
}

func (s *styledRenderer) render(content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr.Render(content)
}

// rendererCache keeps one renderer per distinct Options value.
type rendererCache struct {
	mu      sync.Mutex
	entries map[Options]*styledRenderer
}

var renderers = &rendererCache{entries: make(map[Options]*styledRenderer)}

// lookup returns the cached renderer for opts, building it on first use.
// Failed builds are not cached, so a later call reports the error again.
func (c *rendererCache) lookup(opts Options) (*styledRenderer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.entries[opts]; ok {
		return r, nil
	}

	tr, err := newTermRenderer(opts)
	if err != nil {
		return nil, err
	}
	r := &styledRenderer{tr: tr}
	c.entries[opts] = r
	return r, nil
}

func newTermRenderer(opts Options) (*glamour.TermRenderer, error) {
	ropts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
	}
	if opts.EnableEmoji {
		ropts = append(ropts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ropts = append(ropts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ropts...)
}

// ResetRenderers drops every cached renderer.
func ResetRenderers() {
	renderers.mu.Lock()
	renderers.entries = make(map[Options]*styledRenderer)
	renderers.mu.Unlock()
}

// CachedRenderers reports how many option sets have a live renderer.
func CachedRenderers() int {
	renderers.mu.Lock()
	defer renderers.mu.Unlock()
	return len(renderers.entries)
}
