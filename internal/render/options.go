// Package render provides markdown rendering for terminal output.
package render

const (
	defaultWidth = 80
	defaultStyle = "dark"
)

// Options selects how markdown is wrapped and styled
type Options struct {
	Width int
	// Style is a glamour style name or a path to a JSON style file
	Style            string
	EnableEmoji      bool
	PreserveNewLines bool
}

// DefaultOptions wraps at 80 columns with the dark style, emoji on and
// line breaks kept.
func DefaultOptions() Options {
	return Options{
		Width:            defaultWidth,
		Style:            defaultStyle,
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// WithWidth sets the wrap width. Non-positive widths keep the current one.
func (o Options) WithWidth(width int) Options {
	if width > 0 {
		o.Width = width
	}
	return o
}

// WithStyle sets the style. An empty style keeps the current one.
func (o Options) WithStyle(style string) Options {
	if style != "" {
		o.Style = style
	}
	return o
}

func (o Options) WithEmoji(enabled bool) Options {
	o.EnableEmoji = enabled
	return o
}

func (o Options) WithPreserveNewLines(enabled bool) Options {
	o.PreserveNewLines = enabled
	return o
}
