package render

import (
	"os"

	"github.com/sidebuddy/sidebuddy/internal/config"
)

// EnvStyle overrides the configured style, as glamour itself does
const EnvStyle = "GLAMOUR_STYLE"

// OptionsFromConfig builds render options from the markdown section of the
// user configuration. GLAMOUR_STYLE wins over the configured style, and a
// non-positive width keeps the default.
func OptionsFromConfig(md config.MarkdownConfig, width int) Options {
	return DefaultOptions().
		WithStyle(md.Style).
		WithEmoji(md.EnableEmoji).
		WithPreserveNewLines(md.PreserveNewLines).
		WithStyle(os.Getenv(EnvStyle)).
		WithWidth(width)
}
