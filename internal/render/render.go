package render

// Markdown renders markdown content for terminal display. Renderers are
// cached per option set and safe to use from several goroutines.
func Markdown(content string, opts Options) (string, error) {
	r, err := renderers.lookup(opts)
	if err != nil {
		return "", err
	}
	return r.render(content)
}

// MarkdownOrPlain renders content, falling back to the raw text when the
// renderer cannot be built (for example with a bad style path).
func MarkdownOrPlain(content string, opts Options) string {
	rendered, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return rendered
}
