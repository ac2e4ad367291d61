package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
)

// maxBodyPreview bounds how much of a backend error body is echoed
const maxBodyPreview = 500

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isTerminal reports whether w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// truncate shortens s to maxLen runes, adding an ellipsis
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ "+msg))
}

func printWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(colorWarning).Render("⚠ "+msg))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		body = truncate(strings.TrimSpace(body), maxBodyPreview)
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case apierrors.IsBridgeTimeout(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The page did not answer. Is 'sidebuddy host' running and reachable?"))
	case apierrors.IsEmptyContext(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The page has no readable text. Pass a file with -f or use --sample"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the podcast backend running? Set it with --backend or SIDEBUDDY_BACKEND_URL"))
	case apierrors.IsRemoteRequest(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The backend rejected the request. Check the transcript settings with 'sidebuddy config show'"))
	}

	return sb.String()
}
