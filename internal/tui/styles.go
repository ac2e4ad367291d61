// Package tui provides the terminal user interface for sidebuddy.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for the TUI
type Theme struct {
	Name string

	Border    lipgloss.Color
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// Built-in themes
var (
	// TokyoNightTheme is the default dark theme
	TokyoNightTheme = Theme{
		Name:      "tokyonight",
		Border:    lipgloss.Color("#414868"),
		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),
		Text:      lipgloss.Color("#c0caf5"),
		TextDim:   lipgloss.Color("#565f89"),
		TextMute:  lipgloss.Color("#3b4261"),
	}

	// NordTheme is based on the Nord palette
	NordTheme = Theme{
		Name:      "nord",
		Border:    lipgloss.Color("#4c566a"),
		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#b48ead"),
		Warning:   lipgloss.Color("#ebcb8b"),
		Error:     lipgloss.Color("#bf616a"),
		Text:      lipgloss.Color("#eceff4"),
		TextDim:   lipgloss.Color("#7b88a1"),
		TextMute:  lipgloss.Color("#4c566a"),
	}
)

// ThemeByName returns a built-in theme
func ThemeByName(name string) (Theme, bool) {
	switch name {
	case TokyoNightTheme.Name:
		return TokyoNightTheme, true
	case NordTheme.Name:
		return NordTheme, true
	default:
		return Theme{}, false
	}
}

// Styles holds every lipgloss style the editor renders with
type Styles struct {
	Header    lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Hint      lipgloss.Style
	Cursor    lipgloss.Style
	Line      lipgloss.Style
	Edited    lipgloss.Style
	Speakers  []lipgloss.Style
	EditPanel lipgloss.Style
	EditLabel lipgloss.Style
	StatusKey lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
}

// NewStyles builds the styles for a theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 2).
			MarginBottom(1),
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(theme.TextDim),
		Hint: lipgloss.NewStyle().
			Foreground(theme.TextMute).
			Italic(true),
		Cursor: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),
		Line: lipgloss.NewStyle().
			Foreground(theme.Text),
		Edited: lipgloss.NewStyle().
			Foreground(theme.Warning),
		Speakers: []lipgloss.Style{
			lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
			lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true),
			lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		},
		EditPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1).
			MarginTop(1),
		EditLabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),
		StatusKey: lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Bold(true),
		Status: lipgloss.NewStyle().
			Foreground(theme.TextMute),
		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),
	}
}

// speaker returns the style for the n-th distinct speaker
func (s Styles) speaker(n int) lipgloss.Style {
	if n < 0 || len(s.Speakers) == 0 {
		return s.Line
	}
	return s.Speakers[n%len(s.Speakers)]
}
