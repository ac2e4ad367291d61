package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sidebuddy/sidebuddy/internal/models"
	"github.com/sidebuddy/sidebuddy/internal/podcast"
)

type editorMode int

const (
	modeBrowse editorMode = iota
	modeEdit
)

// TranscriptEditorModel lets the user review a transcript and rewrite
// individual lines before audio is generated
type TranscriptEditorModel struct {
	title      string
	transcript models.Transcript
	names      map[string]string
	speakerIdx map[string]int
	styles     Styles

	cursor   int
	mode     editorMode
	textarea textarea.Model
	edited   map[int]bool

	confirmed bool
	cancelled bool

	width  int
	height int
	ready  bool
}

// NewTranscriptEditorModel creates an editor for transcript. names maps
// speaker IDs to display names.
func NewTranscriptEditorModel(title string, transcript models.Transcript, names map[string]string) TranscriptEditorModel {
	ta := textarea.New()
	ta.Placeholder = "Line text..."
	ta.CharLimit = models.MaxMessageLength
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle = ta.FocusedStyle

	speakerIdx := make(map[string]int)
	for i, id := range transcript.Speakers() {
		speakerIdx[id] = i
	}

	if names == nil {
		names = map[string]string{}
	}

	return TranscriptEditorModel{
		title:      title,
		transcript: transcript.Clone(),
		names:      names,
		speakerIdx: speakerIdx,
		styles:     NewStyles(TokyoNightTheme),
		textarea:   ta,
		edited:     make(map[int]bool),
	}
}

// WithTheme returns the model rendering with theme
func (m TranscriptEditorModel) WithTheme(theme Theme) TranscriptEditorModel {
	m.styles = NewStyles(theme)
	return m
}

// Init initializes the model
func (m TranscriptEditorModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m TranscriptEditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if w := msg.Width - 6; w > 10 {
			m.textarea.SetWidth(w)
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeEdit {
			return m.updateEdit(msg)
		}
		return m.updateBrowse(msg)
	}

	if m.mode == modeEdit {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m TranscriptEditorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit

	case "y":
		m.confirmed = true
		return m, tea.Quit

	case "up", "k":
		if len(m.transcript) > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.transcript) - 1
			}
		}

	case "down", "j":
		if len(m.transcript) > 0 {
			m.cursor++
			if m.cursor >= len(m.transcript) {
				m.cursor = 0
			}
		}

	case "home", "g":
		m.cursor = 0

	case "end", "G":
		if len(m.transcript) > 0 {
			m.cursor = len(m.transcript) - 1
		}

	case "enter", "e":
		if len(m.transcript) == 0 {
			return m, nil
		}
		m.mode = modeEdit
		m.textarea.SetValue(m.transcript[m.cursor].Text)
		return m, m.textarea.Focus()
	}

	return m, nil
}

func (m TranscriptEditorModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancelled = true
		return m, tea.Quit

	case "esc":
		m.mode = modeBrowse
		m.textarea.Blur()
		return m, nil

	case "ctrl+s":
		text := strings.TrimSpace(m.textarea.Value())
		if text != m.transcript[m.cursor].Text {
			m.transcript = podcast.EditLine(m.transcript, m.cursor, text)
			m.edited[m.cursor] = true
		}
		m.mode = modeBrowse
		m.textarea.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// View renders the TUI
func (m TranscriptEditorModel) View() string {
	if !m.ready {
		return "  Initializing..."
	}

	var b strings.Builder

	header := m.styles.Title.Render(m.title) + "\n" +
		m.styles.Subtitle.Render(fmt.Sprintf("%d lines, %d edited", len(m.transcript), m.EditedCount()))
	b.WriteString(m.styles.Header.Render(header))
	b.WriteString("\n")

	if len(m.transcript) == 0 {
		b.WriteString(m.styles.Hint.Render("  The transcript is empty."))
		b.WriteString("\n")
	}

	// Reserve space for header, edit panel and status bar
	reserved := 8
	if m.mode == modeEdit {
		reserved += 8
	}
	maxVisible := m.height - reserved
	if maxVisible < 3 {
		maxVisible = 3
	}

	startIdx := 0
	if m.cursor >= maxVisible {
		startIdx = m.cursor - maxVisible + 1
	}
	endIdx := startIdx + maxVisible
	if endIdx > len(m.transcript) {
		endIdx = len(m.transcript)
	}

	textWidth := m.width - 8
	if textWidth < 20 {
		textWidth = 20
	}

	for i := startIdx; i < endIdx; i++ {
		line := m.transcript[i]

		marker := "  "
		if i == m.cursor {
			marker = m.styles.Cursor.Render("> ")
		}

		edited := " "
		if m.edited[i] {
			edited = m.styles.Edited.Render("*")
		}

		speaker := m.styles.speaker(m.speakerIdx[line.SpeakerID]).Render(m.speakerName(line.SpeakerID) + ":")
		text := m.styles.Line.Width(textWidth).Render(line.Text)

		b.WriteString(marker + edited + speaker + "\n")
		for _, l := range strings.Split(text, "\n") {
			b.WriteString("    " + l + "\n")
		}
	}

	if m.mode == modeEdit {
		label := m.styles.EditLabel.Render(fmt.Sprintf("Editing line %d", m.cursor+1))
		b.WriteString(m.styles.EditPanel.Render(label + "\n" + m.textarea.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar())

	return b.String()
}

func (m TranscriptEditorModel) statusBar() string {
	var pairs [][2]string
	if m.mode == modeEdit {
		pairs = [][2]string{{"ctrl+s", "apply"}, {"esc", "discard"}}
	} else {
		pairs = [][2]string{{"↑/↓", "move"}, {"enter", "edit"}, {"y", "generate audio"}, {"q", "abort"}}
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, m.styles.StatusKey.Render(p[0])+" "+m.styles.Status.Render(p[1]))
	}
	return "  " + strings.Join(parts, "  ")
}

func (m TranscriptEditorModel) speakerName(id string) string {
	if name, ok := m.names[id]; ok && name != "" {
		return name
	}
	return "Speaker " + id
}

// Transcript returns the transcript including applied edits
func (m TranscriptEditorModel) Transcript() models.Transcript {
	return m.transcript.Clone()
}

// EditedCount returns the number of lines changed in this session
func (m TranscriptEditorModel) EditedCount() int {
	return len(m.edited)
}

// IsEditing reports whether a line is open in the editor
func (m TranscriptEditorModel) IsEditing() bool {
	return m.mode == modeEdit
}

// Cursor returns the selected line index
func (m TranscriptEditorModel) Cursor() int {
	return m.cursor
}

// IsConfirmed returns whether the user accepted the transcript
func (m TranscriptEditorModel) IsConfirmed() bool {
	return m.confirmed && !m.cancelled
}

// IsCancelled returns whether the user aborted
func (m TranscriptEditorModel) IsCancelled() bool {
	return m.cancelled
}

// EditorResult is the outcome of RunTranscriptEditor
type EditorResult struct {
	Transcript models.Transcript
	Confirmed  bool
	Edited     int
}

// RunTranscriptEditor starts the editor and returns the reviewed transcript
func RunTranscriptEditor(title string, transcript models.Transcript, names map[string]string, theme Theme) (EditorResult, error) {
	m := NewTranscriptEditorModel(title, transcript, names).WithTheme(theme)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return EditorResult{}, err
	}

	em, ok := finalModel.(TranscriptEditorModel)
	if !ok {
		return EditorResult{}, fmt.Errorf("unexpected model type %T", finalModel)
	}

	return EditorResult{
		Transcript: em.Transcript(),
		Confirmed:  em.IsConfirmed(),
		Edited:     em.EditedCount(),
	}, nil
}
