package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sidebuddy/sidebuddy/internal/models"
)

// ExportFormat represents the format for exporting episodes
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseExportFormat maps a user-supplied name to an ExportFormat
func ParseExportFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "md", "markdown":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use markdown or json)", name)
	}
}

// ExportMarkdown exports an episode transcript as a markdown script
func (s *Store) ExportMarkdown(id string) (string, error) {
	ep, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return EpisodeMarkdown(ep), nil
}

// EpisodeMarkdown renders an episode as a markdown script
func EpisodeMarkdown(ep *Episode) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(ep.Title)
	sb.WriteString("\n\n")

	if tagline := strings.TrimSpace(ep.Form.PodcastTagline); tagline != "" {
		sb.WriteString("*")
		sb.WriteString(tagline)
		sb.WriteString("*\n\n")
	}

	sb.WriteString("**Created:** ")
	sb.WriteString(ep.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	if ep.SourceURL != "" {
		sb.WriteString("**Source:** ")
		sb.WriteString(ep.SourceURL)
		sb.WriteString("\n")
	}
	if ep.AudioURL != "" {
		sb.WriteString("**Audio:** ")
		sb.WriteString(ep.AudioURL)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("**Lines:** %d", len(ep.Transcript)))
	sb.WriteString("\n\n---\n\n")

	sb.WriteString(TranscriptMarkdown(ep.Transcript, SpeakerNames(ep.Form)))

	return sb.String()
}

// SpeakerNames maps speaker IDs to the roles configured on the form
func SpeakerNames(form models.TranscriptForm) map[string]string {
	names := map[string]string{}
	if role := strings.TrimSpace(form.RolesPerson1); role != "" {
		names["1"] = role
	}
	if role := strings.TrimSpace(form.RolesPerson2); role != "" {
		names["2"] = role
	}
	return names
}

// TranscriptMarkdown renders transcript lines as "**Speaker:** text"
// paragraphs. Speakers without a name are shown as "Speaker <id>".
func TranscriptMarkdown(transcript models.Transcript, names map[string]string) string {
	var sb strings.Builder
	for i, line := range transcript {
		name, ok := names[line.SpeakerID]
		if !ok {
			name = "Speaker " + line.SpeakerID
		}
		sb.WriteString("**")
		sb.WriteString(name)
		sb.WriteString(":** ")
		sb.WriteString(line.Text)
		sb.WriteString("\n")
		if i < len(transcript)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ExportJSON exports an episode as indented JSON
func (s *Store) ExportJSON(id string) ([]byte, error) {
	ep, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(ep, "", "  ")
}

// Export exports an episode in the given format
func (s *Store) Export(id string, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatJSON:
		return s.ExportJSON(id)
	case ExportFormatMarkdown:
		md, err := s.ExportMarkdown(id)
		if err != nil {
			return nil, err
		}
		return []byte(md), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// FormatRelativeTime formats a time as a relative string like "2h ago"
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d min ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
