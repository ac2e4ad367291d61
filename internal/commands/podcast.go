package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/sidebuddy/sidebuddy/internal/bridge"
	"github.com/sidebuddy/sidebuddy/internal/history"
	"github.com/sidebuddy/sidebuddy/internal/models"
	"github.com/sidebuddy/sidebuddy/internal/podcast"
	"github.com/sidebuddy/sidebuddy/internal/render"
)

var errEditAborted = errors.New("transcript review aborted")

// formFlags override transcript settings for a single run
type formFlags struct {
	words        int
	language     string
	style        string
	instructions string
	voices       map[string]string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.words, "words", 0, "Target word count of the transcript")
	cmd.Flags().StringVar(&f.language, "language", "", "Output language")
	cmd.Flags().StringVar(&f.style, "style", "", "Conversation style, comma separated")
	cmd.Flags().StringVar(&f.instructions, "instructions", "", "Extra instructions for the script writer")
	cmd.Flags().StringToStringVar(&f.voices, "voice", nil, "Voice per speaker, e.g. --voice 1=vi-VN-Standard-A")
}

// apply returns form with the flags that were set
func (f *formFlags) apply(cmd *cobra.Command, form models.TranscriptForm) models.TranscriptForm {
	if cmd.Flags().Changed("words") {
		form.WordCount = f.words
	}
	if cmd.Flags().Changed("language") {
		form.OutputLanguage = f.language
	}
	if cmd.Flags().Changed("style") {
		form.ConversationStyle = f.style
	}
	if cmd.Flags().Changed("instructions") {
		form.UserInstructions = f.instructions
	}
	return form
}

// voiceMap merges --voice entries onto the configured mapping
func (f *formFlags) voiceMap(base models.VoiceMap) models.VoiceMap {
	out := models.VoiceMap{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range f.voices {
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// transcriptDocument is the file format written by 'transcript -o' and read
// by 'audio'
type transcriptDocument struct {
	SourceURL  string                `json:"source_url,omitempty"`
	Form       models.TranscriptForm `json:"form"`
	Transcript models.Transcript     `json:"transcript"`
}

// NewPodcastCmd creates the podcast command
func NewPodcastCmd(deps *Dependencies) *cobra.Command {
	var (
		content   contentFlags
		form      formFlags
		edit      bool
		share     bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "podcast [url]",
		Short: "Generate a podcast from page content",
		Long: `Run the full pipeline: read page content, generate a two-speaker
transcript, optionally review it, then generate the audio and print its URL.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := deps.withDefaults()
			stderr := cmd.ErrOrStderr()
			cfg := loadConfig(stderr)
			ctx := cmd.Context()

			backend, err := d.backend(cfg)
			if err != nil {
				return err
			}

			page, err := resolveContent(ctx, content, args, d, cfg, stderr)
			if err != nil {
				return err
			}

			b, closeBridge, err := openBridge(ctx, cfg, page, d.Clipboard)
			if err != nil {
				return fmt.Errorf("failed to open bridge: %w", err)
			}
			defer closeBridge()

			pipeline := podcast.NewPipeline(backend, contextSource(page, b),
				podcast.WithVoiceMap(form.voiceMap(cfg.VoiceMap)))

			session := podcast.NewSession(form.apply(cmd, cfg.Transcript))
			session.SourceURL = page.sourceURL

			session, err = transcribe(ctx, pipeline, session, stderr)
			if err != nil {
				return err
			}

			if edit {
				session, err = reviewTranscript(d.Editor, page.title, session, stderr)
				if err != nil {
					return err
				}
			}

			session, err = synthesize(ctx, pipeline, session, stderr)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), session.AudioURL())

			if share || cfg.CopyToClipboard {
				shareResult(ctx, b, session.AudioURL(), stderr)
			}

			if !noHistory {
				saveEpisode(page, session, stderr)
			}
			return nil
		},
	}

	content.register(cmd)
	form.register(cmd)
	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "Review and edit the transcript before generating audio")
	cmd.Flags().BoolVar(&share, "share", false, "Copy the audio URL to the host clipboard")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not save the episode to history")

	return cmd
}

// NewTranscriptCmd creates the transcript command
func NewTranscriptCmd(deps *Dependencies) *cobra.Command {
	var (
		content    contentFlags
		form       formFlags
		outputFile string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "transcript [url]",
		Short: "Generate a transcript only",
		Long: `Run the transcript stage and print the script. Save it with -o to edit it
by hand and feed it to 'sidebuddy audio'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := deps.withDefaults()
			stderr := cmd.ErrOrStderr()
			out := cmd.OutOrStdout()
			cfg := loadConfig(stderr)
			ctx := cmd.Context()

			backend, err := d.backend(cfg)
			if err != nil {
				return err
			}

			page, err := resolveContent(ctx, content, args, d, cfg, stderr)
			if err != nil {
				return err
			}

			b, closeBridge, err := openBridge(ctx, cfg, page, d.Clipboard)
			if err != nil {
				return fmt.Errorf("failed to open bridge: %w", err)
			}
			defer closeBridge()

			pipeline := podcast.NewPipeline(backend, contextSource(page, b))
			session := podcast.NewSession(form.apply(cmd, cfg.Transcript))
			session.SourceURL = page.sourceURL

			session, err = transcribe(ctx, pipeline, session, stderr)
			if err != nil {
				return err
			}

			doc := transcriptDocument{
				SourceURL:  session.SourceURL,
				Form:       session.Form,
				Transcript: session.Transcript,
			}

			if outputFile != "" {
				data, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode transcript: %w", err)
				}
				if err := os.WriteFile(outputFile, data, 0o644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				printSuccess(stderr, fmt.Sprintf("Transcript saved to %s", outputFile))
				return nil
			}

			if asJSON || !isTerminal(out) {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}

			md := history.TranscriptMarkdown(session.Transcript, history.SpeakerNames(session.Form))
			opts := render.OptionsFromConfig(cfg.Markdown, getTerminalWidth())
			fmt.Fprintln(out, strings.TrimRight(render.MarkdownOrPlain(md, opts), "\n"))
			return nil
		},
	}

	content.register(cmd)
	form.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the transcript JSON to file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON even on a terminal")

	return cmd
}

// NewAudioCmd creates the audio command
func NewAudioCmd(deps *Dependencies) *cobra.Command {
	var (
		form      formFlags
		share     bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "audio <transcript.json>",
		Short: "Generate audio from a saved transcript",
		Long: `Run the audio stage on a transcript file written by 'sidebuddy transcript -o'.
A bare JSON array of lines is accepted too. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := deps.withDefaults()
			stderr := cmd.ErrOrStderr()
			cfg := loadConfig(stderr)
			ctx := cmd.Context()

			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(d.Stdin)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read transcript: %w", err)
			}

			doc, err := parseTranscriptDocument(data, cfg.Transcript)
			if err != nil {
				return err
			}

			backend, err := d.backend(cfg)
			if err != nil {
				return err
			}

			pipeline := podcast.NewPipeline(backend, nil, podcast.WithVoiceMap(form.voiceMap(cfg.VoiceMap)))
			session := podcast.NewSession(doc.Form)
			session.SourceURL = doc.SourceURL
			session.Transcript = doc.Transcript

			session, err = synthesize(ctx, pipeline, session, stderr)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), session.AudioURL())

			page := pageContent{sourceURL: doc.SourceURL}
			if share || cfg.CopyToClipboard {
				b, closeBridge, err := openBridge(ctx, cfg, page, d.Clipboard)
				if err != nil {
					printWarning(stderr, fmt.Sprintf("Could not share result: %v", err))
				} else {
					shareResult(ctx, b, session.AudioURL(), stderr)
					closeBridge()
				}
			}

			if !noHistory {
				saveEpisode(page, session, stderr)
			}
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&form.voices, "voice", nil, "Voice per speaker, e.g. --voice 1=vi-VN-Standard-A")
	cmd.Flags().BoolVar(&share, "share", false, "Copy the audio URL to the host clipboard")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not save the episode to history")

	return cmd
}

// parseTranscriptDocument accepts a transcript document or a bare line array.
// Documents without a form use fallback.
func parseTranscriptDocument(data []byte, fallback models.TranscriptForm) (transcriptDocument, error) {
	if !gjson.ValidBytes(data) {
		return transcriptDocument{}, fmt.Errorf("transcript file is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	doc := transcriptDocument{Form: fallback}

	lines := root
	if root.IsObject() {
		lines = root.Get("transcript")
		if !lines.IsArray() {
			return transcriptDocument{}, fmt.Errorf("transcript file has no \"transcript\" array")
		}
		doc.SourceURL = root.Get("source_url").String()
		if form := root.Get("form"); form.IsObject() {
			if err := json.Unmarshal([]byte(form.Raw), &doc.Form); err != nil {
				return transcriptDocument{}, fmt.Errorf("invalid form in transcript file: %w", err)
			}
		}
	}
	if !lines.IsArray() {
		return transcriptDocument{}, fmt.Errorf("transcript file must hold a JSON array of lines")
	}

	if err := json.Unmarshal([]byte(lines.Raw), &doc.Transcript); err != nil {
		return transcriptDocument{}, fmt.Errorf("invalid transcript lines: %w", err)
	}
	return doc, nil
}

func transcribe(ctx context.Context, p *podcast.Pipeline, s podcast.Session, stderr io.Writer) (podcast.Session, error) {
	spin := newSpinner(stderr, "Generating transcript", isTerminal(stderr)).start()
	startTime := time.Now()

	next, err := p.Transcribe(ctx, s)
	if err != nil {
		spin.stopWithError()
		return s, wrapStage(podcast.MsgTranscriptFailed, err)
	}

	spin.stopWithSuccess(fmt.Sprintf("Transcript ready (%d lines)", len(next.Transcript)))
	slog.Debug("transcript stage finished",
		"lines", len(next.Transcript),
		"context_chars", len([]rune(next.Context)),
		"took", time.Since(startTime).Round(time.Millisecond))
	return next, nil
}

func synthesize(ctx context.Context, p *podcast.Pipeline, s podcast.Session, stderr io.Writer) (podcast.Session, error) {
	spin := newSpinner(stderr, "Generating audio", isTerminal(stderr)).start()
	startTime := time.Now()

	next, err := p.Synthesize(ctx, s)
	if err != nil {
		spin.stopWithError()
		return s, wrapStage(podcast.MsgAudioFailed, err)
	}

	spin.stopWithSuccess("Audio ready")
	slog.Debug("audio stage finished", "url", next.AudioURL(), "took", time.Since(startTime).Round(time.Millisecond))
	return next, nil
}

// wrapStage prefixes err with the stage message unless the error already
// starts with it, as the backend's generic failure messages do.
func wrapStage(stage string, err error) error {
	if strings.HasPrefix(err.Error(), stage) {
		return err
	}
	return fmt.Errorf("%s: %w", stage, err)
}

// reviewTranscript opens the editor and returns the session with the
// reviewed transcript
func reviewTranscript(editor EditorInterface, title string, s podcast.Session, stderr io.Writer) (podcast.Session, error) {
	if title == "" {
		title = s.Form.PodcastName
	}

	res, err := editor.RunTranscriptEditor(title, s.Transcript, history.SpeakerNames(s.Form))
	if err != nil {
		return s, fmt.Errorf("transcript editor failed: %w", err)
	}
	if !res.Confirmed {
		return s, errEditAborted
	}

	if res.Edited > 0 {
		printSuccess(stderr, fmt.Sprintf("%d line(s) edited", res.Edited))
	}

	next := s
	next.Transcript = res.Transcript
	next.Result = nil
	return next, nil
}

// shareResult copies url through the host. Failures are reported, not fatal.
func shareResult(ctx context.Context, b *bridge.Bridge, url string, stderr io.Writer) {
	if err := b.ShareResult(ctx, url); err != nil {
		printWarning(stderr, fmt.Sprintf("Failed to copy to clipboard: %v", err))
		return
	}
	printSuccess(stderr, "Copied to clipboard")
}

// saveEpisode records a finished run. Failures are reported, not fatal.
func saveEpisode(page pageContent, s podcast.Session, stderr io.Writer) {
	store, err := history.DefaultStore()
	if err != nil {
		printWarning(stderr, fmt.Sprintf("Failed to open history: %v", err))
		return
	}

	ep := &history.Episode{
		Title:      page.title,
		SourceURL:  s.SourceURL,
		Form:       s.Form,
		Transcript: s.Transcript,
		AudioURL:   s.AudioURL(),
	}
	if err := store.Save(ep); err != nil {
		printWarning(stderr, fmt.Sprintf("Failed to save episode: %v", err))
		return
	}
	slog.Debug("episode saved", "id", ep.ID, "dir", store.Dir())
}
