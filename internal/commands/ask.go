package commands

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sidebuddy/sidebuddy/internal/chat"
)

// NewAskCmd creates the ask command
func NewAskCmd(deps *Dependencies) *cobra.Command {
	var (
		content     contentFlags
		pageURL     string
		withContext bool
		attachments []string
	)

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Compose a chat message grounded in the page",
		Long: `Build a chat submission from a message, optional attachments and, with
--context, the content of the page. The submission is printed as one JSON
line for the chat backend to consume.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := deps.withDefaults()
			stderr := cmd.ErrOrStderr()
			cfg := loadConfig(stderr)
			ctx := cmd.Context()

			if !cmd.Flags().Changed("context") {
				withContext = cfg.WebpageContext
			}

			var pageArgs []string
			if pageURL != "" {
				pageArgs = []string{pageURL}
			}

			var source chat.PageSource
			if withContext {
				page, err := resolveContent(ctx, content, pageArgs, d, cfg, stderr)
				if err != nil {
					return err
				}
				b, closeBridge, err := openBridge(ctx, cfg, page, d.Clipboard)
				if err != nil {
					return fmt.Errorf("failed to open bridge: %w", err)
				}
				defer closeBridge()
				source = contextSource(page, b)
			}

			composer := chat.NewComposer(source, chat.NewWriterSink(cmd.OutOrStdout()))
			composer.SetWebpageContext(withContext)
			composer.SetText(strings.Join(args, " "))

			for _, path := range attachments {
				f, err := readAttachment(path)
				if err != nil {
					return err
				}
				composer.AddFile(f)
			}

			if _, err := composer.Submit(ctx); err != nil {
				return fmt.Errorf("failed to submit message: %w", err)
			}
			return nil
		},
	}

	content.register(cmd)
	cmd.Flags().StringVar(&pageURL, "url", "", "Page to use as context")
	cmd.Flags().BoolVarP(&withContext, "context", "c", false, "Attach the page content (default from config)")
	cmd.Flags().StringSliceVarP(&attachments, "attach", "a", nil, "File to attach (repeatable)")

	return cmd
}

// readAttachment loads a file as a chat attachment
func readAttachment(path string) (chat.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chat.File{}, fmt.Errorf("failed to read attachment: %w", err)
	}
	return chat.File{
		Name:     filepath.Base(path),
		MimeType: http.DetectContentType(data),
		Data:     data,
	}, nil
}
