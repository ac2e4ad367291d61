package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/sidebuddy/sidebuddy/internal/bridge"
	"github.com/sidebuddy/sidebuddy/internal/config"
	"github.com/sidebuddy/sidebuddy/internal/pageread"
)

// NewHostCmd creates the host command
func NewHostCmd(deps *Dependencies) *cobra.Command {
	var (
		listenAddr   string
		file         string
		refresh      bool
		allowOrigins []string
	)

	cmd := &cobra.Command{
		Use:   "host [url]",
		Short: "Serve page content to panels over the bridge",
		Long: `Run the page side of the context bridge. Panels connect over websockets
(` + config.DefaultBridgeURL + ` by default), request page content and ask
the host to copy results to this machine's clipboard. Only panels whose
origin is allowed can connect.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := deps.withDefaults()
			stderr := cmd.ErrOrStderr()
			cfg := loadConfig(stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var provider bridge.ContentProvider
			switch {
			case file != "":
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				text, err := pageread.ReadText(f)
				f.Close()
				if err != nil {
					return err
				}
				provider = text

			case len(args) > 0 && refresh:
				p, err := pageread.NewURLProvider(args[0])
				if err != nil {
					return err
				}
				provider = p

			case len(args) > 0:
				page, err := fetchPage(ctx, args[0], stderr)
				if err != nil {
					return err
				}
				provider = page.provider

			case stdinPiped(d.Stdin):
				text, err := pageread.ReadText(d.Stdin)
				if err != nil {
					return err
				}
				provider = text

			default:
				return fmt.Errorf("no page to serve: pass a URL, -f FILE or pipe text on stdin")
			}

			origins := lo.Uniq(lo.Compact(append(append([]string{}, cfg.AllowedOrigins...), allowOrigins...)))
			if len(origins) == 0 {
				return fmt.Errorf("no allowed origins: set allowed_origins in the config or pass --allow-origin")
			}

			server := bridge.NewHostServer(provider, origins, bridge.WithClipboard(d.Clipboard))
			printSuccess(stderr, fmt.Sprintf("Serving page on ws://%s%s (Ctrl+C to stop)", listenAddr, bridge.BridgePath))
			return server.ListenAndServe(ctx, listenAddr)
		},
	}

	cmd.Flags().StringVarP(&listenAddr, "listen", "l", config.DefaultListenAddr, "Address to listen on")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Serve the text of a file")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the URL again on every request")
	cmd.Flags().StringSliceVar(&allowOrigins, "allow-origin", nil, "Additional panel origin to accept (repeatable)")

	return cmd
}
