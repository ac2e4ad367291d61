package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidebuddy/sidebuddy/internal/bridge"
	"github.com/sidebuddy/sidebuddy/internal/config"
	"github.com/sidebuddy/sidebuddy/internal/pageread"
	"github.com/sidebuddy/sidebuddy/internal/podcast"
)

// localHostOrigin is the origin the in-process host stamps on its replies
const localHostOrigin = "sidebuddy://local-host"

var errNoContent = errors.New("no content: pass a URL, -f FILE, pipe text on stdin, or use --bridge or --sample")

// contentFlags selects where page content comes from
type contentFlags struct {
	file      string
	sample    bool
	useBridge bool
}

func (f *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read page content from file")
	cmd.Flags().BoolVar(&f.sample, "sample", false, "Use the built-in sample text instead of page content")
	cmd.Flags().BoolVar(&f.useBridge, "bridge", false, "Request page content from a running 'sidebuddy host'")
}

// pageContent is the resolved input of a pipeline run
type pageContent struct {
	provider  bridge.ContentProvider
	sourceURL string
	title     string
	sample    bool
	remote    bool
}

// resolveContent picks the content source in order: --sample, --bridge,
// --file, URL argument, stdin. With none given, the sample text is used when
// webpage context is off.
func resolveContent(ctx context.Context, flags contentFlags, args []string, deps *Dependencies, cfg config.Config, stderr io.Writer) (pageContent, error) {
	switch {
	case flags.sample:
		return pageContent{sample: true}, nil

	case flags.useBridge:
		return pageContent{remote: true}, nil

	case flags.file != "":
		f, err := os.Open(flags.file)
		if err != nil {
			return pageContent{}, fmt.Errorf("failed to read file: %w", err)
		}
		defer f.Close()
		text, err := pageread.ReadText(f)
		if err != nil {
			return pageContent{}, err
		}
		return pageContent{provider: text}, nil

	case len(args) > 0:
		return fetchPage(ctx, args[0], stderr)

	case stdinPiped(deps.Stdin):
		text, err := pageread.ReadText(deps.Stdin)
		if err != nil {
			return pageContent{}, err
		}
		return pageContent{provider: text}, nil

	case !cfg.WebpageContext:
		return pageContent{sample: true}, nil
	}

	return pageContent{}, errNoContent
}

// fetchPage reads a URL once so later bridge requests are answered from
// memory within the bridge timeout
func fetchPage(ctx context.Context, rawURL string, stderr io.Writer) (pageContent, error) {
	provider, err := pageread.NewURLProvider(rawURL)
	if err != nil {
		return pageContent{}, err
	}

	spin := newSpinner(stderr, "Reading page", isTerminal(stderr)).start()
	page, err := provider.Fetch(ctx)
	if err != nil {
		spin.stopWithError()
		return pageContent{}, fmt.Errorf("failed to read page: %w", err)
	}
	label := page.Title
	if label == "" {
		label = rawURL
	}
	spin.stopWithSuccess(fmt.Sprintf("Read %q", truncate(label, 60)))

	return pageContent{
		provider:  pageread.TextProvider(page.Text),
		sourceURL: rawURL,
		title:     page.Title,
	}, nil
}

// openBridge connects a panel-side bridge. A remote host is dialed over
// websockets; otherwise an in-process host serves content over a pipe.
// The returned function closes everything.
func openBridge(ctx context.Context, cfg config.Config, content pageContent, clip bridge.Clipboard) (*bridge.Bridge, func(), error) {
	if content.remote {
		return dialBridge(ctx, cfg)
	}

	provider := content.provider
	if provider == nil {
		provider = pageread.TextProvider("")
	}

	panelPort, hostPort := bridge.Pipe(cfg.PanelOrigin, localHostOrigin)
	host := bridge.NewHost(hostPort, provider, bridge.WithClipboard(clip))

	hostCtx, cancel := context.WithCancel(context.Background())
	hostDone := make(chan struct{})
	go func() {
		defer close(hostDone)
		if err := host.Serve(hostCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Debug("local host stopped", "error", err)
		}
	}()

	b, err := bridge.New(panelPort,
		bridge.WithTimeout(cfg.BridgeTimeout()),
		bridge.WithAllowedOrigins(localHostOrigin),
	)
	if err != nil {
		cancel()
		_ = hostPort.Close()
		return nil, nil, err
	}

	closeAll := func() {
		_ = b.Close()
		cancel()
		_ = hostPort.Close()
		<-hostDone
	}
	return b, closeAll, nil
}

func dialBridge(ctx context.Context, cfg config.Config) (*bridge.Bridge, func(), error) {
	hostOrigin, err := bridge.OriginOf(cfg.BridgeURL)
	if err != nil {
		return nil, nil, err
	}

	port, err := bridge.DialHost(ctx, cfg.BridgeURL, cfg.PanelOrigin)
	if err != nil {
		return nil, nil, err
	}

	b, err := bridge.New(port,
		bridge.WithTimeout(cfg.BridgeTimeout()),
		bridge.WithAllowedOrigins(hostOrigin),
	)
	if err != nil {
		_ = port.Close()
		return nil, nil, err
	}

	slog.Debug("connected to host", "url", cfg.BridgeURL, "origin", hostOrigin)
	return b, func() { _ = b.Close() }, nil
}

// contextSource returns what the transcript stage reads from
func contextSource(content pageContent, b *bridge.Bridge) podcast.ContextSource {
	if content.sample {
		return podcast.SampleSource
	}
	return b
}
