package bridge

import (
	"context"
	"errors"
	"log/slog"

	"github.com/atotto/clipboard"

	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

// ContentProvider supplies the content of the page hosting the panel
type ContentProvider interface {
	PageContent(ctx context.Context) (string, error)
}

// ContentFunc adapts a function to ContentProvider
type ContentFunc func(ctx context.Context) (string, error)

// PageContent implements ContentProvider
func (f ContentFunc) PageContent(ctx context.Context) (string, error) {
	return f(ctx)
}

// Clipboard writes text to a clipboard
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the operating system clipboard
type SystemClipboard struct{}

// WriteAll implements Clipboard
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Host is the page side of the exchange. It answers page-content requests
// and performs clipboard copies on behalf of the panel.
type Host struct {
	port      Port
	content   ContentProvider
	clipboard Clipboard
}

// HostOption configures a Host
type HostOption func(*Host)

// WithClipboard replaces the clipboard used for copy-to-clipboard requests
func WithClipboard(c Clipboard) HostOption {
	return func(h *Host) {
		h.clipboard = c
	}
}

// NewHost creates a Host serving content over port
func NewHost(port Port, content ContentProvider, opts ...HostOption) *Host {
	h := &Host{
		port:      port,
		content:   content,
		clipboard: SystemClipboard{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve handles messages until the context ends or the port closes.
// A closed port is a normal shutdown and returns nil.
func (h *Host) Serve(ctx context.Context) error {
	for {
		env, err := h.port.Receive(ctx)
		if err != nil {
			if errors.Is(err, apierrors.ErrBridgeClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := h.handle(ctx, env); err != nil {
			slog.Warn("host failed to reply", "action", env.Message.Action, "error", err)
		}
	}
}

func (h *Host) handle(ctx context.Context, env models.Envelope) error {
	msg := env.Message

	switch msg.Action {
	case models.ActionGetPageContent:
		// content errors still get a reply so the panel fails fast on empty content
		text := ""
		if h.content != nil {
			var err error
			text, err = h.content.PageContent(ctx)
			if err != nil {
				slog.Warn("page content unavailable", "error", err)
				text = ""
			}
		}
		reply, err := models.NewBridgeMessage(models.ActionGetPageContent, msg.RequestID, text)
		if err != nil {
			return err
		}
		return h.port.Post(ctx, reply)

	case models.ActionCopyToClipboard:
		ack := models.ClipboardAck{OK: true}
		var req models.ClipboardRequest
		if err := msg.DecodePayload(&req); err != nil {
			ack = models.ClipboardAck{Error: "invalid clipboard payload"}
		} else if err := h.clipboard.WriteAll(req.Content); err != nil {
			ack = models.ClipboardAck{Error: err.Error()}
		}
		if !ack.OK {
			slog.Warn("clipboard copy failed", "error", ack.Error)
		}

		// fire-and-forget senders get no acknowledgment
		if msg.RequestID == "" {
			return nil
		}
		reply, err := models.NewBridgeMessage(models.ActionCopyToClipboard, msg.RequestID, ack)
		if err != nil {
			return err
		}
		return h.port.Post(ctx, reply)

	default:
		slog.Debug("host ignoring unknown action", "action", msg.Action, "origin", env.Origin)
		return nil
	}
}
