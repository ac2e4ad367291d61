package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

// BridgePath is the websocket endpoint served by HostServer
const BridgePath = "/bridge"

const writeWait = 10 * time.Second

// wsPort is a Port over a websocket connection. remoteOrigin is the origin
// stamped on every received envelope.
type wsPort struct {
	conn         *websocket.Conn
	remoteOrigin string

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func newWSPort(conn *websocket.Conn, remoteOrigin string) *wsPort {
	return &wsPort{
		conn:         conn,
		remoteOrigin: remoteOrigin,
		closed:       make(chan struct{}),
	}
}

func (p *wsPort) Post(ctx context.Context, msg models.BridgeMessage) error {
	select {
	case <-p.closed:
		return apierrors.ErrBridgeClosed
	default:
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := p.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return p.conn.WriteJSON(msg)
}

func (p *wsPort) Receive(ctx context.Context) (models.Envelope, error) {
	var msg models.BridgeMessage
	if err := p.conn.ReadJSON(&msg); err != nil {
		select {
		case <-p.closed:
			return models.Envelope{}, apierrors.ErrBridgeClosed
		default:
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, net.ErrClosed) {
			return models.Envelope{}, apierrors.ErrBridgeClosed
		}
		if ctx.Err() != nil {
			return models.Envelope{}, ctx.Err()
		}
		return models.Envelope{}, err
	}
	return models.Envelope{Origin: p.remoteOrigin, Message: msg}, nil
}

func (p *wsPort) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.closed)
		p.writeMu.Lock()
		_ = p.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		p.writeMu.Unlock()
		err = p.conn.Close()
	})
	return err
}

// OriginOf returns the origin (scheme://host) that a panel should trust for a
// host reached at rawURL. ws and wss schemes map to http and https.
func OriginOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid host URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid host URL %q: missing host", rawURL)
	}

	scheme := u.Scheme
	switch scheme {
	case "ws":
		scheme = "http"
	case "wss":
		scheme = "https"
	}
	return scheme + "://" + u.Host, nil
}

// DialHost connects the panel to a HostServer at rawURL, announcing
// panelOrigin in the Origin header.
func DialHost(ctx context.Context, rawURL, panelOrigin string) (Port, error) {
	hostOrigin, err := OriginOf(rawURL)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Origin", panelOrigin)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, rawURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, apierrors.NewNetworkError("dial host", rawURL, err)
	}

	return newWSPort(conn, hostOrigin), nil
}

// HostServer serves the host side of the bridge over websockets. Connections
// whose Origin header is not allowed are refused during the upgrade.
type HostServer struct {
	content  ContentProvider
	hostOpts []HostOption
	allowed  map[string]struct{}
	upgrader websocket.Upgrader
}

// NewHostServer creates a HostServer answering with content
func NewHostServer(content ContentProvider, allowedOrigins []string, opts ...HostOption) *HostServer {
	s := &HostServer{
		content:  content,
		hostOpts: opts,
		allowed:  make(map[string]struct{}),
	}
	for _, o := range allowedOrigins {
		if o != "" {
			s.allowed[o] = struct{}{}
		}
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *HostServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	_, ok := s.allowed[origin]
	if !ok {
		slog.Warn("refusing bridge connection from untrusted origin", "origin", origin, "remote", r.RemoteAddr)
	}
	return ok
}

// Handler returns the HTTP routes of the host server
func (s *HostServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get(BridgePath, s.serveBridge)
	return r
}

func (s *HostServer) serveBridge(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		slog.Debug("bridge upgrade failed", "error", err)
		return
	}

	origin := r.Header.Get("Origin")
	slog.Info("panel connected", "origin", origin, "remote", r.RemoteAddr)

	port := newWSPort(conn, origin)
	defer port.Close()

	host := NewHost(port, s.content, s.hostOpts...)
	if err := host.Serve(r.Context()); err != nil {
		slog.Warn("bridge connection ended", "origin", origin, "error", err)
		return
	}
	slog.Info("panel disconnected", "origin", origin)
}

// ListenAndServe runs the host server on addr until ctx ends
func (s *HostServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("bridge host listening", "addr", addr, "path", BridgePath)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("host server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		slog.Info("stopping bridge host")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop host server: %w", err)
			}
		}
		return nil
	}
}
