package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

// pendingRequest is a registry entry waiting for its reply
type pendingRequest struct {
	action string
	reply  chan models.BridgeMessage
}

// Bridge is the panel side of the exchange. A single dispatcher goroutine
// reads the port and routes replies to pending requests by request ID.
type Bridge struct {
	port      Port
	timeout   time.Duration
	allowed   map[string]struct{}
	anyOrigin bool
	newID     func() string

	mu      sync.Mutex
	pending map[string]*pendingRequest
	order   []string // registration order, for replies without a request ID
	closed  bool

	cancel       context.CancelFunc
	closeOnce    sync.Once
	done         chan struct{}
	dispatchDone chan struct{}
	closeErr     error
}

// Option configures a Bridge
type Option func(*Bridge)

// WithTimeout sets the deadline applied to every request
func WithTimeout(timeout time.Duration) Option {
	return func(b *Bridge) {
		if timeout > 0 {
			b.timeout = timeout
		}
	}
}

// WithAllowedOrigins sets the origins whose messages are trusted
func WithAllowedOrigins(origins ...string) Option {
	return func(b *Bridge) {
		for _, o := range origins {
			if o != "" {
				b.allowed[o] = struct{}{}
			}
		}
	}
}

// WithAnyOrigin disables origin validation
func WithAnyOrigin() Option {
	return func(b *Bridge) {
		b.anyOrigin = true
	}
}

// WithIDGenerator replaces the request ID generator
func WithIDGenerator(gen func() string) Option {
	return func(b *Bridge) {
		b.newID = gen
	}
}

// New creates a Bridge over port and starts its dispatcher.
// At least one allowed origin is required unless WithAnyOrigin is given.
func New(port Port, opts ...Option) (*Bridge, error) {
	if port == nil {
		return nil, fmt.Errorf("bridge port cannot be nil")
	}

	b := &Bridge{
		port:         port,
		timeout:      models.DefaultBridgeTimeoutMs * time.Millisecond,
		allowed:      make(map[string]struct{}),
		newID:        uuid.NewString,
		pending:      make(map[string]*pendingRequest),
		done:         make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(b)
	}

	if !b.anyOrigin && len(b.allowed) == 0 {
		return nil, fmt.Errorf("bridge requires at least one allowed origin")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.dispatch(ctx)

	return b, nil
}

// Timeout returns the deadline applied to every request
func (b *Bridge) Timeout() time.Duration {
	return b.timeout
}

// Pending returns the number of requests waiting for a reply
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Close stops the dispatcher, closes the port and fails pending requests
func (b *Bridge) Close() error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
	b.mu.Unlock()

	var err error
	b.closeOnce.Do(func() {
		b.cancel()
		err = b.port.Close()
		<-b.dispatchDone
	})
	return err
}

// RequestPageContent asks the host for the current page content and waits
// for the reply. It fails with a BridgeTimeoutError when the host does not
// answer within the bridge timeout.
func (b *Bridge) RequestPageContent(ctx context.Context) (string, error) {
	reply, err := b.request(ctx, models.ActionGetPageContent, nil)
	if err != nil {
		return "", err
	}
	return reply.PayloadString(), nil
}

// ShareResult asks the host to copy content to the clipboard and returns once
// the host acknowledges the copy.
func (b *Bridge) ShareResult(ctx context.Context, content string) error {
	reply, err := b.request(ctx, models.ActionCopyToClipboard, models.ClipboardRequest{Content: content})
	if err != nil {
		return err
	}

	var ack models.ClipboardAck
	if err := reply.DecodePayload(&ack); err != nil {
		return apierrors.NewParseError(fmt.Sprintf("invalid clipboard acknowledgment: %v", err), "payload")
	}
	if !ack.OK {
		return fmt.Errorf("host failed to copy to clipboard: %s", ack.Error)
	}
	return nil
}

// ShareResultAsync posts a copy-to-clipboard message without waiting for an
// acknowledgment.
func (b *Bridge) ShareResultAsync(ctx context.Context, content string) error {
	msg, err := models.NewBridgeMessage(models.ActionCopyToClipboard, "", models.ClipboardRequest{Content: content})
	if err != nil {
		return err
	}

	postCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.post(postCtx, msg); err != nil {
		return b.deadlineError(ctx, postCtx, models.ActionCopyToClipboard, err)
	}
	return nil
}

// request registers a pending entry, posts the message and waits for the
// matching reply. The entry is removed when the call returns.
func (b *Bridge) request(ctx context.Context, action string, payload any) (models.BridgeMessage, error) {
	id := b.newID()
	msg, err := models.NewBridgeMessage(action, id, payload)
	if err != nil {
		return models.BridgeMessage{}, fmt.Errorf("failed to build %s message: %w", action, err)
	}

	entry, err := b.register(id, action)
	if err != nil {
		return models.BridgeMessage{}, err
	}
	defer b.unregister(id)

	// the deadline covers the post as well as the wait for the reply
	reqCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.post(reqCtx, msg); err != nil {
		return models.BridgeMessage{}, b.deadlineError(ctx, reqCtx, action, err)
	}

	slog.Debug("bridge request posted", "action", action, "request_id", id)

	select {
	case reply := <-entry.reply:
		return reply, nil
	case <-reqCtx.Done():
		if ctx.Err() != nil {
			return models.BridgeMessage{}, ctx.Err()
		}
		return models.BridgeMessage{}, apierrors.NewBridgeTimeoutError(action, b.timeout)
	case <-b.done:
		return models.BridgeMessage{}, b.failure()
	}
}

// deadlineError reports err as a bridge timeout when the bridge deadline on
// reqCtx expired while the caller's ctx is still live.
func (b *Bridge) deadlineError(ctx, reqCtx context.Context, action string, err error) error {
	if ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return apierrors.NewBridgeTimeoutError(action, b.timeout)
	}
	return err
}

func (b *Bridge) post(ctx context.Context, msg models.BridgeMessage) error {
	if err := b.port.Post(ctx, msg); err != nil {
		if errors.Is(err, apierrors.ErrBridgeClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return apierrors.NewNetworkError("post "+msg.Action, "", err)
	}
	return nil
}

func (b *Bridge) register(id, action string) (*pendingRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, b.failureLocked()
	}

	entry := &pendingRequest{action: action, reply: make(chan models.BridgeMessage, 1)}
	b.pending[id] = entry
	b.order = append(b.order, id)
	return entry, nil
}

func (b *Bridge) unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(id)
}

// removeLocked deletes id from the registry. MUST be called with b.mu held.
func (b *Bridge) removeLocked(id string) {
	if _, ok := b.pending[id]; !ok {
		return
	}
	delete(b.pending, id)
	for i, pendingID := range b.order {
		if pendingID == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *Bridge) failure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureLocked()
}

func (b *Bridge) failureLocked() error {
	if b.closeErr != nil {
		return b.closeErr
	}
	return apierrors.ErrBridgeClosed
}

// dispatch reads the port until it fails or the bridge closes
func (b *Bridge) dispatch(ctx context.Context) {
	defer close(b.dispatchDone)

	for {
		env, err := b.port.Receive(ctx)
		if err != nil {
			b.mu.Lock()
			if !b.closed {
				slog.Warn("bridge port failed", "error", err)
				b.closeErr = apierrors.NewNetworkError("receive", "", err)
				b.closed = true
				close(b.done)
			}
			b.mu.Unlock()
			return
		}
		b.handle(env)
	}
}

// handle routes one inbound envelope to its pending request
func (b *Bridge) handle(env models.Envelope) {
	if !b.originAllowed(env.Origin) {
		slog.Debug("dropping bridge message from untrusted origin", "origin", env.Origin, "action", env.Message.Action)
		return
	}

	msg := env.Message

	b.mu.Lock()
	defer b.mu.Unlock()

	id := msg.RequestID
	if id == "" {
		// untagged replies settle the oldest request with the same action
		for _, pendingID := range b.order {
			if b.pending[pendingID].action == msg.Action {
				id = pendingID
				break
			}
		}
	}

	entry, ok := b.pending[id]
	if !ok || entry.action != msg.Action {
		slog.Debug("ignoring unmatched bridge message", "action", msg.Action, "request_id", msg.RequestID)
		return
	}

	b.removeLocked(id)
	entry.reply <- msg
}

func (b *Bridge) originAllowed(origin string) bool {
	if b.anyOrigin {
		return true
	}
	_, ok := b.allowed[origin]
	return ok
}
