// Package bridge implements the message exchange between the sidebar panel and
// the page that hosts it: page-content requests and clipboard sharing.
package bridge

import (
	"context"
	"sync"

	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

// Port is one end of a message channel between the panel and its host.
// Receive blocks until a message arrives, the context ends, or the port closes.
type Port interface {
	Post(ctx context.Context, msg models.BridgeMessage) error
	Receive(ctx context.Context) (models.Envelope, error)
	Close() error
}

// pipeEnd is one side of an in-memory Pipe
type pipeEnd struct {
	origin    string
	in        chan models.Envelope
	peer      *pipeEnd
	done      chan struct{}
	closeOnce sync.Once
}

// Pipe returns two connected in-memory ports. Messages posted on one end are
// received on the other, stamped with the sender's origin.
func Pipe(panelOrigin, hostOrigin string) (panel Port, host Port) {
	p := &pipeEnd{origin: panelOrigin, in: make(chan models.Envelope, 16), done: make(chan struct{})}
	h := &pipeEnd{origin: hostOrigin, in: make(chan models.Envelope, 16), done: make(chan struct{})}
	p.peer = h
	h.peer = p
	return p, h
}

func (p *pipeEnd) Post(ctx context.Context, msg models.BridgeMessage) error {
	// checked first so a closed pipe never accepts into a free buffer slot
	select {
	case <-p.done:
		return apierrors.ErrBridgeClosed
	case <-p.peer.done:
		return apierrors.ErrBridgeClosed
	default:
	}

	select {
	case p.peer.in <- models.Envelope{Origin: p.origin, Message: msg}:
		return nil
	case <-p.done:
		return apierrors.ErrBridgeClosed
	case <-p.peer.done:
		return apierrors.ErrBridgeClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeEnd) Receive(ctx context.Context) (models.Envelope, error) {
	select {
	case env := <-p.in:
		return env, nil
	case <-p.done:
		return models.Envelope{}, apierrors.ErrBridgeClosed
	case <-p.peer.done:
		return models.Envelope{}, apierrors.ErrBridgeClosed
	case <-ctx.Done():
		return models.Envelope{}, ctx.Err()
	}
}

func (p *pipeEnd) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	return nil
}
