package html2png

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// errPoolClosed is returned by Acquire once the pool has been closed.
var errPoolClosed = errors.New("context pool closed")

// contextPool hands out pages of one Session, one at a time.
// It holds a single slot: a second Acquire blocks until the first page is
// released, so no two pages are ever open at once on the session.
type contextPool struct {
	session Session
	sem     chan struct{}
	mu      sync.Mutex
	closed  bool
}

// newContextPool wraps session. The pool owns it from now on: Close tears
// it down.
func newContextPool(session Session) *contextPool {
	p := &contextPool{
		session: session,
		sem:     make(chan struct{}, 1),
	}
	p.sem <- struct{}{}
	return p
}

// Acquire waits for the slot and opens a fresh page in it.
// Cancellation returns ctx.Err() unwrapped so callers can tell it apart
// from a session failure.
func (p *contextPool) Acquire(ctx context.Context) (Page, error) {
	select {
	case <-p.sem:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		p.sem <- struct{}{}
		return nil, fmt.Errorf("%w: %v", ErrContextAcquisition, errPoolClosed)
	}

	page, err := p.session.NewPage(ctx)
	if err != nil {
		p.sem <- struct{}{}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrContextAcquisition, err)
	}
	return page, nil
}

// Release closes page and frees the slot, even if closing fails.
func (p *contextPool) Release(page Page) error {
	defer func() { p.sem <- struct{}{} }()
	if page == nil {
		return nil
	}
	return page.Close()
}

// Close tears the session down. Later calls are no-ops.
func (p *contextPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	return p.session.Close()
}
