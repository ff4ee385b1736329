package work

import (
	"context"
	"sync"

	"github.com/aristath/kanbanbar/internal/clock"
)

// CancellationToken owns one scheduled cycle: its pending timer and the context
// the cycle runs under. Tokens are replaced on every reschedule, never reused.
type CancellationToken struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	timer     clock.Timer
	cancelled bool
}

// NewCancellationToken derives a token from parent.
func NewCancellationToken(parent context.Context) *CancellationToken {
	ctx, cancel := context.WithCancel(parent)
	return &CancellationToken{ctx: ctx, cancel: cancel}
}

// Context is cancelled together with the token.
func (t *CancellationToken) Context() context.Context {
	return t.ctx
}

// Done is closed once the token is cancelled.
func (t *CancellationToken) Done() <-chan struct{} {
	return t.ctx.Done()
}

// Cancelled reports whether Cancel was called.
func (t *CancellationToken) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Cancel stops the pending timer and aborts the cycle context.
// Cancelling twice, or after the timer fired, is a no-op.
func (t *CancellationToken) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	timer := t.timer
	t.timer = nil
	t.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	t.cancel()
}

// attach binds the timer to the token. A token cancelled in the meantime stops it at once.
func (t *CancellationToken) attach(timer clock.Timer) {
	t.mu.Lock()
	if !t.cancelled {
		t.timer = timer
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	timer.Stop()
}
