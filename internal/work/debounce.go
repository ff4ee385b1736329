package work

import (
	"sync"
	"time"

	"github.com/aristath/kanbanbar/internal/clock"
)

// DefaultDebounce collapses bursts of configuration edits.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer runs only the last of a burst of calls per key.
type Debouncer struct {
	clock clock.Clock
	delay func() time.Duration

	mu      sync.Mutex
	pending map[string]*pendingCall
}

type pendingCall struct {
	timer clock.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer. delay is read on every Trigger; nil means DefaultDebounce.
func NewDebouncer(clk clock.Clock, delay func() time.Duration) *Debouncer {
	if delay == nil {
		delay = func() time.Duration { return DefaultDebounce }
	}
	return &Debouncer{
		clock:   clk,
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Trigger schedules fn for key, cancelling any call still pending for the same key.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var gen uint64
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
		gen = prev.gen + 1
	}

	call := &pendingCall{gen: gen}
	d.pending[key] = call
	call.timer = d.clock.AfterFunc(d.delay(), func() {
		d.mu.Lock()
		current, ok := d.pending[key]
		if !ok || current != call {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		fn()
	})
}

// Pending returns the number of keys waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Cancel drops every pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, call := range d.pending {
		call.timer.Stop()
		delete(d.pending, key)
	}
}
