// Package tracker detects records that appeared since the previous successful fetch.
package tracker

import "sync"

// Tracker remembers the identity set of the last fetch.
// The first Diff only primes the set, so nothing is reported on startup.
type Tracker[R any, K comparable] struct {
	key func(R) K

	mu     sync.Mutex
	seen   map[K]struct{}
	primed bool
}

// New creates a tracker identifying records by key.
func New[R any, K comparable](key func(R) K) *Tracker[R, K] {
	return &Tracker[R, K]{key: key, seen: make(map[K]struct{})}
}

// Diff returns the records whose identity was absent from the previous set, in
// input order, then replaces the set with the identities of records.
func (t *Tracker[R, K]) Diff(records []R) []R {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make(map[K]struct{}, len(records))
	var added []R
	for _, r := range records {
		k := t.key(r)
		if _, dup := next[k]; dup {
			continue
		}
		next[k] = struct{}{}
		if _, ok := t.seen[k]; !ok && t.primed {
			added = append(added, r)
		}
	}

	t.seen = next
	t.primed = true
	return added
}

// Reset forgets everything; the next Diff primes again.
func (t *Tracker[R, K]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen = make(map[K]struct{})
	t.primed = false
}
