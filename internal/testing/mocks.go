// Package testing provides testing utilities and helpers for the kanbanbar project.
package testing

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/aristath/kanbanbar/internal/domain"
)

// MemoryStore is an in-memory domain.StateStore.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]any
	err    error
	sets   int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]any)}
}

// SetError makes every subsequent call fail with err.
func (s *MemoryStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Get copies the stored value into dest, which must be a pointer of the same type.
func (s *MemoryStore) Get(key string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	v, ok := s.values[key]
	if !ok {
		return false, nil
	}
	target := reflect.ValueOf(dest)
	if target.Kind() != reflect.Pointer || target.Elem().Type() != reflect.TypeOf(v) {
		return false, fmt.Errorf("memory store: cannot decode %T into %T", v, dest)
	}
	target.Elem().Set(reflect.ValueOf(v))
	return true, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.values[key] = value
	s.sets++
	return nil
}

// Value returns the raw stored value.
func (s *MemoryStore) Value(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// SetCount returns how many times Set succeeded.
func (s *MemoryStore) SetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

// RecordingRenderer captures every Render call.
type RecordingRenderer struct {
	mu    sync.Mutex
	views map[string][]domain.View
}

// NewRecordingRenderer creates an empty renderer.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{views: make(map[string][]domain.View)}
}

// Render records the view.
func (r *RecordingRenderer) Render(job string, view domain.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[job] = append(r.views[job], view)
}

// Views returns every view rendered for job.
func (r *RecordingRenderer) Views(job string) []domain.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.View(nil), r.views[job]...)
}

// Last returns the most recent view for job.
func (r *RecordingRenderer) Last(job string) (domain.View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := r.views[job]
	if len(views) == 0 {
		return domain.View{}, false
	}
	return views[len(views)-1], true
}

// RecordingNotifier captures every notification.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

// Notify records the message.
func (n *RecordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

// Messages returns every recorded message.
func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}
