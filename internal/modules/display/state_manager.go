// Package display receives render and notify calls from the poll jobs and fans
// them out to HTTP clients, WebSocket streams and the terminal bar.
package display

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/domain"
)

// MaxNotifications bounds the notification history.
const MaxNotifications = 50

const subscriberBuffer = 32

// EventType distinguishes stream events.
type EventType string

const (
	EventRender EventType = "render"
	EventNotify EventType = "notify"
)

// Item is the latest view of one job.
type Item struct {
	Job       string    `json:"job"`
	Text      string    `json:"text"`
	Tooltip   string    `json:"tooltip"`
	Link      string    `json:"link,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Notification is one surfaced message.
type Notification struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Event is pushed to subscribers on every render or notify.
type Event struct {
	Type         EventType     `json:"type"`
	Item         *Item         `json:"item,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// StateManager keeps the current bar items and recent notifications.
// It implements domain.Renderer and domain.Notifier.
type StateManager struct {
	log   zerolog.Logger
	order []string
	now   func() time.Time

	mu            sync.RWMutex
	items         map[string]Item
	notifications []Notification
	subscribers   map[int]chan Event
	nextID        int
}

// NewStateManager creates a state manager listing items in the given job order.
// Jobs not in order are listed after, by name.
func NewStateManager(order []string, log zerolog.Logger) *StateManager {
	return &StateManager{
		log:         log.With().Str("component", "display_state_manager").Logger(),
		order:       append([]string(nil), order...),
		now:         time.Now,
		items:       make(map[string]Item),
		subscribers: make(map[int]chan Event),
	}
}

// Render replaces the job's item.
func (sm *StateManager) Render(job string, view domain.View) {
	item := Item{
		Job:       job,
		Text:      view.Text,
		Tooltip:   view.Tooltip,
		Link:      view.Link,
		UpdatedAt: sm.now(),
	}

	sm.mu.Lock()
	old, existed := sm.items[job]
	sm.items[job] = item
	sm.mu.Unlock()

	if !existed || old.Text != item.Text {
		sm.log.Debug().
			Str("job", job).
			Str("old_text", old.Text).
			Str("new_text", item.Text).
			Msg("Display text updated")
	}
	sm.publish(Event{Type: EventRender, Item: &item})
}

// Notify records a message and pushes it to subscribers.
func (sm *StateManager) Notify(message string) {
	n := Notification{Message: message, At: sm.now()}

	sm.mu.Lock()
	sm.notifications = append(sm.notifications, n)
	if len(sm.notifications) > MaxNotifications {
		sm.notifications = sm.notifications[len(sm.notifications)-MaxNotifications:]
	}
	sm.mu.Unlock()

	sm.log.Info().Str("message", message).Msg("Notification")
	sm.publish(Event{Type: EventNotify, Notification: &n})
}

// Item returns the latest item of job.
func (sm *StateManager) Item(job string) (Item, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	item, ok := sm.items[job]
	return item, ok
}

// Items returns every rendered item in bar order.
func (sm *StateManager) Items() []Item {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	rank := make(map[string]int, len(sm.order))
	for i, job := range sm.order {
		rank[job] = i
	}

	items := make([]Item, 0, len(sm.items))
	for _, item := range sm.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		ri, iKnown := rank[items[i].Job]
		rj, jKnown := rank[items[j].Job]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return items[i].Job < items[j].Job
		}
	})
	return items
}

// Notifications returns the recent notifications, oldest first.
func (sm *StateManager) Notifications() []Notification {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return append([]Notification(nil), sm.notifications...)
}

// Subscribe returns a channel of events and a function that ends the subscription.
// Events are dropped for subscribers that fall behind.
func (sm *StateManager) Subscribe() (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	id := sm.nextID
	sm.nextID++
	ch := make(chan Event, subscriberBuffer)
	sm.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, id)
			close(ch)
		})
	}
}

func (sm *StateManager) publish(ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for id, ch := range sm.subscribers {
		select {
		case ch <- ev:
		default:
			sm.log.Warn().Int("subscriber", id).Str("type", string(ev.Type)).Msg("Subscriber full, dropping event")
		}
	}
}
