package domain

// View is what a job hands to the renderer after a successful cycle.
type View struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	// Link is the primary click-through URL, empty when there is none.
	Link string `json:"link,omitempty"`
}

// Renderer displays the latest view of a job.
type Renderer interface {
	Render(job string, view View)
}

// Notifier surfaces a one-shot, human-readable message.
type Notifier interface {
	Notify(message string)
}

// StateStore is the persisted key/value store for the holiday cache and session cookies.
// Get reports false when the key is absent.
type StateStore interface {
	Get(key string, dest any) (bool, error)
	Set(key string, value any) error
}
