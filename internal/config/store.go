package config

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// Store holds the current settings snapshot and notifies subscribers of edited sections.
// Snapshots are never mutated after being published.
type Store struct {
	path string
	log  zerolog.Logger

	mu          sync.RWMutex
	current     *Settings
	subscribers []func(section string)
}

// NewStore loads the settings file at path.
func NewStore(path string, log zerolog.Logger) (*Store, error) {
	settings, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		path:    path,
		current: settings,
		log:     log.With().Str("component", "settings").Logger(),
	}, nil
}

// NewStoreWith builds a store around an in-memory snapshot.
func NewStoreWith(settings *Settings, log zerolog.Logger) *Store {
	return &Store{
		current: settings,
		log:     log.With().Str("component", "settings").Logger(),
	}
}

// Current returns the active snapshot.
func (s *Store) Current() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn to be called once per edited section on every reload.
func (s *Store) Subscribe(fn func(section string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Reload re-reads the settings file. On error the previous snapshot stays active.
func (s *Store) Reload() ([]string, error) {
	next, err := LoadSettings(s.path)
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("Settings reload failed, keeping previous settings")
		return nil, err
	}
	return s.swap(next), nil
}

// Replace validates next and makes it the active snapshot.
func (s *Store) Replace(next *Settings) ([]string, error) {
	next.applyDefaults()
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return s.swap(next), nil
}

func (s *Store) swap(next *Settings) []string {
	s.mu.Lock()
	changed := DiffSections(s.current, next)
	s.current = next
	subscribers := append([]func(string){}, s.subscribers...)
	s.mu.Unlock()

	if len(changed) > 0 {
		s.log.Info().Strs("sections", changed).Msg("Settings changed")
	}
	for _, section := range changed {
		for _, fn := range subscribers {
			fn(section)
		}
	}
	return changed
}

// DiffSections returns the names of sections whose values differ.
func DiffSections(prev, next *Settings) []string {
	var changed []string
	pairs := []struct {
		name string
		a, b any
	}{
		{SectionPolling, prev.Polling, next.Polling},
		{SectionStock, prev.Stock, next.Stock},
		{SectionMarket, prev.Market, next.Market},
		{SectionGitLab, prev.GitLab, next.GitLab},
		{SectionZentao, prev.Zentao, next.Zentao},
	}
	for _, p := range pairs {
		if !reflect.DeepEqual(p.a, p.b) {
			changed = append(changed, p.name)
		}
	}
	return changed
}
