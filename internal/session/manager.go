// Package session owns the authenticated-session lifecycle of a credentialed source:
// cookie reuse across restarts, login on demand, invalidation, and a sticky
// failure flag after the server rejects the credentials.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/domain"
)

// State is the session lifecycle state.
type State int

const (
	StateNoSession State = iota
	StateLoggingIn
	StateAuthenticated
	StateLoginFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateNoSession:
		return "no_session"
	case StateLoggingIn:
		return "logging_in"
	case StateAuthenticated:
		return "authenticated"
	case StateLoginFailed:
		return "login_failed"
	default:
		return "unknown"
	}
}

// Authenticator performs the login handshake and returns the session cookie.
// It returns domain.ErrBadCredentials when the server rejects the account/password.
type Authenticator interface {
	Login(ctx context.Context, baseURL string, creds domain.Credentials) (string, error)
}

// Manager is owned by one source's service and used only from its cycle.
type Manager struct {
	namespace string
	auth      Authenticator
	store     domain.StateStore
	log       zerolog.Logger

	mu          sync.Mutex
	baseURL     string
	creds       domain.Credentials
	cookie      string
	state       State
	loginFailed bool
	configured  bool
}

// NewManager creates a manager persisting cookies under "<namespace>:<account>".
func NewManager(namespace string, auth Authenticator, store domain.StateStore, log zerolog.Logger) *Manager {
	return &Manager{
		namespace: namespace,
		auth:      auth,
		store:     store,
		log:       log.With().Str("component", "session").Str("namespace", namespace).Logger(),
	}
}

// StateKey is where the cookie of the current account is persisted.
func (m *Manager) StateKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateKey()
}

func (m *Manager) stateKey() string {
	return m.namespace + ":" + m.creds.Account
}

// Configure applies freshly loaded configuration. A changed server, account or
// password clears the sticky failure and the cached cookie, giving the new
// configuration one login attempt.
func (m *Manager) Configure(baseURL string, creds domain.Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.configured {
		// First configuration keeps whatever session was persisted for the account
		m.configured = true
		m.baseURL = baseURL
		m.creds = creds
		return
	}
	if creds == m.creds && baseURL == m.baseURL {
		return
	}

	m.clearPersisted()
	m.baseURL = baseURL
	m.creds = creds
	m.cookie = ""
	m.loginFailed = false
	m.state = StateNoSession
	// and whatever the new account had stored
	m.clearPersisted()
	m.log.Debug().Str("account", creds.Account).Str("base_url", baseURL).Msg("Session configuration changed, session reset")
}

// EnsureSession returns a usable cookie: the cached or persisted one without any
// network call, otherwise the result of a fresh login. After a bad-credential
// response it returns domain.ErrLoginFailed until the credentials change.
func (m *Manager) EnsureSession(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.creds.Empty() {
		return "", &domain.ConfigError{Section: m.namespace, Field: "account"}
	}

	if m.cookie != "" {
		return m.cookie, nil
	}

	var persisted string
	found, err := m.store.Get(m.stateKey(), &persisted)
	if err != nil {
		m.log.Warn().Err(err).Msg("Failed to read persisted session")
	}
	if found && persisted != "" {
		m.cookie = persisted
		m.state = StateAuthenticated
		return m.cookie, nil
	}

	if m.loginFailed {
		m.state = StateLoginFailed
		return "", domain.ErrLoginFailed
	}

	m.state = StateLoggingIn
	cookie, err := m.auth.Login(ctx, m.baseURL, m.creds)
	switch {
	case errors.Is(err, domain.ErrBadCredentials):
		m.loginFailed = true
		m.state = StateLoginFailed
		m.persist("")
		m.log.Error().Str("account", m.creds.Account).Msg("Login rejected, not retrying until credentials change")
		return "", domain.ErrLoginFailed
	case err != nil:
		m.state = StateNoSession
		return "", fmt.Errorf("login: %w", err)
	}

	m.cookie = cookie
	m.state = StateAuthenticated
	m.persist(cookie)
	m.log.Info().Str("account", m.creds.Account).Msg("Logged in")
	return cookie, nil
}

// Invalidate drops the cookie after the server rejected it. The next
// EnsureSession logs in again.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cookie = ""
	m.state = StateNoSession
	m.clearPersisted()
	m.log.Info().Msg("Session invalidated")
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LoginFailed reports whether the sticky failure flag is set.
func (m *Manager) LoginFailed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginFailed
}

func (m *Manager) persist(cookie string) {
	if err := m.store.Set(m.stateKey(), cookie); err != nil {
		m.log.Warn().Err(err).Msg("Failed to persist session")
	}
}

func (m *Manager) clearPersisted() {
	if m.creds.Account == "" {
		return
	}
	m.persist("")
}
