// Package auth owns the admin session: the token and user that say whether this client is
// authenticated, and as whom. The Manager is the only writer of the session and of its
// persisted copy.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
)

// ErrNotAuthenticated is returned when an operation needs a signed-in user
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'snackadmin login' first")

// MsgLoginFailed is shown when a failed login carries no server message
const MsgLoginFailed = "Login failed"

// State is the session lifecycle state
type State int

const (
	StateBootstrapping State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session is a read-only snapshot of the authentication state
type Session struct {
	Token   string
	User    *client.User
	Loading bool
}

// IsAuthenticated reports whether a confirmed user is present
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

// IsAdmin reports whether the user has the admin role
func (s Session) IsAdmin() bool {
	return s.User != nil && s.User.IsAdmin()
}

// State derives the lifecycle state
func (s Session) State() State {
	switch {
	case s.Loading:
		return StateBootstrapping
	case s.IsAuthenticated():
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// API is the part of the auth service the Manager talks to
type API interface {
	Login(ctx context.Context, creds client.Credentials) (*client.LoginResponse, error)
	Me(ctx context.Context) (*client.User, error)
	Logout(ctx context.Context) error
}

// LoginResult is the outcome of Login. Failures are reported here, never as a Go error.
type LoginResult struct {
	Success bool
	User    *client.User
	Message string // user-visible reason on failure
	Err     error
}

// Manager holds the session. Create one per application and pass it to every consumer.
type Manager struct {
	store    Store
	api      API
	notifier notify.Notifier
	logger   zerolog.Logger

	mu      sync.RWMutex
	session Session

	bootstrapOnce sync.Once
	ready         chan struct{}
}

// NewManager creates a manager in the bootstrapping state
func NewManager(store Store, api API, notifier notify.Notifier, logger zerolog.Logger) *Manager {
	if notifier == nil {
		notifier = &notify.Recorder{}
	}
	return &Manager{
		store:    store,
		api:      api,
		notifier: notifier,
		logger:   logger,
		session:  Session{Loading: true},
		ready:    make(chan struct{}),
	}
}

// SetAPI wires the auth service. The HTTP client reads tokens from the Manager, so the two are
// built in sequence and connected afterwards.
func (m *Manager) SetAPI(api API) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.api = api
}

// Snapshot returns a copy of the current session
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Token returns the bearer token for outgoing requests
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Token
}

// Ready is closed once the bootstrap check has resolved
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// User returns the signed-in user or ErrNotAuthenticated
func (m *Manager) User() (*client.User, error) {
	s := m.Snapshot()
	if !s.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.User, nil
}

// Bootstrap checks whether the persisted token still represents a valid session. It runs at
// most once per Manager; later calls wait for the first one to finish.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.bootstrapOnce.Do(func() {
		defer close(m.ready)
		m.bootstrap(ctx)
	})
	<-m.ready
}

func (m *Manager) bootstrap(ctx context.Context) {
	token, err := m.store.Get(KeyToken)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn().Err(err).Msg("Failed to read persisted session")
		}
		m.finish("")
		return
	}
	if token == "" {
		m.finish("")
		return
	}

	// The check request needs the token, but nothing is authenticated until the API confirms it
	m.mu.Lock()
	m.session.Token = token
	api := m.api
	m.mu.Unlock()

	user, err := api.Me(ctx)
	switch {
	case err == nil && user != nil:
		m.mu.Lock()
		defer m.mu.Unlock()
		m.session.Loading = false
		if m.session.Token != token || m.session.User != nil {
			// Invalidated or replaced by a login while the check was in flight
			return
		}
		if err := m.persistUser(user); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to persist user")
		}
		m.session.User = user
		m.logger.Debug().Str("user_id", user.ID).Msg("Session restored")

	case err == nil || client.IsKind(err, client.KindAuth):
		// Rejected or empty answer: same outcome as Logout
		m.logger.Info().Msg("Persisted session is no longer valid")
		m.mu.Lock()
		if m.session.Token == token && m.session.User == nil {
			m.clear()
		}
		m.session.Loading = false
		m.mu.Unlock()

	default:
		// Network or server trouble: keep the token for the next run but do not trust it now
		m.logger.Warn().Err(err).Msg("Could not verify persisted session")
		m.finish(token)
	}
}

// finish ends bootstrapping unauthenticated, dropping the in-memory token if it is still the
// one being checked
func (m *Manager) finish(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.User == nil && m.session.Token == token {
		m.session.Token = ""
	}
	m.session.Loading = false
}

// Login sends credentials to the API and, on success, persists and adopts the session.
// On failure the session is left untouched and the reason is shown unless the HTTP layer
// already showed it.
func (m *Manager) Login(ctx context.Context, creds client.Credentials) LoginResult {
	m.mu.RLock()
	api := m.api
	m.mu.RUnlock()

	resp, err := api.Login(ctx, creds)
	if err != nil {
		return m.loginFailed(err)
	}
	if resp == nil || resp.Token == "" || resp.User == nil {
		return m.loginFailed(errors.New("login response is missing token or user"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persist(resp.Token, resp.User); err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist session")
		msg := "Could not save the session"
		notify.Error(m.notifier, msg)
		return LoginResult{Message: msg, Err: err}
	}

	m.session = Session{Token: resp.Token, User: resp.User, Loading: m.session.Loading}
	m.logger.Info().Str("user_id", resp.User.ID).Str("role", resp.User.Role).Msg("Logged in")

	return LoginResult{Success: true, User: resp.User}
}

func (m *Manager) loginFailed(err error) LoginResult {
	msg := MsgLoginFailed
	apiErr, ok := client.AsAPIError(err)
	if ok {
		if apiErr.Message != "" {
			msg = apiErr.Message
		}
		if apiErr.Notified() {
			return LoginResult{Message: apiErr.UserMessage(), Err: err}
		}
	}

	m.logger.Debug().Err(err).Msg("Login failed")
	notify.Error(m.notifier, msg)
	return LoginResult{Message: msg, Err: err}
}

// Logout tells the API, best effort, then clears the session and its persisted copy no matter
// what the API answered
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	api := m.api
	token := m.session.Token
	m.mu.RUnlock()

	if token != "" && api != nil {
		if err := api.Logout(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("Server logout failed")
		}
	}

	m.Invalidate()
}

// Invalidate clears the session and its persisted copy without contacting the API. It handles
// the session-invalidated event.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

// InvalidateToken clears the session only while it still holds token. A rejection of a token
// that was replaced by a newer login is ignored. An empty token always clears.
func (m *Manager) InvalidateToken(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token != "" && token != m.session.Token {
		return false
	}
	m.clear()
	return true
}

func (m *Manager) clear() {
	if err := errors.Join(m.store.Delete(KeyToken), m.store.Delete(KeyUser)); err != nil {
		m.logger.Error().Err(err).Msg("Failed to clear persisted session")
	}
	m.session = Session{Loading: m.session.Loading}
}

// persist writes both keys. If the second write fails the first one is rolled back so storage
// never holds a token without a user.
func (m *Manager) persist(token string, user *client.User) error {
	if err := m.store.Set(KeyToken, token); err != nil {
		return err
	}
	if err := m.persistUser(user); err != nil {
		if rbErr := m.store.Delete(KeyToken); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back token: %w", rbErr))
		}
		return err
	}
	return nil
}

func (m *Manager) persistUser(user *client.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return m.store.Set(KeyUser, string(data))
}

// PersistedUser reads the user saved by the last login, without contacting the API
func (m *Manager) PersistedUser() (*client.User, error) {
	data, err := m.store.Get(KeyUser)
	if err != nil {
		return nil, err
	}
	var u client.User
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return nil, fmt.Errorf("failed to parse persisted user: %w", err)
	}
	return &u, nil
}
