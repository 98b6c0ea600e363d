// Package session tracks the shopper's bearer token and notifies listeners
// when it changes.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"shopsync/internal/guest"
)

// TokenKey is the slot key holding the bearer token.
const TokenKey = guest.KeyPrefix + "token"

// Session is an immutable view of the authentication state.
type Session struct {
	Token string
}

// LoggedIn reports whether the session carries a bearer token.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// IsLogin reports whether prev → next is an unauthenticated → authenticated
// transition. A token change while authenticated is a refresh, not a login.
func IsLogin(prev, next Session) bool {
	return !prev.LoggedIn() && next.LoggedIn()
}

// IsLogout reports whether prev → next ends an authenticated session.
func IsLogout(prev, next Session) bool {
	return prev.LoggedIn() && !next.LoggedIn()
}

// TokenStore persists the bearer token in a slot.
type TokenStore struct {
	slot guest.Slot
}

// NewTokenStore creates a token store on slot.
func NewTokenStore(slot guest.Slot) *TokenStore {
	return &TokenStore{slot: slot}
}

// Load returns the stored token, or "" if none is stored.
func (t *TokenStore) Load(ctx context.Context) (string, error) {
	data, found, err := t.slot.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !found {
		return "", nil
	}
	return strings.TrimSpace(string(data)), nil
}

// Save stores token; an empty token deletes it.
func (t *TokenStore) Save(ctx context.Context, token string) error {
	if token == "" {
		if err := t.slot.Delete(ctx, TokenKey); err != nil {
			return fmt.Errorf("delete token: %w", err)
		}
		return nil
	}
	if err := t.slot.Set(ctx, TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Listener is notified after every session change.
type Listener interface {
	SetSession(ctx context.Context, next Session) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, next Session) error

func (f ListenerFunc) SetSession(ctx context.Context, next Session) error {
	return f(ctx, next)
}

// Manager owns the current session and fans changes out to listeners.
type Manager struct {
	mu        sync.Mutex
	current   Session
	tokens    *TokenStore
	listeners []Listener
	logger    *slog.Logger
}

// NewManager creates a manager. The session starts unauthenticated until
// Restore or Login is called.
func NewManager(tokens *TokenStore, logger *slog.Logger, listeners ...Listener) *Manager {
	return &Manager{
		tokens:    tokens,
		listeners: listeners,
		logger:    logger.With("component", "session"),
	}
}

// Current returns the current session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Restore derives the session from the stored token. Listeners receive it as
// their initial session, so no reconciliation runs on startup.
func (m *Manager) Restore(ctx context.Context) (Session, error) {
	token, err := m.tokens.Load(ctx)
	if err != nil {
		m.logger.Warn("stored token unreadable, starting as guest", "error", err)
		token = ""
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Session{Token: token}
	return m.current, m.notify(ctx, m.current)
}

// Login persists token and notifies listeners.
func (m *Manager) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("login: token is required")
	}
	return m.transition(ctx, Session{Token: token})
}

// Logout forgets the token and notifies listeners.
func (m *Manager) Logout(ctx context.Context) error {
	return m.transition(ctx, Session{})
}

func (m *Manager) transition(ctx context.Context, next Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.tokens.Save(ctx, next.Token); err != nil {
		return err
	}

	prev := m.current
	m.current = next
	m.logger.Info("session changed",
		"logged_in", next.LoggedIn(),
		"login", IsLogin(prev, next),
		"logout", IsLogout(prev, next),
	)
	return m.notify(ctx, next)
}

// notify runs every listener concurrently and returns the first error.
// One listener failing does not cancel the others.
// Callers hold m.mu, so notifications never interleave.
func (m *Manager) notify(ctx context.Context, next Session) error {
	var g errgroup.Group
	for _, l := range m.listeners {
		g.Go(func() error {
			return l.SetSession(ctx, next)
		})
	}
	return g.Wait()
}
