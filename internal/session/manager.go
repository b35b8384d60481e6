package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/interfaces"
	"github.com/bobmcallan/openvault-portal/internal/models"
)

const (
	// DefaultTokenKey is the storage key the token is persisted under.
	DefaultTokenKey = "auth_token"
	// LoginRoute is the unauthenticated entry point.
	LoginRoute = "/login"
)

// Navigator moves the user agent to another route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the wall clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithTokenKey overrides the storage key for the token.
func WithTokenKey(key string) Option {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

type subscriber struct {
	id uint64
	fn func(*Session)
}

// Manager is the single source of truth for the current session.
//
// Subscribers receive the current value when they subscribe and then every
// transition in order. Callbacks run synchronously on the goroutine that caused
// the transition and must not call Authenticate, Logout, IsAuthenticated or Subscribe.
type Manager struct {
	store  interfaces.KeyValueStorage
	logger *common.Logger
	key    string
	now    func() time.Time

	// emitMu serialises transitions and their delivery.
	emitMu sync.Mutex

	mu      sync.Mutex
	current *Session
	subs    []subscriber
	nextID  uint64
}

// NewManager creates a Manager and reconstructs the session from any token
// already in store. A missing, malformed or expired token starts with no session.
func NewManager(store interfaces.KeyValueStorage, logger *common.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logger,
		key:    DefaultTokenKey,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if token, ok := m.CurrentToken(context.Background()); ok {
		s, err := FromToken(token, m.now())
		if err != nil {
			m.logger.Debug().Str("reason", err.Error()).Msg("stored token not usable, starting without session")
		} else {
			m.current = s
			m.logger.Info().Int64("user_id", s.UserID).Msg("session restored from storage")
		}
	}

	return m
}

// TokenKey returns the storage key the token lives under.
func (m *Manager) TokenKey() string {
	return m.key
}

// Authenticate persists the token from resp and publishes the session derived
// from it. Identity comes from the token payload, not the response fields. A
// token that does not decode is still stored but publishes no session.
func (m *Manager) Authenticate(ctx context.Context, resp models.AuthResponse) error {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	if err := m.store.Set(ctx, m.key, resp.Token); err != nil {
		m.logger.Error().Str("error", err.Error()).Msg("failed to persist auth token")
		return err
	}

	s, err := FromToken(resp.Token, m.now())
	if err != nil {
		m.logger.Warn().Str("reason", err.Error()).Msg("authenticated token is not usable")
		m.publish(nil)
		return nil
	}

	m.logger.Info().Int64("user_id", s.UserID).Msg("session established")
	m.publish(s)
	return nil
}

// CurrentToken reads the stored token. Storage errors other than a missing key
// are logged and reported as absent.
func (m *Manager) CurrentToken(ctx context.Context) (string, bool) {
	token, err := m.store.Get(ctx, m.key)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			m.logger.Warn().Str("error", err.Error()).Msg("failed to read auth token")
		}
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// IsAuthenticated reports whether a stored token exists and is not expired.
// An expired or malformed token is removed and, if a session was current,
// absence is published.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	if token, ok := m.CurrentToken(ctx); ok && !IsExpired(token, m.now()) {
		return true
	}

	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	// Re-check under the emission lock; Authenticate may have raced us.
	if m.dropUnusableToken(ctx) {
		return true
	}
	if m.snapshot() != nil {
		m.publish(nil)
	}
	return false
}

// dropUnusableToken reports whether the stored token is usable and removes it
// when it is expired or malformed. Caller holds emitMu.
func (m *Manager) dropUnusableToken(ctx context.Context) bool {
	token, ok := m.CurrentToken(ctx)
	if ok && !IsExpired(token, m.now()) {
		return true
	}
	if ok {
		if err := m.store.Delete(ctx, m.key); err != nil {
			m.logger.Warn().Str("error", err.Error()).Msg("failed to remove unusable auth token")
		} else {
			m.logger.Info().Msg("removed expired or malformed auth token")
		}
	}
	return false
}

// Current returns the latest published session, or nil once it has expired.
func (m *Manager) Current() *Session {
	s := m.snapshot()
	if s.Expired(m.now()) {
		return nil
	}
	return s
}

func (m *Manager) snapshot() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Subscribe registers fn and calls it with the current value before returning.
// A session that expired since it was published is cleared first, so fn never
// sees it. The returned function removes the subscription and is safe to call
// more than once.
func (m *Manager) Subscribe(fn func(*Session)) (unsubscribe func()) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	if s := m.snapshot(); s != nil && s.Expired(m.now()) {
		m.dropUnusableToken(context.Background())
		m.logger.Info().Int64("user_id", s.UserID).Msg("session expired")
		m.publish(nil)
	}

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	current := m.current
	m.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() { m.remove(id) })
	}
}

// Logout removes the stored token, publishes absence and navigates to LoginRoute.
// When the token cannot be removed nothing is published and the error is returned.
func (m *Manager) Logout(ctx context.Context, nav Navigator) error {
	m.emitMu.Lock()
	if err := m.store.Delete(ctx, m.key); err != nil {
		m.emitMu.Unlock()
		m.logger.Error().Str("error", err.Error()).Msg("failed to remove auth token on logout")
		return err
	}
	m.logger.Info().Msg("session ended")
	m.publish(nil)
	m.emitMu.Unlock()

	if nav != nil {
		nav.Navigate(LoginRoute)
	}
	return nil
}

// publish stores s and delivers it to every subscriber. Caller holds emitMu.
func (m *Manager) publish(s *Session) {
	m.mu.Lock()
	m.current = s
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.fn(s)
	}
}

func (m *Manager) remove(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subs {
		if sub.id == id {
			m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
			return
		}
	}
}
