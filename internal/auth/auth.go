// Package auth holds the authenticated user and bearer token for the
// storefront and keeps them in durable storage.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/internal/apiclient"
	"storefront/internal/model"
	"storefront/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// fallbackMessage is shown when an auth error carries no message of its own.
const fallbackMessage = "Request failed"

// Authenticator is the part of the API client used for authentication.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
	Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error)
	SetToken(token string)
}

// Manager owns the single session slot. The bearer token of the current
// session is attached to every API request until logout.
type Manager struct {
	mu      sync.RWMutex
	user    *model.User
	token   string
	loading bool
	lastErr string

	api    Authenticator
	store  storage.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewManager creates a manager hydrated from storage. An unreadable stored
// user, a stored user without a token or an expired stored token leaves the
// session unauthenticated.
func NewManager(ctx context.Context, api Authenticator, store storage.Store, logger zerolog.Logger) *Manager {
	m := &Manager{
		api:    api,
		store:  store,
		logger: logger.With().Str("component", "auth").Logger(),
		now:    time.Now,
	}
	m.hydrate(ctx)
	return m
}

func (m *Manager) hydrate(ctx context.Context) {
	var user model.User
	found, err := storage.GetJSON(ctx, m.store, storage.KeyAuthUser, &user)
	if err != nil {
		m.logger.Warn().Err(err).Msg("stored user unreadable, starting signed out")
	} else if found {
		m.user = &user
	}

	token, err := m.store.Get(ctx, storage.KeyAuthToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn().Err(err).Msg("failed to read stored token")
	}
	m.token = string(token)

	if m.token != "" && m.expired(m.token) {
		m.logger.Info().Msg("stored token expired, signing out")
		m.user = nil
		m.token = ""
		m.clearStored(ctx)
	}

	if m.user != nil && m.token == "" {
		m.logger.Info().Msg("stored user has no token, starting signed out")
		m.user = nil
		if err := m.store.Delete(ctx, storage.KeyAuthUser); err != nil {
			m.logger.Error().Err(err).Str("key", storage.KeyAuthUser).Msg("failed to remove stored session")
		}
	}

	m.api.SetToken(m.token)

	if m.user != nil && m.token != "" {
		m.logger.Info().Str("user", m.user.Name).Str("role", string(m.user.Role)).Msg("session restored")
	}
}

// expired reports whether token is a JWT whose exp claim has passed. Tokens
// that are not JWTs never expire here; the remote API remains the judge.
func (m *Manager) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(m.now())
}

// Login signs in with creds and returns the authenticated user.
func (m *Manager) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	return m.authenticate(ctx, "login", func() (*model.AuthResponse, error) {
		return m.api.Login(ctx, creds)
	})
}

// Register creates an account and signs in. An empty role registers a
// regular user.
func (m *Manager) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	if reg.Role == "" {
		reg.Role = model.RoleUser
	}
	return m.authenticate(ctx, "register", func() (*model.AuthResponse, error) {
		return m.api.Register(ctx, reg)
	})
}

func (m *Manager) authenticate(ctx context.Context, action string, call func() (*model.AuthResponse, error)) (*model.User, error) {
	m.mu.Lock()
	m.loading = true
	m.lastErr = ""
	m.mu.Unlock()

	resp, err := call()
	if err == nil && (resp == nil || resp.User == nil || resp.Token == "") {
		err = model.ErrInvalidAuthResponse
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false

	if err != nil {
		m.lastErr = apiclient.Message(err, fallbackMessage)
		m.logger.Warn().Err(err).Str("action", action).Msg("authentication failed")
		return nil, err
	}

	user := *resp.User
	m.user = &user
	m.token = resp.Token
	m.api.SetToken(m.token)
	m.persist(ctx)

	m.logger.Info().
		Str("action", action).
		Str("user", user.Name).
		Str("role", string(user.Role)).
		Msg("signed in")

	out := user
	return &out, nil
}

// persist must be called with mu held.
func (m *Manager) persist(ctx context.Context) {
	if err := storage.SetJSON(ctx, m.store, storage.KeyAuthUser, m.user); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist user")
	}
	if err := m.store.Set(ctx, storage.KeyAuthToken, []byte(m.token)); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist token")
	}
}

func (m *Manager) clearStored(ctx context.Context) {
	for _, key := range []string{storage.KeyAuthUser, storage.KeyAuthToken} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("failed to remove stored session")
		}
	}
}

// Logout clears the session, its stored keys and the Authorization header.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user = nil
	m.token = ""
	m.api.SetToken("")
	m.clearStored(ctx)

	m.logger.Info().Msg("signed out")
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := model.Session{Token: m.token}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.token != ""
}

func (m *Manager) IsAdmin() bool {
	return m.Snapshot().HasRole(model.RoleAdmin)
}

// User returns the signed-in user, or nil.
func (m *Manager) User() *model.User {
	return m.Snapshot().User
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// LastError returns the message of the last failed login or register call.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = ""
}

// Loading reports whether a login or register call is in flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// RedirectFor returns the page to show after signing in.
func RedirectFor(user *model.User) string {
	if user != nil && user.Role == model.RoleAdmin {
		return "/admin"
	}
	return "/"
}
