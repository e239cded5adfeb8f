package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zoudousouk/souk-go/pkg/kv"
	"github.com/zoudousouk/souk-go/pkg/logger"
)

// Manager persists the session into the (sealed) key-value store and caches
// it in memory. It implements both Session and the API client's TokenSource.
type Manager struct {
	store  kv.Store
	logger *logger.Logger

	mu    sync.RWMutex
	token string
	user  *User
}

// NewManager builds a manager over the provided store.
func NewManager(store kv.Store, logg *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("session logger required")
	}
	return &Manager{store: store, logger: logg}, nil
}

// Restore loads a previously persisted session. A missing or unreadable
// session leaves the manager logged out; only storage-level failures are
// returned.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.store.Get(ctx, kv.KeyAuthToken)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("restoring auth token: %w", err)
	}

	raw, err := m.store.Get(ctx, kv.KeyUserData)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("restoring user data: %w", err)
	}

	var user *User
	if err == nil {
		user = &User{}
		if unmarshalErr := json.Unmarshal([]byte(raw), user); unmarshalErr != nil {
			m.logger.Warn(ctx, "stored user data unreadable, discarding session")
			return nil
		}
	}

	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()
	return nil
}

// Establish persists a fresh token and profile after a successful login.
func (m *Manager) Establish(ctx context.Context, token string, user User) error {
	if token == "" {
		return fmt.Errorf("token required")
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := m.store.Set(ctx, kv.KeyAuthToken, token); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}
	if err := m.store.Set(ctx, kv.KeyUserData, string(encoded)); err != nil {
		return fmt.Errorf("persisting user: %w", err)
	}

	m.mu.Lock()
	m.token = token
	copied := user
	m.user = &copied
	m.mu.Unlock()
	return nil
}

// Clear forgets the session in memory and storage.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, kv.KeyAuthToken); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	if err := m.store.Delete(ctx, kv.KeyUserData); err != nil {
		return fmt.Errorf("removing user: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a token is present and, when the token is
// a parseable JWT, not yet expired. The client never holds the signing
// secret, so claims are read without signature verification; the service
// remains the authority on token validity.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()
	if token == "" {
		return false
	}

	expiry, ok := tokenExpiry(token)
	if !ok {
		return true
	}
	if time.Now().After(expiry) {
		m.logger.Debug(ctx, "stored token expired")
		return false
	}
	return true
}

// CurrentUser returns a copy of the authenticated profile, or nil.
func (m *Manager) CurrentUser(ctx context.Context) *User {
	if !m.IsAuthenticated(ctx) {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	copied := *m.user
	return &copied
}

// Token implements the API client's token source.
func (m *Manager) Token(context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func tokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}
