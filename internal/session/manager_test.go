package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zoudousouk/souk-go/pkg/kv"
	"github.com/zoudousouk/souk-go/pkg/logger"
)

func newTestManager(t *testing.T) (*Manager, *kv.Memory) {
	t.Helper()

	store := kv.NewMemory()
	manager, err := NewManager(store, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("building manager: %v", err)
	}
	return manager, store
}

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestEstablishRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store := newTestManager(t)

	user := User{ID: "user-1", Name: "Mahamat", Phone: "23566123456", Role: RoleClient}
	token := signedToken(t, time.Now().Add(time.Hour))
	if err := manager.Establish(ctx, token, user); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if !manager.IsAuthenticated(ctx) {
		t.Fatal("expected authenticated session")
	}

	// simulate a restart: a fresh manager over the same store
	restarted, err := NewManager(store, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("building manager: %v", err)
	}
	if restarted.IsAuthenticated(ctx) {
		t.Fatal("fresh manager must start logged out")
	}
	if err := restarted.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !restarted.IsAuthenticated(ctx) {
		t.Fatal("expected session to survive restart")
	}
	got := restarted.CurrentUser(ctx)
	if got == nil || got.ID != "user-1" || !got.IsClient() {
		t.Fatalf("unexpected restored user %+v", got)
	}
}

func TestExpiredTokenIsNotAuthenticated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, _ := newTestManager(t)

	token := signedToken(t, time.Now().Add(-time.Minute))
	if err := manager.Establish(ctx, token, User{ID: "user-1"}); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if manager.IsAuthenticated(ctx) {
		t.Fatal("expired token must not authenticate")
	}
	if manager.CurrentUser(ctx) != nil {
		t.Fatal("expired session must not expose a user")
	}
}

func TestOpaqueTokenCountsAsAuthenticated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, _ := newTestManager(t)

	if err := manager.Establish(ctx, "opaque-session-token", User{ID: "user-2"}); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if !manager.IsAuthenticated(ctx) {
		t.Fatal("non-JWT tokens are the service's problem, not ours")
	}
}

func TestRestoreWithCorruptUserDataDiscardsSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store := newTestManager(t)

	if err := store.Set(ctx, kv.KeyAuthToken, "token"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if err := store.Set(ctx, kv.KeyUserData, "{not json"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if err := manager.Restore(ctx); err != nil {
		t.Fatalf("restore should not fail on corrupt data: %v", err)
	}
	if manager.IsAuthenticated(ctx) {
		t.Fatal("corrupt session must be discarded")
	}
}

func TestClearForgetsEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store := newTestManager(t)

	if err := manager.Establish(ctx, "token", User{ID: "user-3"}); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if err := manager.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if manager.IsAuthenticated(ctx) {
		t.Fatal("cleared session must be logged out")
	}
	if _, err := store.Get(ctx, kv.KeyAuthToken); err == nil {
		t.Fatal("token must be removed from storage")
	}
}

func TestStaticSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	anonymous := Static{}
	if anonymous.IsAuthenticated(ctx) {
		t.Fatal("empty static session must not authenticate")
	}

	user := &User{ID: "u", Role: RoleVendor}
	static := Static{User: user, AuthToken: "tok"}
	if !static.IsAuthenticated(ctx) {
		t.Fatal("expected authenticated static session")
	}
	got := static.CurrentUser(ctx)
	if got == nil || !got.IsVendor() {
		t.Fatalf("unexpected user %+v", got)
	}
	got.ID = "mutated"
	if user.ID != "u" {
		t.Fatal("CurrentUser must return a copy")
	}
}
