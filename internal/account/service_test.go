package account

import (
	"context"
	"io"
	"testing"

	"github.com/zoudousouk/souk-go/internal/api"
	"github.com/zoudousouk/souk-go/internal/session"
	pkgerrors "github.com/zoudousouk/souk-go/pkg/errors"
	"github.com/zoudousouk/souk-go/pkg/kv"
	"github.com/zoudousouk/souk-go/pkg/logger"
)

type stubClient struct {
	login      *api.LoginResponse
	loginCalls int
	registers  []api.RegisterRequest
	upgrades   []api.VendorUpgradeRequest
	profile    *api.User
	updates    []api.ProfileUpdate
	products   []api.ProductPayload
	err        error
}

func (s *stubClient) Login(context.Context, api.Credentials) (*api.LoginResponse, error) {
	s.loginCalls++
	return s.login, s.err
}

func (s *stubClient) Register(_ context.Context, payload api.RegisterRequest) error {
	s.registers = append(s.registers, payload)
	return s.err
}

func (s *stubClient) UpgradeVendor(_ context.Context, payload api.VendorUpgradeRequest) error {
	s.upgrades = append(s.upgrades, payload)
	return s.err
}

func (s *stubClient) GetProfile(context.Context) (*api.User, error) {
	return s.profile, s.err
}

func (s *stubClient) UpdateProfile(_ context.Context, update api.ProfileUpdate) (*api.User, error) {
	s.updates = append(s.updates, update)
	return s.profile, s.err
}

func (s *stubClient) CreateProduct(_ context.Context, payload api.ProductPayload) (*api.Product, error) {
	s.products = append(s.products, payload)
	if s.err != nil {
		return nil, s.err
	}
	return &api.Product{ID: "p-new", Name: payload.Name, Price: payload.Price}, nil
}

func newTestService(t *testing.T, client *stubClient) (Service, *session.Manager) {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	manager, err := session.NewManager(kv.NewMemory(), logg)
	if err != nil {
		t.Fatalf("building session manager: %v", err)
	}
	svc, err := NewService(client, manager, logg)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc, manager
}

func TestLoginEstablishesSession(t *testing.T) {
	t.Parallel()

	client := &stubClient{login: &api.LoginResponse{
		Token: "opaque-token",
		User:  api.User{ID: "u-1", Name: "Abakar Moussa", Role: session.RoleClient},
	}}
	svc, manager := newTestService(t, client)
	ctx := context.Background()

	user, err := svc.Login(ctx, "moussa@example.td", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "u-1" || !user.IsClient() {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !manager.IsAuthenticated(ctx) {
		t.Fatal("session must be established after login")
	}
	if manager.Token(ctx) != "opaque-token" {
		t.Fatalf("token not stored, got %q", manager.Token(ctx))
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	for _, tc := range []struct{ email, password string }{
		{"", "secret"},
		{"moussa@example.td", ""},
		{"   ", "secret"},
	} {
		_, err := svc.Login(ctx, tc.email, tc.password)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", tc, err)
		}
	}
	if client.loginCalls != 0 {
		t.Fatalf("incomplete credentials must not reach the backend, got %d calls", client.loginCalls)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	t.Parallel()

	client := &stubClient{login: &api.LoginResponse{Token: "tok", User: api.User{ID: "u-1"}}}
	svc, manager := newTestService(t, client)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "a@b.td", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if manager.IsAuthenticated(ctx) {
		t.Fatal("session must be cleared after logout")
	}
}

func TestRegisterValidatesBeforeSubmitting(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	err := svc.Register(ctx, RegisterForm{Email: "not-an-email"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(client.registers) != 0 {
		t.Fatal("invalid form must not reach the backend")
	}

	if err := svc.Register(ctx, validRegisterForm()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(client.registers) != 1 {
		t.Fatalf("expected one register call, got %d", len(client.registers))
	}
	if got := client.registers[0].Name; got != "Abakar Moussa" {
		t.Fatalf("name must combine last and first, got %q", got)
	}
}

func TestUpgradeVendorRequiresSession(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	form := VendorUpgradeForm{
		BusinessName:        "Boutique",
		BusinessDescription: "Vente",
		BusinessType:        "commerce",
	}
	err := svc.UpgradeVendor(ctx, form)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if len(client.upgrades) != 0 {
		t.Fatal("unauthenticated upgrade must not reach the backend")
	}
}

func TestPublishProductRequiresVendorRole(t *testing.T) {
	t.Parallel()

	client := &stubClient{login: &api.LoginResponse{
		Token: "tok",
		User:  api.User{ID: "u-1", Role: session.RoleClient},
	}}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "a@b.td", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	form := ProductForm{
		Name:      "Riz parfumé",
		Price:     15000,
		Condition: "neuf",
		Category:  "alimentation",
		Quantity:  2,
		Photos:    []string{"photo-1"},
	}
	_, err := svc.PublishProduct(ctx, form)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("client accounts must be forbidden, got %v", err)
	}
	if len(client.products) != 0 {
		t.Fatal("forbidden publish must not reach the backend")
	}
}

func TestPublishProductAsVendor(t *testing.T) {
	t.Parallel()

	client := &stubClient{login: &api.LoginResponse{
		Token: "tok",
		User:  api.User{ID: "u-1", Role: session.RoleVendor},
	}}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "a@b.td", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err := svc.PublishProduct(ctx, ProductForm{Name: "Riz"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("incomplete form must fail validation, got %v", err)
	}

	product, err := svc.PublishProduct(ctx, ProductForm{
		Name:      "Riz parfumé",
		Price:     15000,
		Condition: "neuf",
		Category:  "alimentation",
		Quantity:  2,
		Photos:    []string{"photo-1", "photo-2"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if product.ID != "p-new" {
		t.Fatalf("unexpected product: %+v", product)
	}
	if len(client.products) != 1 {
		t.Fatalf("expected one create call, got %d", len(client.products))
	}
	payload := client.products[0]
	if payload.ImageURL != "photo-1" || payload.Stock != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestUpdateProfileChecksProvince(t *testing.T) {
	t.Parallel()

	client := &stubClient{login: &api.LoginResponse{Token: "tok", User: api.User{ID: "u-1"}}}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "a@b.td", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err := svc.UpdateProfile(ctx, api.ProfileUpdate{Province: "Paris"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(client.updates) != 0 {
		t.Fatal("invalid province must not reach the backend")
	}

	if _, err := svc.UpdateProfile(ctx, api.ProfileUpdate{Province: "Guéra"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(client.updates) != 1 {
		t.Fatalf("expected one update call, got %d", len(client.updates))
	}
}
