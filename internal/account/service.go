package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/zoudousouk/souk-go/internal/api"
	"github.com/zoudousouk/souk-go/internal/session"
	pkgerrors "github.com/zoudousouk/souk-go/pkg/errors"
	"github.com/zoudousouk/souk-go/pkg/logger"
	"github.com/zoudousouk/souk-go/pkg/money"
)

// Client is the slice of the backend API the account flows need.
type Client interface {
	Login(ctx context.Context, creds api.Credentials) (*api.LoginResponse, error)
	Register(ctx context.Context, payload api.RegisterRequest) error
	UpgradeVendor(ctx context.Context, payload api.VendorUpgradeRequest) error
	GetProfile(ctx context.Context) (*api.User, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*api.User, error)
	CreateProduct(ctx context.Context, payload api.ProductPayload) (*api.Product, error)
}

// SessionWriter is the part of the session manager the login flow drives.
type SessionWriter interface {
	session.Session
	Establish(ctx context.Context, token string, user session.User) error
	Clear(ctx context.Context) error
}

// Service is the account surface: login, registration and profile edits.
type Service interface {
	Login(ctx context.Context, email, password string) (*session.User, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, form RegisterForm) error
	UpgradeVendor(ctx context.Context, form VendorUpgradeForm) error
	Profile(ctx context.Context) (*api.User, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*api.User, error)
	PublishProduct(ctx context.Context, form ProductForm) (*api.Product, error)
}

type service struct {
	client   Client
	sessions SessionWriter
	logger   *logger.Logger
}

// NewService builds the account service.
func NewService(client Client, sessions SessionWriter, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("account client required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session writer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("account logger required")
	}
	return &service{client: client, sessions: sessions, logger: logg}, nil
}

// Login authenticates against the backend and establishes the local session.
func (s *service) Login(ctx context.Context, email, password string) (*session.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	log := s.logger.WithOperation(ctx, "login")
	response, err := s.client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	user := session.User{
		ID:    response.User.ID,
		Name:  response.User.Name,
		Email: response.User.Email,
		Phone: response.User.Phone,
		Role:  response.User.Role,
	}
	if err := s.sessions.Establish(ctx, response.Token, user); err != nil {
		// the login succeeded but the session did not persist; the caller
		// must retry rather than believe they are signed in
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persisting session")
	}
	s.logger.Info(s.logger.WithUserID(log, user.ID), "session established")
	return &user, nil
}

func (s *service) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clearing session")
	}
	return nil
}

// Register validates the form locally before submitting it; a form that
// fails validation never reaches the backend.
func (s *service) Register(ctx context.Context, form RegisterForm) error {
	if err := Validate(form); err != nil {
		return err
	}
	return s.client.Register(ctx, api.RegisterRequest{
		Name:     strings.TrimSpace(form.LastName + " " + form.FirstName),
		Email:    form.Email,
		Phone:    form.Phone,
		Password: form.Password,
		Province: form.Province,
	})
}

// UpgradeVendor promotes the authenticated account to vendor.
func (s *service) UpgradeVendor(ctx context.Context, form VendorUpgradeForm) error {
	if !s.sessions.IsAuthenticated(ctx) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "vendor upgrade requires an authenticated session")
	}
	if err := Validate(form); err != nil {
		return err
	}
	return s.client.UpgradeVendor(ctx, api.VendorUpgradeRequest{
		BusinessName: form.BusinessName,
		Description:  form.BusinessDescription,
		BusinessType: form.BusinessType,
	})
}

func (s *service) Profile(ctx context.Context) (*api.User, error) {
	if !s.sessions.IsAuthenticated(ctx) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile requires an authenticated session")
	}
	return s.client.GetProfile(ctx)
}

func (s *service) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*api.User, error) {
	if !s.sessions.IsAuthenticated(ctx) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile update requires an authenticated session")
	}
	if update.Province != "" {
		if err := validate.Var(update.Province, "province"); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"province": "doit être une province du Tchad"})
		}
	}
	return s.client.UpdateProfile(ctx, update)
}

// PublishProduct lists a product for sale. Only vendor and admin accounts may
// publish.
func (s *service) PublishProduct(ctx context.Context, form ProductForm) (*api.Product, error) {
	if !s.sessions.IsAuthenticated(ctx) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "publishing requires an authenticated session")
	}
	user := s.sessions.CurrentUser(ctx)
	if user == nil || (!user.IsVendor() && !user.IsAdmin()) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only vendor accounts can publish products")
	}
	if err := Validate(form); err != nil {
		return nil, err
	}

	imageURL := ""
	if len(form.Photos) > 0 {
		imageURL = form.Photos[0]
	}
	return s.client.CreateProduct(ctx, api.ProductPayload{
		Name:        form.Name,
		Description: form.Description,
		Price:       money.Amount(form.Price),
		Category:    form.Category,
		Stock:       form.Quantity,
		ImageURL:    imageURL,
	})
}
