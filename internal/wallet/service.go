// Package wallet exposes the money operations: balance, P2P transfers, bill
// payments and the transaction history. Transfers and bill payments carry a
// percentage fee on top of the amount; the fee schedule comes from config.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/zoudousouk/souk-go/internal/api"
	"github.com/zoudousouk/souk-go/internal/session"
	"github.com/zoudousouk/souk-go/pkg/config"
	pkgerrors "github.com/zoudousouk/souk-go/pkg/errors"
	"github.com/zoudousouk/souk-go/pkg/logger"
	"github.com/zoudousouk/souk-go/pkg/money"
)

// Client is the slice of the backend API the wallet needs.
type Client interface {
	GetBalance(ctx context.Context) (*api.Balance, error)
	Transfer(ctx context.Context, req api.TransferRequest, idempotencyKey string) (*api.TransferResult, error)
	PayBill(ctx context.Context, req api.BillPaymentRequest, idempotencyKey string) (*api.BillPaymentResult, error)
	Transactions(ctx context.Context) ([]api.Transaction, error)
	ListServices(ctx context.Context) ([]api.Service, error)
	ServicesByType(ctx context.Context, serviceType string) ([]api.Service, error)
}

// TransferInput is a P2P transfer as the caller states it.
type TransferInput struct {
	ToPhone string       `validate:"required,numeric,len=9"`
	Amount  money.Amount `validate:"required,gt=0"`
}

// BillInput is a utility bill payment as the caller states it.
type BillInput struct {
	ServiceType string       `validate:"required,oneof=ZIZ STE TAXE"`
	ServiceID   string       `validate:"required"`
	Amount      money.Amount `validate:"required,gt=0"`
	Reference   string       `validate:"required"`
}

// Quote is the cost breakdown shown before a fee-bearing operation.
type Quote struct {
	Amount money.Amount
	Fee    money.Amount
	Total  money.Amount
}

// TransferReceipt confirms a settled transfer.
type TransferReceipt struct {
	TransactionID string
	Quote         Quote
	ToPhone       string
}

// BillReceipt confirms a settled bill payment.
type BillReceipt struct {
	TransactionID string
	Quote         Quote
	ServiceType   string
}

// Service is the wallet surface.
type Service interface {
	Balance(ctx context.Context) (*api.Balance, error)
	QuoteTransfer(amount money.Amount) Quote
	Transfer(ctx context.Context, input TransferInput) (*TransferReceipt, error)
	QuoteBill(amount money.Amount) Quote
	PayBill(ctx context.Context, input BillInput) (*BillReceipt, error)
	History(ctx context.Context) ([]api.Transaction, error)
	Services(ctx context.Context, serviceType string) ([]api.Service, error)
}

type service struct {
	client   Client
	session  session.Session
	logger   *logger.Logger
	validate *validator.Validate

	transferFee decimal.Decimal
	billFee     decimal.Decimal
}

// NewService builds the wallet service with the fee schedule from config.
func NewService(client Client, sess session.Session, cfg config.FeesConfig, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("wallet client required")
	}
	if sess == nil {
		return nil, fmt.Errorf("session required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	transferFee, err := money.ParsePercent(cfg.TransferPercent)
	if err != nil {
		return nil, fmt.Errorf("transfer fee: %w", err)
	}
	billFee, err := money.ParsePercent(cfg.BillPercent)
	if err != nil {
		return nil, fmt.Errorf("bill fee: %w", err)
	}
	return &service{
		client:      client,
		session:     sess,
		logger:      logg,
		validate:    validator.New(),
		transferFee: transferFee,
		billFee:     billFee,
	}, nil
}

func (s *service) Balance(ctx context.Context) (*api.Balance, error) {
	if !s.session.IsAuthenticated(ctx) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "balance requires an authenticated session")
	}
	return s.client.GetBalance(ctx)
}

// QuoteTransfer computes the cost of a transfer before it is submitted.
func (s *service) QuoteTransfer(amount money.Amount) Quote {
	return s.quote(amount, s.transferFee)
}

func (s *service) Transfer(ctx context.Context, input TransferInput) (*TransferReceipt, error) {
	if !s.session.IsAuthenticated(ctx) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "transfer requires an authenticated session")
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	if user := s.session.CurrentUser(ctx); user != nil && user.Phone == input.ToPhone {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot transfer to your own wallet")
	}

	quote := s.QuoteTransfer(input.Amount)
	log := s.logger.WithOperation(ctx, "transfer")
	s.logger.Info(log, "submitting transfer")

	result, err := s.client.Transfer(ctx, api.TransferRequest{
		ToPhone: input.ToPhone,
		Amount:  input.Amount,
	}, api.NewIdempotencyKey("transfer"))
	if err != nil {
		return nil, err
	}
	return &TransferReceipt{
		TransactionID: result.TransactionID,
		Quote:         quote,
		ToPhone:       money.FormatPhone(input.ToPhone),
	}, nil
}

// QuoteBill computes the cost of a bill payment before it is submitted.
func (s *service) QuoteBill(amount money.Amount) Quote {
	return s.quote(amount, s.billFee)
}

func (s *service) PayBill(ctx context.Context, input BillInput) (*BillReceipt, error) {
	if !s.session.IsAuthenticated(ctx) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "bill payment requires an authenticated session")
	}
	input.ServiceType = strings.ToUpper(strings.TrimSpace(input.ServiceType))
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	quote := s.QuoteBill(input.Amount)
	log := s.logger.WithOperation(ctx, "pay_bill")
	s.logger.Info(log, "submitting bill payment")

	result, err := s.client.PayBill(ctx, api.BillPaymentRequest{
		ServiceType: input.ServiceType,
		ServiceID:   input.ServiceID,
		Amount:      input.Amount,
		Reference:   input.Reference,
	}, api.NewIdempotencyKey("bill"))
	if err != nil {
		return nil, err
	}
	return &BillReceipt{
		TransactionID: result.TransactionID,
		Quote:         quote,
		ServiceType:   input.ServiceType,
	}, nil
}

func (s *service) History(ctx context.Context) ([]api.Transaction, error) {
	if !s.session.IsAuthenticated(ctx) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "history requires an authenticated session")
	}
	return s.client.Transactions(ctx)
}

// Services lists payable utilities, optionally filtered by type.
func (s *service) Services(ctx context.Context, serviceType string) ([]api.Service, error) {
	serviceType = strings.ToUpper(strings.TrimSpace(serviceType))
	if serviceType == "" {
		return s.client.ListServices(ctx)
	}
	return s.client.ServicesByType(ctx, serviceType)
}

func (s *service) quote(amount money.Amount, percent decimal.Decimal) Quote {
	fee := money.Fee(amount, percent)
	return Quote{Amount: amount, Fee: fee, Total: amount + fee}
}

func (s *service) validateInput(input any) error {
	if err := s.validate.Struct(input); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			field := invalid[0]
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("field %s failed on %s", field.Field(), field.Tag()))
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid input")
	}
	return nil
}
