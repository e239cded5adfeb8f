package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zoudousouk/souk-go/internal/api"
	"github.com/zoudousouk/souk-go/internal/cart"
	"github.com/zoudousouk/souk-go/internal/session"
	pkgerrors "github.com/zoudousouk/souk-go/pkg/errors"
	"github.com/zoudousouk/souk-go/pkg/logger"
	"github.com/zoudousouk/souk-go/pkg/metrics"
	"github.com/zoudousouk/souk-go/pkg/money"
)

// Purchaser submits a single purchase to the payments backend. The
// idempotency key guarantees at most one charge per attempt even if the
// request is retried at the transport layer.
type Purchaser interface {
	PurchaseProduct(ctx context.Context, req api.PurchaseRequest, idempotencyKey string) (*api.PurchaseResult, error)
}

// Result reports a completed checkout attempt.
type Result struct {
	PurchasedLine  cart.Line
	TransactionID  string
	AmountCharged  money.Amount
	Remaining      cart.Totals
	PersistWarning error
}

// Coordinator drives the checkout flow: it validates the session and cart,
// submits the oldest cart line for purchase, and reconciles local state with
// the outcome.
type Coordinator struct {
	cart    *cart.Store
	session session.Session
	wallet  Purchaser
	logger  *logger.Logger
	metrics *metrics.CheckoutMetrics

	inFlight sync.Mutex
}

// NewCoordinator builds a checkout coordinator. Metrics may be nil.
func NewCoordinator(
	store *cart.Store,
	sess session.Session,
	wallet Purchaser,
	logg *logger.Logger,
	m *metrics.CheckoutMetrics,
) (*Coordinator, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if sess == nil {
		return nil, fmt.Errorf("session required")
	}
	if wallet == nil {
		return nil, fmt.Errorf("purchaser required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Coordinator{
		cart:    store,
		session: sess,
		wallet:  wallet,
		logger:  logg,
		metrics: m,
	}, nil
}

// Execute runs one checkout attempt over the oldest cart line.
//
// Preconditions are checked before any network call: an unauthenticated
// session fails with UNAUTHORIZED and an empty cart with EMPTY_CART, both
// without contacting the backend. Only one attempt runs at a time; a second
// concurrent call fails fast with CONFLICT instead of queueing.
//
// On success the purchased line is removed from the cart. If removing it
// fails to persist, the purchase stands: the result carries the storage
// failure in PersistWarning rather than rolling back a completed charge.
func (c *Coordinator) Execute(ctx context.Context) (*Result, error) {
	if !c.inFlight.TryLock() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a checkout is already in progress")
	}
	defer c.inFlight.Unlock()

	started := time.Now()
	result, err := c.execute(ctx)
	c.metrics.ObserveAttempt(outcomeLabel(result, err), time.Since(started))
	return result, err
}

func (c *Coordinator) execute(ctx context.Context) (*Result, error) {
	if !c.session.IsAuthenticated(ctx) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "checkout requires an authenticated session")
	}

	line, ok := c.cart.First()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	log := c.logger.WithOperation(ctx, "checkout")
	log = c.logger.WithProductID(log, line.ProductID)
	if user := c.session.CurrentUser(ctx); user != nil {
		log = c.logger.WithUserID(log, user.ID)
	}

	key := api.NewIdempotencyKey("checkout")
	c.logger.Info(log, "submitting purchase")

	purchase, err := c.wallet.PurchaseProduct(ctx, api.PurchaseRequest{
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
	}, key)
	if err != nil {
		c.logger.Warn(log, "purchase failed")
		return nil, err
	}

	result := &Result{
		PurchasedLine: line,
		TransactionID: purchase.TransactionID,
		AmountCharged: purchase.Amount,
	}
	if result.AmountCharged == 0 {
		result.AmountCharged = line.Subtotal()
	}

	// The charge is settled; a mirror failure here must not undo it.
	if err := c.cart.Remove(ctx, line.ProductID); err != nil {
		c.logger.Warn(log, "purchased line not persisted as removed")
		result.PersistWarning = err
	}
	result.Remaining = c.cart.Totals()

	c.logger.Info(log, "purchase complete")
	return result, nil
}

func outcomeLabel(result *Result, err error) string {
	switch {
	case err == nil && result != nil && result.PersistWarning != nil:
		return "success_persist_warning"
	case err == nil:
		return "success"
	default:
		typed := pkgerrors.As(err)
		if typed == nil {
			return "error"
		}
		switch typed.Code() {
		case pkgerrors.CodeUnauthorized:
			return "unauthorized"
		case pkgerrors.CodeEmptyCart:
			return "empty_cart"
		case pkgerrors.CodeConflict:
			return "conflict"
		case pkgerrors.CodeUnavailable:
			return "unavailable"
		case pkgerrors.CodeRejected:
			return "rejected"
		default:
			return "error"
		}
	}
}
