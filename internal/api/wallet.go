package api

import (
	"context"
	"net/http"
	"net/url"
)

// GetBalance returns the wallet balance for the authenticated account.
func (c *Client) GetBalance(ctx context.Context) (*Balance, error) {
	var out Balance
	err := c.do(ctx, request{
		operation: "get_balance",
		method:    http.MethodGet,
		path:      "/wallet/balance",
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Transfer sends money to another wallet.
func (c *Client) Transfer(ctx context.Context, req TransferRequest, idempotencyKey string) (*TransferResult, error) {
	var out TransferResult
	err := c.do(ctx, request{
		operation:      "p2p_transfer",
		method:         http.MethodPost,
		path:           "/wallet/transfer",
		body:           req,
		out:            &out,
		idempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PurchaseProduct charges the wallet for one product line. The idempotency
// key makes an uncertain outcome safe to resubmit without double-charging.
func (c *Client) PurchaseProduct(ctx context.Context, req PurchaseRequest, idempotencyKey string) (*PurchaseResult, error) {
	var out PurchaseResult
	err := c.do(ctx, request{
		operation:      "purchase_product",
		method:         http.MethodPost,
		path:           "/transactions/achat",
		body:           req,
		out:            &out,
		idempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PayBill settles a utility bill through the wallet.
func (c *Client) PayBill(ctx context.Context, req BillPaymentRequest, idempotencyKey string) (*BillPaymentResult, error) {
	var out BillPaymentResult
	err := c.do(ctx, request{
		operation:      "pay_bill",
		method:         http.MethodPost,
		path:           "/transactions/facture",
		body:           req,
		out:            &out,
		idempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Transactions returns the wallet history.
func (c *Client) Transactions(ctx context.Context) ([]Transaction, error) {
	var out []Transaction
	err := c.do(ctx, request{
		operation: "transaction_history",
		method:    http.MethodGet,
		path:      "/transactions/history",
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListServices returns every payable utility.
func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	var out []Service
	err := c.do(ctx, request{
		operation: "list_services",
		method:    http.MethodGet,
		path:      "/services",
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ServicesByType filters utilities by type (ZIZ, STE, TAXE).
func (c *Client) ServicesByType(ctx context.Context, serviceType string) ([]Service, error) {
	var out []Service
	err := c.do(ctx, request{
		operation: "services_by_type",
		method:    http.MethodGet,
		path:      "/services/" + url.PathEscape(serviceType),
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
