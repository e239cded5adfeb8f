package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zoudousouk/souk-go/pkg/config"
	pkgerrors "github.com/zoudousouk/souk-go/pkg/errors"
	"github.com/zoudousouk/souk-go/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string, token string) *Client {
	t.Helper()

	client, err := NewClient(config.APIConfig{
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
		UserAgent: "souk-go-test",
	}, StaticToken(token), logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	return client
}

func TestPurchaseSendsAuthAndIdempotencyHeaders(t *testing.T) {
	t.Parallel()

	var gotAuth, gotKey, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"transaction_id":"tx-9","amount":30000}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "jwt-abc")
	result, err := client.PurchaseProduct(context.Background(), PurchaseRequest{ProductID: "p1", Quantity: 3}, "achat-key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer jwt-abc" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if gotKey != "achat-key-1" {
		t.Fatalf("expected idempotency key, got %q", gotKey)
	}
	if gotPath != "/transactions/achat" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if result.TransactionID != "tx-9" || result.Amount != 30000 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestBusinessRejectionSurfacesRemoteMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		io.WriteString(w, `{"error":"Solde insuffisant"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "jwt-abc")
	_, err := client.PurchaseProduct(context.Background(), PurchaseRequest{ProductID: "p1", Quantity: 1}, "")
	if err == nil {
		t.Fatal("expected rejection error")
	}

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeRejected {
		t.Fatalf("expected REMOTE_REJECTED, got %v", err)
	}
	if typed.Message() != "Solde insuffisant" {
		t.Fatalf("remote reason must surface verbatim, got %q", typed.Message())
	}
	if pkgerrors.IsRetryable(err) {
		t.Fatal("business rejection must be terminal")
	}
}

func TestServerFailureIsRetryable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "")
	_, err := client.GetBalance(context.Background())
	if err == nil {
		t.Fatal("expected failure")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnavailable {
		t.Fatalf("expected REMOTE_UNAVAILABLE, got %v", err)
	}
	if !pkgerrors.IsRetryable(err) {
		t.Fatal("5xx must be retryable")
	}
}

func TestTransportErrorIsRetryable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(t, server.URL, "")
	_, err := client.GetBalance(context.Background())
	if err == nil {
		t.Fatal("expected transport failure")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnavailable {
		t.Fatalf("expected REMOTE_UNAVAILABLE, got %v", err)
	}
}

func TestUnauthorizedMapsToUnauthorized(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"token expiré"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "stale")
	_, err := client.GetProfile(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestSearchProductsBuildsQuery(t *testing.T) {
	t.Parallel()

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `[{"id":"p1","nom":"Savon","prix":500,"categorie":"hygiene"}]`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "")
	products, err := client.SearchProducts(context.Background(), "savon", "hygiene")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Savon" || products[0].Price != 500 {
		t.Fatalf("unexpected products %+v", products)
	}
	if gotQuery != "categorie=hygiene&q=savon" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	if _, err := NewClient(config.APIConfig{}, nil, logg); err == nil {
		t.Fatal("expected missing base url to fail")
	}
	if _, err := NewClient(config.APIConfig{BaseURL: "https://api.example"}, nil, nil); err == nil {
		t.Fatal("expected missing logger to fail")
	}
}
