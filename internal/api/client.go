// Package api is the HTTP boundary to the marketplace/wallet service. It
// centralizes auth, logging, idempotency keys, and the mapping of transport
// and business failures into domain error codes; nothing above this package
// touches net/http.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/zoudousouk/souk-go/pkg/config"
	pkgerrors "github.com/zoudousouk/souk-go/pkg/errors"
	"github.com/zoudousouk/souk-go/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("api base url is required")
	errLoggerRequired  = errors.New("api logger is required")
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means the call goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

// StaticToken is a fixed TokenSource, mostly for tests and one-off scripts.
type StaticToken string

func (s StaticToken) Token(context.Context) string { return string(s) }

// Client talks to the remote REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	tokens     TokenSource
	logger     *logger.Logger
}

// NewClient validates the configuration and builds the API client.
func NewClient(cfg config.APIConfig, tokens TokenSource, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		tokens:     tokens,
		logger:     logg,
	}, nil
}

// NewIdempotencyKey returns a unique key for wallet operations.
func NewIdempotencyKey(prefix string) string {
	key := strings.TrimSpace(prefix)
	if key == "" {
		key = "souk"
	}
	return fmt.Sprintf("%s-%s", key, uuid.NewString())
}

type request struct {
	operation      string
	method         string
	path           string
	query          url.Values
	body           any
	out            any
	idempotencyKey string
}

// errorBody is the failure shape the API returns: {"error": "..."}.
type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, req request) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var payload io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		payload = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.tokens.Token(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if req.idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.idempotencyKey)
	}

	c.log(ctx, "request", req.operation, map[string]any{
		"method": req.method,
		"path":   req.path,
	})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log(ctx, "error", req.operation, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, fmt.Sprintf("calling %s", req.operation))
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return c.mapFailure(ctx, req.operation, resp)
	}

	if req.out != nil {
		if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
			c.log(ctx, "error", req.operation, map[string]any{"error": err.Error()})
			return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, fmt.Sprintf("decoding %s response", req.operation))
		}
	}

	c.log(ctx, "response", req.operation, map[string]any{"status": resp.StatusCode})
	return nil
}

func (c *Client) mapFailure(ctx context.Context, operation string, resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &body)

	message := strings.TrimSpace(body.Error)
	if message == "" {
		message = fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
	}

	c.log(ctx, "error", operation, map[string]any{
		"status": resp.StatusCode,
		"error":  message,
	})

	return pkgerrors.New(codeForStatus(resp.StatusCode), message)
}

// codeForStatus translates HTTP statuses into the domain taxonomy: business
// rejections stay terminal and keep the remote's reason, transport-level and
// server-side failures are retryable.
func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusTooManyRequests:
		return pkgerrors.CodeUnavailable
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeRejected
		}
		return pkgerrors.CodeUnavailable
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("api %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Debug(ctx, fmt.Sprintf("api %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"password", "token", "secret", "phone", "email", "reference"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
