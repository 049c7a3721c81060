// ABOUTME: HTTP client for the store management REST backend
// ABOUTME: Wraps API calls with auth headers, retries, throttling and uniform errors

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/markalston/storefront/internal/cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is the API client for the store backend
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	limiter        *rate.Limiter
	retries        uint
	retryDelay     time.Duration
	onUnauthorized func()
	categories     *cache.Cache[map[string]string]
	searches       singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithTokenSource attaches the session's token to every request
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetries sets how many extra attempts idempotent reads get on
// transport failures and 5xx responses
func WithRetries(n uint) Option {
	return func(c *Client) { c.retries = n }
}

// WithRateLimit throttles outgoing requests to rps per second. Zero disables.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUnauthorizedHandler registers fn to run when the backend rejects a
// token the client sent (HTTP 401)
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithCategoryCache sets the cache backing CategoryNames
func WithCategoryCache(cc *cache.Cache[map[string]string]) Option {
	return func(c *Client) { c.categories = cc }
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryDelay: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one backend request
type call struct {
	op     string // human readable operation, used in errors and logs
	method string
	path   string
	query  url.Values
	body   interface{}
	// credentials marks login and register, where a 401 means wrong
	// credentials rather than a rejected session token
	credentials bool
}

// errServerStatus marks a 5xx response that may be retried
var errServerStatus = errors.New("server error status")

// do sends the request and returns the response whatever its status.
// GET requests are retried on transport failures and 5xx responses.
func (c *Client) do(ctx context.Context, rc call) (*http.Response, error) {
	var payload []byte
	if rc.body != nil {
		b, err := json.Marshal(rc.body)
		if err != nil {
			return nil, &Error{Op: rc.op, Message: "failed to marshal request", Err: err}
		}
		payload = b
	}

	attempts := uint(1)
	if rc.method == http.MethodGet {
		attempts += c.retries
	}

	var last *http.Response
	err := retry.Do(
		func() error {
			resp, err := c.send(ctx, rc, payload)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 500 && rc.method == http.MethodGet {
				// keep the body so the final attempt can still be reported
				body, _ := io.ReadAll(resp.Body)
				resp.Body.Close()
				resp.Body = io.NopCloser(bytes.NewReader(body))
				last = resp
				return errServerStatus
			}
			last = resp
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && retry.IsRecoverable(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Debug("Retrying request", "op", rc.op, "attempt", n+1, "error", err)
		}),
	)
	if errors.Is(err, errServerStatus) && last != nil {
		return last, nil
	}
	if err != nil {
		return nil, c.handleRequestError(ctx, rc.op, err)
	}
	return last, nil
}

func (c *Client) send(ctx context.Context, rc call, payload []byte) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := c.baseURL + rc.path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, rc.method, target, body)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	authenticated := false
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("API request failed", "op", rc.op, "method", rc.method, "path", rc.path, "request_id", requestID, "error", err)
		return nil, err
	}
	slog.Debug("API request",
		"op", rc.op,
		"method", rc.method,
		"path", rc.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode == http.StatusUnauthorized && authenticated && !rc.credentials && c.onUnauthorized != nil {
		slog.Warn("Backend rejected session token", "op", rc.op, "request_id", requestID)
		c.onUnauthorized()
	}

	return resp, nil
}

// handleRequestError converts transport and context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &Error{Op: op, Message: "request canceled", Err: err}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Op: op, Message: "request timed out", Err: err}
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Op: op, Message: fmt.Sprintf("cannot connect to backend at %s", c.baseURL), Err: err}
}

// decodeJSON decodes a successful response body into v
func decodeJSON(resp *http.Response, op string, v interface{}) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &DecodeError{Op: op, Reason: "invalid JSON", Err: err}
	}
	return nil
}

// readBody reads a successful response body for shape inspection
func readBody(resp *http.Response, op string) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}
	return bytes.TrimSpace(data), nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
