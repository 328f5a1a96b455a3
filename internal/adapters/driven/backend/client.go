// Package backend is the HTTP client for the external summarization and
// search service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
	"github.com/custodia-labs/clinref/internal/metrics"
)

const (
	// DefaultTimeout bounds a single non-streaming call
	DefaultTimeout = 60 * time.Second

	// DefaultRateLimit is the sustained requests per second sent to the backend
	DefaultRateLimit = 10.0

	// DefaultBurst is the limiter bucket size
	DefaultBurst = 5

	// maxErrorBody caps how much of an error response is kept in the message
	maxErrorBody = 512
)

// Verify interface compliance
var (
	_ driven.GuidelineAPI   = (*Client)(nil)
	_ driven.DrugAPI        = (*Client)(nil)
	_ driven.AnswerStreamer = (*Client)(nil)
)

// Client talks to the summarization backend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithAPIKey sets the key sent in the X-API-Key header
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
// Streaming calls are bounded by their context only.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit sets requests per second and burst. A non-positive rps
// disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultBurst),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newRequest builds a JSON request with the auth header set
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return req, nil
}

// send waits on the limiter and performs the request. The caller owns the
// response body. Non-2xx responses are closed and returned as BackendError.
func (c *Client) send(ctx context.Context, op string, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &domain.BackendError{Operation: op, Message: "rate limiter: " + err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &domain.BackendError{Operation: op, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &domain.BackendError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}
	return resp, nil
}

// doJSON performs one request/response round trip and decodes the body into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, op, method, path, body, out)
	metrics.RecordBackendRequest(op, outcome(err), time.Since(start))
	if err != nil {
		c.logger.Debug("backend request failed",
			zap.String("operation", op),
			zap.String("path", path),
			zap.Error(err))
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(ctx, op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &domain.BackendError{
			Operation:  op,
			StatusCode: http.StatusBadGateway,
			Message:    "decode response: " + err.Error(),
		}
	}
	return nil
}

// errorMessage extracts a readable message from an error response. JSON
// bodies with an "error", "detail" or "message" field are preferred over
// the raw text.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		for _, s := range []string{payload.Error, payload.Detail, payload.Message} {
			if s != "" {
				return s
			}
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return http.StatusText(resp.StatusCode)
}

func outcome(err error) string {
	var be *domain.BackendError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &be) && be.StatusCode == 0:
		return "transport_error"
	case errors.As(err, &be) && be.StatusCode >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
