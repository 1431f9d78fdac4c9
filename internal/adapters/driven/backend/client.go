package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

// Ensure Client implements the backend ports.
var (
	_ driven.ConnectorBackend   = (*Client)(nil)
	_ driven.EntitlementBackend = (*Client)(nil)
	_ driven.DriveBackend       = (*Client)(nil)
)

// CorrelationHeader carries a per-request id for server-side tracing.
const CorrelationHeader = "X-Correlation-Id"

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://app.example.com/api".
	BaseURL string
	// Token is the bearer token. Empty sends unauthenticated requests.
	Token string
	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration
	// RequestsPerSecond paces requests. Zero disables pacing.
	RequestsPerSecond float64
	// MaxRetries is the retry budget for transient failures.
	MaxRetries int
	// Transport replaces http.DefaultTransport, mainly for tests.
	Transport http.RoundTripper
}

// ConfigFromSettings builds a Config from client settings.
func ConfigFromSettings(s domain.BackendSettings) Config {
	return Config{
		BaseURL:           s.URL,
		Token:             s.Token,
		Timeout:           s.Timeout,
		RequestsPerSecond: s.RequestsPerSecond,
		MaxRetries:        3,
	}
}

// Client talks to the workspace management API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	newID      func() string
}

// NewClient creates a backend client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = domain.DefaultBackendURL
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	transport := base
	if token := strings.TrimSpace(cfg.Token); token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   base,
		}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		limiter:    NewRateLimiter(cfg.RequestsPerSecond),
		maxRetries: cfg.MaxRetries,
		baseDelay:  100 * time.Millisecond,
		maxDelay:   2 * time.Second,
		newID:      uuid.NewString,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON sends a JSON request and decodes a JSON answer into out. Transient
// failures are retried for idempotent methods only; a POST is retried on 429
// alone, since the server has refused it without acting. Statuses listed in
// accept are returned instead of treated as errors, with their body decoded
// into out.
func (c *Client) doJSON(
	ctx context.Context,
	method, requestPath string,
	body any,
	out any,
	accept ...int,
) (int, error) {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s: %w", method, requestPath, err)
		}
	}

	safe := idempotent(method)
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, err
		}

		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, bodyReader)
		if err != nil {
			return 0, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		status, payload, err := c.send(req)
		if err != nil {
			if safe && attempt < c.maxRetries && ctx.Err() == nil {
				logger.Debug("backend: %s %s failed (attempt %d): %v", method, requestPath, attempt+1, err)
				if waitErr := waitWithContext(ctx, c.retryDelay(attempt+1, "")); waitErr != nil {
					return 0, waitErr
				}
				continue
			}
			return 0, fmt.Errorf("%s %s: %w", method, requestPath, err)
		}

		if (status.code >= 200 && status.code <= 299) || containsStatus(accept, status.code) {
			if out == nil || len(payload) == 0 {
				return status.code, nil
			}
			if err := json.Unmarshal(payload, out); err != nil {
				return status.code, fmt.Errorf("decode %s %s: %w", method, requestPath, err)
			}
			return status.code, nil
		}

		if retryable(status.code, safe) && attempt < c.maxRetries {
			delay := c.retryDelay(attempt+1, status.retryAfter)
			if status.code == http.StatusTooManyRequests {
				c.limiter.Backoff(delay)
			}
			logger.Debug("backend: %s %s returned %d, retrying in %s", method, requestPath, status.code, delay)
			if waitErr := waitWithContext(ctx, delay); waitErr != nil {
				return 0, waitErr
			}
			continue
		}

		return status.code, apiError(status.code, payload)
	}
}

// responseStatus is what send extracts from a response besides the body.
type responseStatus struct {
	code       int
	retryAfter string
}

// send performs one request and reads the whole body.
func (c *Client) send(req *http.Request) (responseStatus, []byte, error) {
	req.Header.Set(CorrelationHeader, c.newID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return responseStatus{}, nil, err
	}
	payload, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return responseStatus{}, nil, readErr
	}
	return responseStatus{code: resp.StatusCode, retryAfter: resp.Header.Get("Retry-After")}, payload, nil
}

func retryable(code int, safe bool) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return safe && code >= 500 && code <= 599
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func containsStatus(list []int, code int) bool {
	for _, c := range list {
		if c == code {
			return true
		}
	}
	return false
}

// apiError builds an APIError from an error body. The detail field may be a
// string or a list of validation entries with a msg field.
func apiError(code int, payload []byte) *domain.APIError {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	_ = json.Unmarshal(payload, &body)

	detail := body.Message
	if len(body.Detail) > 0 {
		var s string
		var list []struct {
			Msg string `json:"msg"`
		}
		switch {
		case json.Unmarshal(body.Detail, &s) == nil:
			detail = s
		case json.Unmarshal(body.Detail, &list) == nil:
			msgs := make([]string, 0, len(list))
			for _, item := range list {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			detail = strings.Join(msgs, "; ")
		}
	}
	return &domain.APIError{StatusCode: code, Detail: strings.TrimSpace(detail)}
}

func (c *Client) retryDelay(attempt int, retryAfterHeader string) time.Duration {
	if retryAfter := parseRetryAfter(retryAfterHeader); retryAfter > 0 {
		if retryAfter > c.maxDelay {
			return c.maxDelay
		}
		return retryAfter
	}
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxDelay {
			return c.maxDelay
		}
	}
	return delay
}

func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if ts, err := http.ParseTime(header); err == nil {
		if delta := time.Until(ts); delta > 0 {
			return delta
		}
	}
	return 0
}

func jsonUnmarshal(payload []byte, out any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}
