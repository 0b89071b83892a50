package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"match-sync/core/retry"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client executes authenticated calls against the remote API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	policy     retry.Policy
	recorder   Recorder
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the per-attempt metric recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithRetryPolicy overrides the retry policy from Config.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) {
		c.policy = p.Normalize()
	}
}

// New creates a Client. The base URL is required; the token is checked on
// every authenticated call so that unauthenticated endpoints stay usable.
func New(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, &ConfigurationError{Err: ErrMissingBaseURL}
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("invalid api base url %q: %w", baseURL, err)}
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		policy:     cfg.RetryPolicy(),
		recorder:   nopRecorder{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithRecorder returns a shallow copy of c that reports to r.
// Runs use it to attach their own metrics without rebuilding the client.
func (c *Client) WithRecorder(r Recorder) *Client {
	clone := *c
	if r == nil {
		r = nopRecorder{}
	}
	clone.recorder = r
	return &clone
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs an authenticated call and returns the raw response body.
// body is JSON encoded when non-nil.
func (c *Client) Request(ctx context.Context, method, path string, body any, query url.Values) ([]byte, error) {
	if c.token == "" {
		return nil, &ConfigurationError{Err: ErrMissingToken}
	}
	return c.execute(ctx, method, path, body, query, true)
}

// RequestJSON performs an authenticated call and decodes the response into out.
func (c *Client) RequestJSON(ctx context.Context, method, path string, body any, query url.Values, out any) error {
	raw, err := c.Request(ctx, method, path, body, query)
	if err != nil {
		return err
	}
	return decode(method, path, raw, out)
}

func (c *Client) execute(ctx context.Context, method, path string, body any, query url.Values, authenticated bool) ([]byte, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s payload: %w", method, path, err)
		}
		payload = encoded
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		raw, err := c.attempt(ctx, method, path, fullURL, payload, authenticated)
		if err == nil {
			return raw, nil
		}
		if apiErr, ok := AsAPIError(err); ok && (apiErr.IsServerError() || apiErr.IsNetworkError()) {
			return nil, err
		}
		// 4xx and anything else unexpected is never retried.
		return nil, retry.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("API request failed, retrying",
			zap.String("method", method),
			zap.String("endpoint", path),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	raw, err := retry.Do(ctx, c.policy, op, notify)
	if err != nil {
		if _, ok := AsAPIError(err); !ok {
			// Context cancellation surfaces as a network-level failure.
			err = &APIError{Method: method, Endpoint: path, Err: err}
		}
		c.logger.Error("API request failed",
			zap.String("method", method),
			zap.String("endpoint", path),
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		return nil, err
	}
	return raw, nil
}

// attempt performs one HTTP round trip and records its metric.
func (c *Client) attempt(ctx context.Context, method, path, fullURL string, payload []byte, authenticated bool) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build request %s %s: %w", method, path, err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(path, method, 0, time.Since(start))
		return nil, &APIError{Method: method, Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.record(path, method, resp.StatusCode, time.Since(start))
	if readErr != nil {
		return nil, &APIError{Method: method, Endpoint: path, Err: fmt.Errorf("read response body: %w", readErr)}
	}

	c.logger.Debug("API request",
		zap.String("method", method),
		zap.String("endpoint", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, &APIError{
		Method:     method,
		Endpoint:   path,
		StatusCode: resp.StatusCode,
		Body:       string(raw),
		Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
	}
}

func (c *Client) record(path, method string, status int, d time.Duration) {
	c.recorder.RecordCall(CallMetric{
		Endpoint:   path,
		Method:     method,
		StatusCode: status,
		Duration:   d,
	})
}

func decode(method, path string, raw []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("decode %s %s: empty response body", method, path)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
