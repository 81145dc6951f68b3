// Package backend is the HTTP client for the code-learning service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/codetutor/internal/model"
)

// DefaultTimeout bounds a single call; generation endpoints are slow.
const DefaultTimeout = 120 * time.Second

// Endpoint names under /api.
const (
	EndpointScaffolding = "generate_scaffolding"
	EndpointRunCode     = "run_code"
	EndpointAnalyzeCode = "analyze_code"
	EndpointQuiz        = "generate_quiz"
	EndpointCheckQuiz   = "check_quiz"
	EndpointLearning    = "generate_learning"
)

const maxBodyBytes = 8 << 20

// Client calls the backend endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	breaker    circuitbreaker.CircuitBreaker[[]byte]
	timeout    *time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The client itself is never modified.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = &timeout
	}
}

// WithLogger sets the logger for request events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBreaker enables a circuit breaker that fails fast after consecutive
// transport or server errors. Client errors (4xx) never trip it.
func WithBreaker(cfg model.BreakerConfig) Option {
	return func(c *Client) {
		if !cfg.Enabled {
			c.breaker = nil
			return
		}
		failures := cfg.Failures
		if failures <= 0 {
			failures = 3
		}
		cooldown := cfg.Cooldown
		if cooldown <= 0 {
			cooldown = 30 * time.Second
		}
		c.breaker = circuitbreaker.New[[]byte](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    cooldown,
			Timeout:     cooldown,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= failures
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				c.logger.Warn().
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("backend circuit breaker state change")
			},
		})
	}
}

// New creates a client for the backend at baseURL (for example http://localhost:8000).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: newHTTPClient(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.httpClient
		hc.Timeout = *c.timeout
		c.httpClient = &hc
	}
	return c
}

func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
	}
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the backend origin answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode >= http.StatusInternalServerError {
		return &APIError{Endpoint: "/", Status: resp.StatusCode, Detail: resp.Status}
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if c.breaker == nil {
		return c.doRequest(ctx, endpoint, body)
	}

	var (
		called   bool
		passthru error
	)
	data, err := c.breaker.Execute(ctx, func(ctx context.Context) ([]byte, error) {
		called = true
		data, err := c.doRequest(ctx, endpoint, body)
		if err != nil && !tripsBreaker(err) {
			passthru = err
			return nil, nil
		}
		return data, err
	})
	if err != nil && !called {
		return nil, fmt.Errorf("%s: %w: %v", endpoint, ErrBackendUnavailable, err)
	}
	if passthru != nil {
		return nil, passthru
	}
	return data, err
}

func tripsBreaker(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Retryable()
	}
	return true
}

func (c *Client) doRequest(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	url := c.baseURL + "/api/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Str("request_id", requestID).
			Dur("duration", time.Since(started)).
			Msg("backend request failed")
		return nil, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	event := c.logger.Debug()
	if resp.StatusCode >= http.StatusBadRequest {
		event = c.logger.Warn()
	}
	event.
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("duration", time.Since(started)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Detail:   parseDetail(data, resp.StatusCode),
		}
	}
	return data, nil
}

func decode(endpoint string, data []byte, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%s: failed to decode response: %v: %w", endpoint, err, ErrInvalidResponse)
	}
	return nil
}
