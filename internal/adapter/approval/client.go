// Package approval talks to the external service that must authorize every
// transfer before money moves.
package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// StatusApproved is the only status that authorizes a transfer.
const StatusApproved = "success"

const (
	DefaultTimeout          = 30 * time.Second
	DefaultFailureThreshold = 5
	DefaultOpenTimeout      = 30 * time.Second

	maxResponseBytes = 64 << 10
)

// ErrUnavailable is returned when the breaker is open and the gateway is not
// called at all.
var ErrUnavailable = errors.New("approval gateway unavailable")

// Config configures the approval client.
type Config struct {
	URL              string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Client implements usecase.ApprovalGateway over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new approval client.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultOpenTimeout
	}

	c := &Client{
		url:        strings.TrimSpace(cfg.URL),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "approval").Logger(),
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "approval",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type response struct {
	Status string `json:"status"`
}

// statusError marks a server-side failure. It counts against the breaker
// but is reported to the caller as a denial.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("approval gateway returned status %d", e.code)
}

// Approve asks the gateway whether a transfer may proceed. Only a response
// with status "success" approves. Transport failures and an open breaker
// are returned as errors.
func (c *Client) Approve(ctx context.Context) (bool, error) {
	if c.url == "" {
		return false, errors.New("approval gateway URL is empty")
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx)
	})

	var se *statusError
	switch {
	case errors.As(err, &se):
		c.logger.Warn().Int("status_code", se.code).Msg("approval gateway error response, treating as denied")
		return false, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	case err != nil:
		return false, err
	}

	return result.(bool), nil
}

func (c *Client) call(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute request to approval gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return false, &statusError{code: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status_code", resp.StatusCode).Msg("approval gateway rejected request")
		return false, nil
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		c.logger.Warn().Err(err).Msg("undecodable approval response, treating as denied")
		return false, nil
	}

	return body.Status == StatusApproved, nil
}

// State reports the breaker state for readiness checks.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
