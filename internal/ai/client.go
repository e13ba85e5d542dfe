// Package ai is the HTTP client for the AI validation service.
//
// Each call is retried on transient failures and guarded by a circuit
// breaker; once the breaker opens, calls fail fast with
// termsim.ErrAIUnavailable until the breaker's timeout elapses.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/darwinyusef/termsim/internal/retry"
	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/sony/gobreaker/v2"
)

const maxErrorBody = 4 << 10

// Observer is notified after every call, successful or not.
type Observer interface {
	AICallCompleted(elapsed time.Duration, err error)
}

// BreakerConfig controls when the circuit opens and how long it stays open.
type BreakerConfig struct {
	MaxFailures uint32
	Timeout     time.Duration
}

// Client posts validation requests to the AI service.
type Client struct {
	endpoint    string
	http        *http.Client
	maxAttempts int
	backoff     []retry.BackoffOption
	breakerCfg  BreakerConfig
	logger      termsim.Logger
	observer    Observer

	exec    *retry.Executor
	breaker *gobreaker.CircuitBreaker[*termsim.AIResponse]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMaxAttempts sets how many times a transient failure is retried.
func WithMaxAttempts(n int) Option {
	return func(c *Client) { c.maxAttempts = n }
}

// WithBackoff tunes the delay between retries.
func WithBackoff(opts ...retry.BackoffOption) Option {
	return func(c *Client) { c.backoff = append(c.backoff, opts...) }
}

// WithBreaker overrides the circuit breaker thresholds. Zero fields keep
// their defaults.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		if cfg.MaxFailures > 0 {
			c.breakerCfg.MaxFailures = cfg.MaxFailures
		}
		if cfg.Timeout > 0 {
			c.breakerCfg.Timeout = cfg.Timeout
		}
	}
}

// WithLogger sets the logger for retry and breaker diagnostics.
func WithLogger(l termsim.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver registers a call observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient returns a client for endpoint, which must be an absolute http or
// https URL.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: ai endpoint %q must be an http(s) URL", termsim.ErrInvalidConfig, endpoint)
	}

	c := &Client{
		endpoint:    endpoint,
		http:        &http.Client{},
		maxAttempts: termsim.DefaultRetryMaxAttempts,
		breakerCfg: BreakerConfig{
			MaxFailures: termsim.DefaultBreakerFailures,
			Timeout:     termsim.DefaultBreakerTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.exec = retry.NewExecutor(retry.NewHTTPClassifier(), retry.NewExponentialBackoff(c.maxAttempts, c.backoff...))
	if c.logger != nil {
		c.exec = c.exec.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			c.logger.Verbose("AI validation attempt %d failed (%v), retrying in %s", attempt+1, err, delay)
		})
	}

	maxFailures := c.breakerCfg.MaxFailures
	c.breaker = gobreaker.NewCircuitBreaker[*termsim.AIResponse](gobreaker.Settings{
		Name:        "ai-validation",
		MaxRequests: 1,
		Timeout:     c.breakerCfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if c.logger != nil {
				c.logger.Info("Circuit breaker %s: %s -> %s", name, from, to)
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c, nil
}

// Validate sends req and returns the service's verdict. Every failure wraps
// termsim.ErrAIUnavailable.
func (c *Client) Validate(ctx context.Context, req termsim.AIRequest) (*termsim.AIResponse, error) {
	start := time.Now()
	resp, err := c.breaker.Execute(func() (*termsim.AIResponse, error) {
		return retry.Do(ctx, c.exec, func(ctx context.Context) (*termsim.AIResponse, error) {
			return c.post(ctx, req)
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: circuit open: %w", termsim.ErrAIUnavailable, err)
		} else {
			err = fmt.Errorf("%w: %w", termsim.ErrAIUnavailable, err)
		}
	}
	if c.observer != nil {
		c.observer.AICallCompleted(time.Since(start), err)
	}
	return resp, err
}

// State reports the breaker state for health output.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) post(ctx context.Context, req termsim.AIRequest) (*termsim.AIResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &retry.StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}

	var out termsim.AIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
