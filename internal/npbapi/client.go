// Package npbapi is a client for the NPB data API: team directory, player
// lists, summary statistics and stats tables.
package npbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/blockedby/npb-dashboard/internal/logger"
)

// DefaultBaseURL is where the API listens during local development.
const DefaultBaseURL = "http://localhost:8000"

// Client performs GET requests against the NPB API. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *RateLimiter
	log     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimiter sets the outbound rate limiter. nil disables limiting.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(c *Client) { c.limiter = rl }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: DefaultRateLimiter(),
		log:     logger.Get(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// getJSON fetches path and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("npb api %s: rate limit: %w", path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("npb api %s: create request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("path", path).Msg("npb api request failed")
		return fmt.Errorf("npb api %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("npb api response")

	if resp.StatusCode == http.StatusTooManyRequests && c.limiter != nil {
		if sec, _ := strconv.Atoi(resp.Header.Get("Retry-After")); sec > 0 {
			c.limiter.SetCooldown(time.Duration(sec) * time.Second)
		}
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("npb api %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{Status: resp.StatusCode, Path: path, Body: errorDetail(b)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("npb api %s: %w: %v", path, ErrDecode, err)
	}
	return nil
}

// errorDetail extracts the FastAPI {"detail": "..."} message when present.
func errorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(body))
}
