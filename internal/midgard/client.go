// Package midgard is a client for the Midgard v2 history endpoints.
package midgard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"midgard-history/internal/domain"
	"midgard-history/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL   = "https://midgard.ninerealms.com"
	DefaultTimeout   = 30 * time.Second
	DefaultDepthPool = "BTC.BTC"
	DefaultInterval  = "hour"
)

// ErrRateLimited is returned when the upstream answers 429.
var ErrRateLimited = errors.New("midgard: rate limited (429)")

// StatusError is returned for any other non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("midgard: unexpected status %d: %s", e.Code, e.Body)
}

// TransportError wraps network failures and unreadable bodies.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "midgard: transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a rate limit or a transport failure.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.Is(err, ErrRateLimited) || errors.As(err, &te)
}

// Client performs history requests against a Midgard instance.
type Client struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	depthPool string
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithRateLimit paces outgoing requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithDepthPool selects the pool whose depth history is tracked.
func WithDepthPool(pool string) ClientOption {
	return func(c *Client) {
		if pool != "" {
			c.depthPool = pool
		}
	}
}

// NewClient creates a Midgard client for baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: DefaultTimeout},
		depthPool: DefaultDepthPool,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the history endpoint for a series.
func (c *Client) Path(s domain.Series) string {
	switch s {
	case domain.SeriesDepth:
		return "/v2/history/depths/" + c.depthPool
	case domain.SeriesRunePool:
		return "/v2/history/runepool"
	case domain.SeriesSwaps:
		return "/v2/history/swaps"
	case domain.SeriesEarnings:
		return "/v2/history/earnings"
	default:
		return ""
	}
}

// history performs one GET of hourly intervals and decodes the body into out.
// No retries happen here; the caller owns the backoff policy.
func (c *Client) history(ctx context.Context, s domain.Series, from int64, count int, out interface{}) error {
	path := c.Path(s)
	if path == "" {
		return fmt.Errorf("midgard: no endpoint for series %q", s)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	q := url.Values{}
	q.Set("interval", DefaultInterval)
	q.Set("from", strconv.FormatInt(from, 10))
	q.Set("count", strconv.Itoa(count))
	endpoint := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		observability.RecordUpstreamLatency(string(s), "error", time.Since(start).Seconds())
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	observability.RecordUpstreamLatency(string(s), strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
