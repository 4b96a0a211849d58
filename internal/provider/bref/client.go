// Package bref fetches team standings and MVP award history from the
// Basketball-Reference HTML pages.
//
// The site rate-limits by answering 429. A 429 is retried exactly once after
// a fixed backoff; the backoff sleeps only the calling goroutine. Requests are
// additionally paced by a token bucket limiter.
package bref

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/metrics"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

const (
	source    = "basketball-reference"
	userAgent = "Mozilla/5.0 (compatible; hoopscore/1.0)"
	maxBody   = 8 << 20
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	RequestsPerMinute int
	Backoff           time.Duration
	Timeout           time.Duration
	Store             cache.Store
	Logger            *slog.Logger
	HTTPClient        *http.Client
}

// Client is the HTTP client for Basketball-Reference pages.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	backoff    time.Duration
	store      cache.Store
	logger     *slog.Logger
}

// NewClient creates a rate-limited Basketball-Reference client.
func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 20
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 10 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	rps := float64(opts.RequestsPerMinute) / 60.0
	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		backoff:    opts.Backoff,
		store:      opts.Store,
		logger:     opts.Logger,
	}
}

// getDocument GETs path and parses it, retrying a 429 once after the backoff.
func (c *Client) getDocument(ctx context.Context, path string, s season.Season) (*goquery.Document, error) {
	body, status, err := c.get(ctx, path)
	if err != nil {
		return nil, &provider.FetchError{Source: source, Season: s, Err: err}
	}

	if status == http.StatusTooManyRequests {
		c.logger.Warn("Rate limit reached, retrying after delay",
			"path", path, "season", s.Label(), "backoff", c.backoff)
		metrics.UpstreamRequests.WithLabelValues(source, "rate_limited").Inc()

		timer := time.NewTimer(c.backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, &provider.FetchError{Source: source, Season: s, Err: ctx.Err()}
		}

		body, status, err = c.get(ctx, path)
		if err != nil {
			return nil, &provider.FetchError{Source: source, Season: s, Err: err}
		}
		if status == http.StatusTooManyRequests {
			return nil, &provider.FetchError{Source: source, Season: s, Status: status, Err: provider.ErrRateLimited}
		}
	}

	if status != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return nil, &provider.FetchError{Source: source, Season: s, Status: status,
			Err: fmt.Errorf("%s: %s", path, truncate(body, 200))}
	}
	metrics.UpstreamRequests.WithLabelValues(source, "ok").Inc()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(uncomment(body)))
	if err != nil {
		return nil, &provider.FetchError{Source: source, Season: s, Status: status,
			Err: fmt.Errorf("parse html: %w", err)}
	}
	return doc, nil
}

// get performs one rate-limited GET and returns the body and status.
func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return nil, 0, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// uncomment exposes tables the site ships inside HTML comments so that
// selectors can reach them.
func uncomment(body []byte) []byte {
	body = bytes.ReplaceAll(body, []byte("<!--"), nil)
	return bytes.ReplaceAll(body, []byte("-->"), nil)
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
