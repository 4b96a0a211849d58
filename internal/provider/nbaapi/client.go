// Package nbaapi fetches per-season player totals and advanced metrics from
// the NBA statistics GraphQL API.
//
// The two record sets are independent queries. A failed, missing or malformed
// response is not an error to the caller: it yields an empty slice and a
// warning, since callers batch many seasons and must tolerate gaps.
package nbaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/metrics"
)

const source = "nbaapi"

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	URL               string
	RequestsPerMinute int
	Timeout           time.Duration
	Store             cache.Store
	Logger            *slog.Logger
	HTTPClient        *http.Client
}

// Client is the GraphQL client for the statistics API.
type Client struct {
	httpClient *http.Client
	url        string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	store      cache.Store
	logger     *slog.Logger
}

// NewClient creates a rate-limited, circuit-broken GraphQL client.
func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 30
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger

	settings := gobreaker.Settings{
		Name:        source,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker state changed", "service", name, "from", from.String(), "to", to.String())
		},
	}

	rps := float64(opts.RequestsPerMinute) / 60.0
	return &Client{
		httpClient: opts.HTTPClient,
		url:        opts.URL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		store:      opts.Store,
		logger:     logger,
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// errMalformed marks responses that arrived but could not be used.
var errMalformed = errors.New("malformed response")

// query posts a GraphQL query and returns the raw value of data[field].
func (c *Client) query(ctx context.Context, q string, vars map[string]interface{}, field string) (json.RawMessage, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, q, vars, field)
	})
	if err != nil {
		return nil, err
	}
	return out.(json.RawMessage), nil
}

func (c *Client) post(ctx context.Context, q string, vars map[string]interface{}, field string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(graphQLRequest{Query: q, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("http request %s: %w", field, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("%s returned %d: %s", field, resp.StatusCode, truncate(body, 200))
	}
	metrics.UpstreamRequests.WithLabelValues(source, "ok").Inc()

	var result graphQLResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", errMalformed, err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", errMalformed, result.Errors[0].Message)
	}
	raw, ok := result.Data[field]
	if !ok || string(raw) == "null" {
		return nil, fmt.Errorf("%w: data.%s missing", errMalformed, field)
	}
	return raw, nil
}

// truncate returns a truncated string for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
