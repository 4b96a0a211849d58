// Package nbastats fetches team rosters and per-player game logs from the
// stats.nba.com JSON endpoints, and derives scoring leaders from them.
//
// Every response is a "resultSets" document: a list of tables, each with a
// header row and a rowSet of positional values.
package nbastats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/metrics"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

const source = "nbastats"

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	RequestsPerMinute int
	Timeout           time.Duration
	Workers           int
	Store             cache.Store
	Logger            *slog.Logger
	HTTPClient        *http.Client
}

// Client is the HTTP client for the league stats endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	workers    int
	store      cache.Store
	logger     *slog.Logger
}

// NewClient creates a rate-limited stats client.
func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 10
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	rps := float64(opts.RequestsPerMinute) / 60.0
	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(rps), opts.Workers),
		workers:    opts.Workers,
		store:      opts.Store,
		logger:     opts.Logger,
	}
}

// resultSet is one table of a stats response.
type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

type statsResponse struct {
	ResultSets []resultSet `json:"resultSets"`
}

// rows converts the table into header-keyed maps.
func (r resultSet) rows() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(r.RowSet))
	for _, row := range r.RowSet {
		m := make(map[string]interface{}, len(r.Headers))
		for i, h := range r.Headers {
			if i < len(row) {
				m[h] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

// get fetches an endpoint and returns its first result set.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, s season.Season) (resultSet, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return resultSet{}, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return resultSet{}, fmt.Errorf("create request: %w", err)
	}
	// The endpoints reject requests that do not look like they came from the site.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; hoopscore/1.0)")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return resultSet{}, &provider.FetchError{Source: source, Season: s, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		io.Copy(io.Discard, resp.Body)
		return resultSet{}, &provider.FetchError{Source: source, Season: s, Status: resp.StatusCode}
	}
	metrics.UpstreamRequests.WithLabelValues(source, "ok").Inc()

	var body statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return resultSet{}, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if len(body.ResultSets) == 0 {
		return resultSet{}, &provider.SchemaMismatchError{Source: source, Season: s, Missing: endpoint + " resultSets"}
	}
	return body.ResultSets[0], nil
}
