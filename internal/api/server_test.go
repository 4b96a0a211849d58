package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/config"
	"github.com/albapepper/hoopscore/internal/ladder"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

type emptyStandings struct{}

func (emptyStandings) Standings(context.Context, season.Season) ([]provider.TeamRecord, error) {
	return []provider.TeamRecord{}, nil
}

type emptyPlayers struct{}

func (emptyPlayers) Totals(context.Context, season.Season) []provider.PlayerTotals {
	return []provider.PlayerTotals{}
}

func (emptyPlayers) Advanced(context.Context, season.Season) []provider.PlayerAdvanced {
	return []provider.PlayerAdvanced{}
}

func testConfig() *config.Config {
	return &config.Config{
		CacheBackend:      config.BackendMemory,
		CORSAllowOrigins:  []string{"http://localhost:3000"},
		RateLimitEnabled:  true,
		RateLimitRequests: 4,
		RateLimitWindow:   time.Minute,
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	svc := ladder.New(ladder.Deps{Standings: emptyStandings{}, Players: emptyPlayers{}})
	return NewRouter(svc, cache.NewMemory(true, 0), nil, cfg)
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "203.0.113.7:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = false
	r := newTestRouter(cfg)

	tests := []struct {
		target string
		status int
	}{
		{"/", http.StatusOK},
		{"/health", http.StatusOK},
		{"/health/cache", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/v1/mvp?season=2022", http.StatusOK},
		{"/api/v1/mvp", http.StatusBadRequest},
		{"/api/v1/standings?season=2022", http.StatusOK},
		{"/api/v1/leaders?season=2022", http.StatusServiceUnavailable},
		{"/api/v1/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(r, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))
		})
	}
}

func TestEmptyLadderIsEmptyArray(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = false
	rec := serve(newTestRouter(cfg), "/api/v1/mvp?season=2022")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	r := newTestRouter(testConfig())

	// Burst is half the window allowance.
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, serve(r, "/health").Code)
	}
	rec := serve(r, "/health")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
