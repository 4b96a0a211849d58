package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/hoopscore/internal/api/respond"
	"github.com/albapepper/hoopscore/internal/assemble"
	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/config"
	"github.com/albapepper/hoopscore/internal/ladder"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

type stubStandings struct {
	err   error
	calls int32
}

func (s *stubStandings) Standings(_ context.Context, ss season.Season) ([]provider.TeamRecord, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return []provider.TeamRecord{
		{Season: ss, Abbreviation: "LOW", Wins: 20},
		{Season: ss, Abbreviation: "TOP", Wins: 60},
	}, nil
}

type stubPlayers struct{}

func (stubPlayers) Totals(_ context.Context, ss season.Season) []provider.PlayerTotals {
	return []provider.PlayerTotals{
		{Season: ss, Player: "Star", Team: "TOP", Games: 70, GamesStarted: 70, Points: 2100,
			Assists: 500, Rebounds: 600, Steals: 80, Blocks: 40, EffectiveFG: 0.58},
		{Season: ss, Player: "Scorer", Team: "LOW", Games: 70, GamesStarted: 70, Points: 1890,
			Assists: 300, Rebounds: 350, Steals: 70, Blocks: 20, EffectiveFG: 0.52},
		{Season: ss, Player: "Bench", Team: "TOP", Games: 70, GamesStarted: 10, Points: 700},
	}
}

func (stubPlayers) Advanced(_ context.Context, ss season.Season) []provider.PlayerAdvanced {
	return []provider.PlayerAdvanced{
		{Season: ss, Player: "Star", Team: "TOP", Games: 70},
		{Season: ss, Player: "Scorer", Team: "LOW", Games: 70},
		{Season: ss, Player: "Bench", Team: "TOP", Games: 70},
	}
}

type stubAwards struct{}

func (stubAwards) MVP(context.Context, season.Season) (string, error) { return "Scorer", nil }

type stubLeaders struct{}

func (stubLeaders) Leaders(_ context.Context, ss season.Season, topN int) ([]provider.GameLogSummary, error) {
	all := []provider.GameLogSummary{
		{Season: ss, PlayerID: 1, Player: "Star", Games: 70, PPG: 30},
		{Season: ss, PlayerID: 2, Player: "Scorer", Games: 70, PPG: 27},
	}
	if topN < len(all) {
		all = all[:topN]
	}
	return all, nil
}

func newHandler(t *testing.T, st *stubStandings, withLeaders bool) *Handler {
	t.Helper()
	deps := ladder.Deps{Standings: st, Players: stubPlayers{}, Awards: stubAwards{}}
	if withLeaders {
		deps.Leaders = stubLeaders{}
	}
	cfg := &config.Config{CacheBackend: config.BackendMemory}
	return New(ladder.New(deps), cache.NewMemory(true, 0), nil, cfg)
}

func get(h http.HandlerFunc, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) respond.ErrorResponse {
	t.Helper()
	var body respond.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetMVP(t *testing.T) {
	st := &stubStandings{}
	h := newHandler(t, st, false)

	rec := get(h.GetMVP, "/api/v1/mvp?season=2022")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=86400")

	var players []assemble.ScoredPlayer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 2, "bench player is below the games-started threshold")
	assert.Equal(t, "Star", players[0].Player)
	assert.False(t, players[0].IsMVP)
	assert.Equal(t, "Scorer", players[1].Player)
	assert.True(t, players[1].IsMVP)
}

func TestGetMVPCachesAndRevalidates(t *testing.T) {
	st := &stubStandings{}
	h := newHandler(t, st, false)

	first := get(h.GetMVP, "/api/v1/mvp?season=2022")
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := get(h.GetMVP, "/api/v1/mvp?season=2022")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	notModified := get(h.GetMVP, "/api/v1/mvp?season=2022", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, notModified.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&st.calls))

	// Different thresholds are a different ladder.
	get(h.GetMVP, "/api/v1/mvp?season=2022&minPoints=20")
	assert.Equal(t, int32(2), atomic.LoadInt32(&st.calls))
}

func TestGetMVPThresholds(t *testing.T) {
	h := newHandler(t, &stubStandings{}, false)

	rec := get(h.GetMVP, "/api/v1/mvp?season=2022&minPoints=28")
	require.Equal(t, http.StatusOK, rec.Code)
	var players []assemble.ScoredPlayer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 1)
	assert.Equal(t, "Star", players[0].Player)
}

func TestGetMVPBadRequests(t *testing.T) {
	h := newHandler(t, &stubStandings{}, false)

	tests := []struct {
		target string
		code   string
	}{
		{"/api/v1/mvp", "MISSING_SEASON"},
		{"/api/v1/mvp?season=abc", "INVALID_SEASON"},
		{"/api/v1/mvp?season=1900", "INVALID_SEASON"},
		{"/api/v1/mvp?season=2022&minPoints=lots", "INVALID_PARAMETER"},
		{"/api/v1/mvp?season=2022&minEffectiveFg=140", "INVALID_PARAMETER"},
		{"/api/v1/mvp?season=2022&minGamesStarted=-1", "INVALID_PARAMETER"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(h.GetMVP, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestGetMVPUpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"schema", &provider.SchemaMismatchError{Source: "bref", Season: 2022, Missing: "standings table"},
			http.StatusBadGateway, "UPSTREAM_SCHEMA"},
		{"fetch", &provider.FetchError{Source: "bref", Season: 2022, Status: 500},
			http.StatusBadGateway, "UPSTREAM_FETCH"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(t, &stubStandings{err: tt.err}, false)
			rec := get(h.GetMVP, "/api/v1/mvp?season=2022")
			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Contains(t, body.Error.Message, "2021-22")
			assert.Equal(t, "2021-22", body.Error.Season)

			// Errors are not cached.
			assert.Equal(t, 0, h.responses.Len())
		})
	}
}

func TestGetMVPBatch(t *testing.T) {
	h := newHandler(t, &stubStandings{}, false)

	rec := get(h.GetMVPBatch, "/api/v1/mvp/batch?from=2020&to=2022")
	require.Equal(t, http.StatusOK, rec.Code)

	var body ladder.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Requested)
	assert.Equal(t, 3, body.Succeeded)
	require.Len(t, body.Results, 3)
	assert.Equal(t, season.Season(2020), body.Results[0].Season)
	assert.Equal(t, season.Season(2022), body.Results[2].Season)
}

func TestGetMVPBatchBadRange(t *testing.T) {
	h := newHandler(t, &stubStandings{}, false)

	rec := get(h.GetMVPBatch, "/api/v1/mvp/batch?from=2022&to=2020")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_RANGE", decodeError(t, rec).Error.Code)

	rec = get(h.GetMVPBatch, "/api/v1/mvp/batch?from=1960&to=2022")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_RANGE", decodeError(t, rec).Error.Code)

	rec = get(h.GetMVPBatch, "/api/v1/mvp/batch?from=2020")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_SEASON", decodeError(t, rec).Error.Code)
}

func TestGetStandings(t *testing.T) {
	h := newHandler(t, &stubStandings{}, false)

	rec := get(h.GetStandings, "/api/v1/standings?season=2022")
	require.Equal(t, http.StatusOK, rec.Code)

	var teams []provider.TeamRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &teams))
	require.Len(t, teams, 2)
	assert.Equal(t, "TOP", teams[0].Abbreviation)
	assert.Equal(t, 1, teams[0].Standing)
	assert.Equal(t, 1, teams[0].Rank)
	assert.Equal(t, 0, teams[1].Rank)
}

func TestGetLeaders(t *testing.T) {
	h := newHandler(t, &stubStandings{}, true)

	rec := get(h.GetLeaders, "/api/v1/leaders?season=2022&top=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var leaders []provider.GameLogSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leaders))
	require.Len(t, leaders, 1)
	assert.Equal(t, "Star", leaders[0].Player)

	rec = get(h.GetLeaders, "/api/v1/leaders?season=2022&top=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_TOP", decodeError(t, rec).Error.Code)
}

func TestGetLeadersNotConfigured(t *testing.T) {
	h := newHandler(t, &stubStandings{}, false)

	rec := get(h.GetLeaders, "/api/v1/leaders?season=2022")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NOT_CONFIGURED", decodeError(t, rec).Error.Code)
}

func TestResponseTTL(t *testing.T) {
	h := newHandler(t, &stubStandings{}, false)
	assert.Equal(t, cache.TTLHistorical, h.responseTTL(2022))
	assert.Equal(t, cache.TTLCurrentSeason, h.responseTTL(config.CurrentSeason))

	h.cfg.ResponseCacheTTL = 5 * time.Minute
	assert.Equal(t, h.cfg.ResponseCacheTTL, h.responseTTL(config.CurrentSeason))
}

func TestHealthCheckCache(t *testing.T) {
	h := newHandler(t, &stubStandings{}, false)

	rec := get(h.HealthCheckCache, "/health/cache")
	assert.Equal(t, http.StatusOK, rec.Code)

	h.backend = func(context.Context) (map[string]interface{}, error) {
		return nil, errors.New("connection refused")
	}
	rec = get(h.HealthCheckCache, "/health/cache")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.backend = func(context.Context) (map[string]interface{}, error) {
		return map[string]interface{}{"entries": 3}, nil
	}
	rec = get(h.HealthCheckCache, "/health/cache")
	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "memory", body["backend"])
}
