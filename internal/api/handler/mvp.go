package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/albapepper/hoopscore/internal/api/respond"
	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/config"
	"github.com/albapepper/hoopscore/internal/pipeline"
	"github.com/albapepper/hoopscore/internal/season"
)

// maxBatchSeasons bounds /mvp/batch ranges.
const maxBatchSeasons = 30

// GetMVP returns a season's MVP ladder.
// @Summary Get MVP ladder
// @Description Returns eligible players for a season ordered by composite score, with the actual MVP flagged.
// @Tags mvp
// @Produce json
// @Param season query string true "Season (2022, 2021-22 or 2021-2022)"
// @Param minPoints query number false "Minimum points per game, exclusive (default 15)"
// @Param minEffectiveFg query number false "Minimum effective FG percentage, exclusive (default 40)"
// @Param minGamesStarted query int false "Minimum games started, exclusive (default 50)"
// @Success 200 {array} assemble.ScoredPlayer
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /api/v1/mvp [get]
func (h *Handler) GetMVP(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSeason(w, r, "season")
	if !ok {
		return
	}
	th, ok := h.thresholds(w, r)
	if !ok {
		return
	}

	ttl := h.responseTTL(s)
	cacheKey := fmt.Sprintf("mvp:%s:%v:%d:%v", s, th.MinPoints, th.MinGamesStarted, th.MinEffectiveFG)
	h.serveCached(w, r, cacheKey, ttl, func(ctx context.Context) (interface{}, error) {
		res, err := h.ladder.Evaluate(ctx, s, th)
		if err != nil {
			return nil, err
		}
		return res.Players, nil
	}, s)
}

// GetMVPBatch returns ladders for a range of seasons.
// @Summary Get MVP ladders for a season range
// @Description Evaluates every season in [from, to]. Seasons that fail are listed in errors without failing the request.
// @Tags mvp
// @Produce json
// @Param from query string true "First season"
// @Param to query string true "Last season"
// @Param minPoints query number false "Minimum points per game, exclusive (default 15)"
// @Param minEffectiveFg query number false "Minimum effective FG percentage, exclusive (default 40)"
// @Param minGamesStarted query int false "Minimum games started, exclusive (default 50)"
// @Success 200 {object} ladder.BatchResult
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/mvp/batch [get]
func (h *Handler) GetMVPBatch(w http.ResponseWriter, r *http.Request) {
	from, ok := requireSeason(w, r, "from")
	if !ok {
		return
	}
	to, ok := requireSeason(w, r, "to")
	if !ok {
		return
	}
	seasons := season.Range(from, to)
	if len(seasons) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_RANGE", "from must not be after to")
		return
	}
	if len(seasons) > maxBatchSeasons {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_RANGE",
			fmt.Sprintf("at most %d seasons per request", maxBatchSeasons))
		return
	}
	th, ok := h.thresholds(w, r)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("mvp-batch:%s:%s:%v:%d:%v", from, to, th.MinPoints, th.MinGamesStarted, th.MinEffectiveFG)
	h.serveCached(w, r, cacheKey, h.responseTTL(to), func(ctx context.Context) (interface{}, error) {
		return h.ladder.EvaluateSeasons(ctx, seasons, th)
	}, 0)
}

// GetStandings returns a season's ranked standings.
// @Summary Get team standings
// @Description Returns the season's teams ordered by wins with standing and rank assigned.
// @Tags standings
// @Produce json
// @Param season query string true "Season"
// @Success 200 {array} provider.TeamRecord
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /api/v1/standings [get]
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSeason(w, r, "season")
	if !ok {
		return
	}
	h.serveCached(w, r, "standings:"+s.String(), h.responseTTL(s), func(ctx context.Context) (interface{}, error) {
		return h.ladder.Standings(ctx, s)
	}, s)
}

// GetLeaders returns a season's top scorers by game log.
// @Summary Get scoring leaders
// @Description Returns the top players by points per game computed from per-player game logs.
// @Tags leaders
// @Produce json
// @Param season query string true "Season"
// @Param top query int false "Number of players (default 10, max 50)"
// @Success 200 {array} provider.GameLogSummary
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /api/v1/leaders [get]
func (h *Handler) GetLeaders(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSeason(w, r, "season")
	if !ok {
		return
	}
	top := 10
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_TOP", "top must be an integer between 1 and 50")
			return
		}
		top = n
	}
	key := fmt.Sprintf("leaders:%s:%d", s, top)
	h.serveCached(w, r, key, cache.TTLLeaders, func(ctx context.Context) (interface{}, error) {
		return h.ladder.Leaders(ctx, s, top)
	}, s)
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// serveCached answers from the response cache, or computes, encodes and
// caches the value. Errors are never cached.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration,
	compute func(context.Context) (interface{}, error), s season.Season) {

	if data, etag, ok := h.responses.Lookup(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := compute(r.Context())
	if err != nil {
		respond.WriteLadderError(w, err, s)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "ENCODE_ERROR", "Failed to encode response", err.Error())
		return
	}

	etag := h.responses.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

func (h *Handler) thresholds(w http.ResponseWriter, r *http.Request) (pipeline.Thresholds, bool) {
	q := r.URL.Query()
	th, err := h.ladder.ParseThresholds(q.Get("minPoints"), q.Get("minEffectiveFg"), q.Get("minGamesStarted"))
	if err != nil {
		respond.WriteLadderError(w, err, 0)
		return th, false
	}
	return th, true
}

// requireSeason reads a required season query parameter.
func requireSeason(w http.ResponseWriter, r *http.Request, param string) (season.Season, bool) {
	v := r.URL.Query().Get(param)
	if v == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_SEASON",
			fmt.Sprintf("%s query parameter is required", param))
		return 0, false
	}
	s, err := season.Parse(v)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_SEASON",
			fmt.Sprintf("%s must be a season such as 2022 or 2021-22", param), err.Error())
		return 0, false
	}
	return s, true
}

// responseTTL is short for a season still in progress.
func (h *Handler) responseTTL(s season.Season) time.Duration {
	if s < config.CurrentSeason {
		return cache.TTLHistorical
	}
	if h.cfg.ResponseCacheTTL > 0 {
		return h.cfg.ResponseCacheTTL
	}
	return cache.TTLCurrentSeason
}
