// Package ladder orchestrates a season's MVP ladder: fetch, merge, score and
// assemble. It also runs multi-season batches and cache warm-ups over a
// bounded worker pool.
package ladder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/hoopscore/internal/assemble"
	"github.com/albapepper/hoopscore/internal/averages"
	"github.com/albapepper/hoopscore/internal/metrics"
	"github.com/albapepper/hoopscore/internal/pipeline"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/ranking"
	"github.com/albapepper/hoopscore/internal/scoring"
	"github.com/albapepper/hoopscore/internal/season"
)

// --------------------------------------------------------------------------
// Collaborators
// --------------------------------------------------------------------------

// StandingsSource returns a season's unranked team records.
type StandingsSource interface {
	Standings(ctx context.Context, s season.Season) ([]provider.TeamRecord, error)
}

// PlayerSource returns a season's player records. An empty slice means the
// source had nothing for the season.
type PlayerSource interface {
	Totals(ctx context.Context, s season.Season) []provider.PlayerTotals
	Advanced(ctx context.Context, s season.Season) []provider.PlayerAdvanced
}

// AwardSource returns a season's MVP, or "" if unknown.
type AwardSource interface {
	MVP(ctx context.Context, s season.Season) (string, error)
}

// LeaderSource returns a season's top scorers by game log.
type LeaderSource interface {
	Leaders(ctx context.Context, s season.Season, topN int) ([]provider.GameLogSummary, error)
}

// Deps wires a Service. Awards and Leaders are optional. A nil Defaults means
// pipeline.DefaultThresholds; a non-nil one is used as given, zeros included.
type Deps struct {
	Standings StandingsSource
	Players   PlayerSource
	Awards    AwardSource
	Leaders   LeaderSource
	Averages  *averages.Table
	Defaults  *pipeline.Thresholds
	Workers   int
	Logger    *slog.Logger
}

// ErrNoLeaders is returned by Leaders when no leader source is configured.
var ErrNoLeaders = errors.New("leaders source not configured")

// Service builds MVP ladders.
type Service struct {
	standings StandingsSource
	players   PlayerSource
	awards    AwardSource
	leaders   LeaderSource
	averages  *averages.Table
	defaults  pipeline.Thresholds
	workers   int
	logger    *slog.Logger
}

// New creates a Service.
func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Workers < 1 {
		d.Workers = 10
	}
	defaults := pipeline.DefaultThresholds()
	if d.Defaults != nil {
		defaults = *d.Defaults
	}
	return &Service{
		standings: d.Standings,
		players:   d.Players,
		awards:    d.Awards,
		leaders:   d.Leaders,
		averages:  d.Averages,
		defaults:  defaults,
		workers:   d.Workers,
		logger:    d.Logger,
	}
}

// Defaults returns the thresholds applied when a caller supplies none.
func (s *Service) Defaults() pipeline.Thresholds { return s.defaults }

// --------------------------------------------------------------------------
// Single season
// --------------------------------------------------------------------------

// Result is one season's ladder.
type Result struct {
	Season   season.Season           `json:"season"`
	Label    string                  `json:"label"`
	MVP      string                  `json:"mvp,omitempty"`
	Players  []assemble.ScoredPlayer `json:"players"`
	Warnings []pipeline.Warning      `json:"warnings,omitempty"`
	Stats    pipeline.Stats          `json:"stats"`
	Duration time.Duration           `json:"-"`
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("season=%s players=%d eligible=%d warnings=%d mvp=%q dur=%s",
		r.Label, len(r.Players), r.Stats.Eligible, len(r.Warnings), r.MVP,
		r.Duration.Round(time.Millisecond))
}

// Evaluate builds one season's ladder.
//
// Standings are required: a fetch failure or schema mismatch is returned as
// the error. Player stats and the award lookup are best-effort and only
// produce warnings.
func (s *Service) Evaluate(ctx context.Context, ss season.Season, th pipeline.Thresholds) (Result, error) {
	start := time.Now()
	if err := th.Validate(); err != nil {
		return Result{}, &ConfigurationError{Param: "thresholds", Err: err}
	}

	teams, err := s.standings.Standings(ctx, ss)
	if err != nil {
		metrics.SeasonsEvaluated.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("standings: %w", err)
	}

	var (
		totals   []provider.PlayerTotals
		advanced []provider.PlayerAdvanced
		mvp      string
		awardErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		totals = s.players.Totals(ctx, ss)
		return nil
	})
	g.Go(func() error {
		advanced = s.players.Advanced(ctx, ss)
		return nil
	})
	if s.awards != nil {
		g.Go(func() error {
			mvp, awardErr = s.awards.MVP(ctx, ss)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if awardErr != nil {
		s.logger.Warn("MVP lookup failed, continuing without award", "season", ss.Label(), "error", awardErr)
		mvp = ""
	}

	out := pipeline.Run(pipeline.Input{
		Season:     ss,
		Teams:      teams,
		Totals:     totals,
		Advanced:   advanced,
		Averages:   s.averages,
		Thresholds: th,
	})
	warnings := out.Warnings

	scored := make([]assemble.ScoredPlayer, 0, len(out.Records))
	for _, rec := range out.Scoreable() {
		score, err := scoring.Score(rec)
		if err != nil {
			warnings = append(warnings, pipeline.Warning{
				Kind: pipeline.WarnScoring, Season: ss, Player: rec.Player, Detail: err.Error(),
			})
			metrics.PipelineWarnings.WithLabelValues(string(pipeline.WarnScoring)).Inc()
			continue
		}
		scored = append(scored, assemble.ScoredPlayer{
			Player:        rec.Player,
			Team:          rec.Team,
			Season:        ss,
			Score:         score,
			RelativeScore: scoring.Relative(rec),
		})
	}

	for _, w := range warnings {
		s.logger.Warn("Data gap", "kind", w.Kind, "season", ss.Label(), "player", w.Player, "reason", w.Detail)
	}

	res := Result{
		Season:   ss,
		Label:    ss.Label(),
		MVP:      mvp,
		Players:  assemble.Assemble(scored, mvp),
		Warnings: warnings,
		Stats:    out.Stats,
		Duration: time.Since(start),
	}
	metrics.SeasonsEvaluated.WithLabelValues("ok").Inc()
	s.logger.Info("Season evaluated", "summary", res.Summary())
	return res, nil
}

// Standings returns the season's ranked standings.
func (s *Service) Standings(ctx context.Context, ss season.Season) ([]provider.TeamRecord, error) {
	teams, err := s.standings.Standings(ctx, ss)
	if err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	return ranking.Rank(teams), nil
}

// Leaders returns the season's top scorers by game log.
func (s *Service) Leaders(ctx context.Context, ss season.Season, topN int) ([]provider.GameLogSummary, error) {
	if s.leaders == nil {
		return nil, ErrNoLeaders
	}
	return s.leaders.Leaders(ctx, ss, topN)
}
