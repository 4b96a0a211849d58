package ladder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/hoopscore/internal/pipeline"
	"github.com/albapepper/hoopscore/internal/season"
)

// --------------------------------------------------------------------------
// Multi-season batch
// --------------------------------------------------------------------------

// SeasonError is one season that could not be evaluated.
type SeasonError struct {
	Season season.Season `json:"season"`
	Error  string        `json:"error"`
}

// BatchResult tracks the outcome of a multi-season run.
type BatchResult struct {
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []Result      `json:"results"`
	Errors    []SeasonError `json:"errors,omitempty"`
	Duration  time.Duration `json:"-"`
}

// Summary returns a human-readable summary.
func (r *BatchResult) Summary() string {
	return fmt.Sprintf("requested=%d succeeded=%d failed=%d dur=%s",
		r.Requested, r.Succeeded, r.Failed, r.Duration.Round(time.Second))
}

// EvaluateSeasons evaluates each season over the worker pool. A failing
// season is logged and recorded without stopping the others. Results keep
// the order of seasons. If ctx is cancelled, partial results are discarded
// and ctx's error is returned.
func (s *Service) EvaluateSeasons(ctx context.Context, seasons []season.Season, th pipeline.Thresholds) (BatchResult, error) {
	start := time.Now()
	if err := th.Validate(); err != nil {
		return BatchResult{}, &ConfigurationError{Param: "thresholds", Err: err}
	}

	results := make([]*Result, len(seasons))
	errs := make([]error, len(seasons))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, ss := range seasons {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := s.Evaluate(ctx, ss, th)
			if err != nil {
				s.logger.Warn("Season failed", "season", ss.Label(), "error", err)
				errs[i] = err
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}

	batch := BatchResult{Requested: len(seasons)}
	for i, ss := range seasons {
		if errs[i] != nil {
			batch.Failed++
			batch.Errors = append(batch.Errors, SeasonError{Season: ss, Error: errs[i].Error()})
			continue
		}
		batch.Succeeded++
		batch.Results = append(batch.Results, *results[i])
	}
	batch.Duration = time.Since(start)
	s.logger.Info("Batch complete", "summary", batch.Summary())
	return batch, nil
}

// --------------------------------------------------------------------------
// Cache warm-up
// --------------------------------------------------------------------------

// WarmResult tracks counts and errors from a warm-up.
type WarmResult struct {
	Seasons      int
	Teams        int
	TotalsRows   int
	AdvancedRows int
	Awards       int
	Errors       []string
}

// Add merges another WarmResult into this one.
func (r *WarmResult) Add(other WarmResult) {
	r.Seasons += other.Seasons
	r.Teams += other.Teams
	r.TotalsRows += other.TotalsRows
	r.AdvancedRows += other.AdvancedRows
	r.Awards += other.Awards
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *WarmResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the warm-up.
func (r *WarmResult) Summary() string {
	return fmt.Sprintf("seasons=%d teams=%d totals=%d advanced=%d awards=%d errors=%d",
		r.Seasons, r.Teams, r.TotalsRows, r.AdvancedRows, r.Awards, len(r.Errors))
}

// Warm fetches every upstream record for the seasons so later requests are
// served from the cache. The fetchers populate the cache themselves.
func (s *Service) Warm(ctx context.Context, seasons []season.Season) (WarmResult, error) {
	var (
		mu    sync.Mutex
		total WarmResult
	)

	if s.awards != nil && len(seasons) > 0 {
		if _, err := s.awards.MVP(ctx, seasons[0]); err != nil {
			total.AddErrorf("awards: %v", err)
		} else {
			total.Awards = 1
		}
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, ss := range seasons {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r := WarmResult{Seasons: 1}
			teams, err := s.standings.Standings(ctx, ss)
			if err != nil {
				r.AddErrorf("%s standings: %v", ss.Label(), err)
			}
			r.Teams = len(teams)
			r.TotalsRows = len(s.players.Totals(ctx, ss))
			r.AdvancedRows = len(s.players.Advanced(ctx, ss))

			mu.Lock()
			total.Add(r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return WarmResult{}, err
	}
	s.logger.Info("Warm complete", "summary", total.Summary())
	return total, nil
}
