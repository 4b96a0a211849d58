// Package maintenance runs periodic background tasks as Go tickers.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/hoopscore/internal/ladder"
	"github.com/albapepper/hoopscore/internal/season"
)

// Warmer prefetches upstream records into the Cache Store.
type Warmer interface {
	Warm(ctx context.Context, seasons []season.Season) (ladder.WarmResult, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	// WarmInterval re-runs the warm-up for WarmSeasons. Failed fetches are
	// never cached, so each pass retries only what is still missing.
	WarmInterval time.Duration
	WarmSeasons  []season.Season
}

// Start warms once, then launches the configured tickers. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, w Warmer, cfg Config, logger *slog.Logger) {
	if cfg.WarmInterval <= 0 || len(cfg.WarmSeasons) == 0 {
		logger.Info("Maintenance tickers disabled")
		return
	}
	logger.Info("Maintenance tickers started", "warm", cfg.WarmInterval, "seasons", len(cfg.WarmSeasons))

	warm := func() { warmSeasons(ctx, w, cfg.WarmSeasons, logger) }
	warm()

	t := time.NewTicker(cfg.WarmInterval)
	defer t.Stop()
	runLoop(ctx, t.C, warm)

	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

func warmSeasons(ctx context.Context, w Warmer, seasons []season.Season, logger *slog.Logger) {
	result, err := w.Warm(ctx, seasons)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("Warm: failed", "error", err)
		}
		return
	}
	if len(result.Errors) > 0 {
		logger.Warn("Warm: upstream gaps remain", "summary", result.Summary(), "first_error", result.Errors[0])
		return
	}
	logger.Debug("Warm: complete", "summary", result.Summary())
}
