// Package app wires configuration into a ready ladder service: the Cache
// Store backend, the upstream clients and the league-averages table. Both
// cmd/api and cmd/ingest start from here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albapepper/hoopscore/internal/averages"
	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/config"
	"github.com/albapepper/hoopscore/internal/db"
	"github.com/albapepper/hoopscore/internal/ladder"
	"github.com/albapepper/hoopscore/internal/pipeline"
	"github.com/albapepper/hoopscore/internal/provider/bref"
	"github.com/albapepper/hoopscore/internal/provider/nbaapi"
	"github.com/albapepper/hoopscore/internal/provider/nbastats"
)

// App holds the wired service and the resources that must be closed.
type App struct {
	Ladder *ladder.Service
	Store  cache.Store

	// BackendStats reports on the Cache Store for /health/cache.
	BackendStats func(ctx context.Context) (map[string]interface{}, error)

	closers []func()
}

// Close releases the Cache Store backend.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Defaults converts the configured eligibility defaults into thresholds.
func Defaults(cfg *config.Config) pipeline.Thresholds {
	return pipeline.Thresholds{
		MinPoints:       cfg.DefaultMinPoints,
		MinGamesStarted: cfg.DefaultMinGamesStarted,
		MinEffectiveFG:  cfg.DefaultMinEffectiveFG * 0.01,
	}
}

// New builds the App. A missing league-averages file is logged and the
// service runs without normalization.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	switch cfg.CacheBackend {
	case config.BackendPostgres:
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.Store = cache.NewPostgres(pool)
		a.BackendStats = func(ctx context.Context) (map[string]interface{}, error) {
			if err := pool.HealthCheck(ctx); err != nil {
				return nil, err
			}
			counts, err := pool.CacheCounts(ctx)
			if err != nil {
				return nil, err
			}
			stat := pool.Stat()
			return map[string]interface{}{
				"entries":        counts,
				"total_conns":    stat.TotalConns(),
				"idle_conns":     stat.IdleConns(),
				"acquired_conns": stat.AcquiredConns(),
				"max_conns":      stat.MaxConns(),
			}, nil
		}
		logger.Info("Cache Store: postgres",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)

	case config.BackendRedis:
		rdb, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		a.Store = rdb
		a.BackendStats = func(ctx context.Context) (map[string]interface{}, error) {
			if err := rdb.Ping(ctx); err != nil {
				return nil, err
			}
			return map[string]interface{}{"ping": "ok"}, nil
		}
		logger.Info("Cache Store: redis")

	default:
		mem := cache.NewMemory(cfg.CacheEnabled, cfg.CacheMaxEntries)
		a.Store = mem
		a.BackendStats = func(context.Context) (map[string]interface{}, error) {
			return mem.Stats(), nil
		}
		logger.Info("Cache Store: memory", "enabled", cfg.CacheEnabled, "max_entries", cfg.CacheMaxEntries)
	}

	avgs, err := averages.Load(cfg.LeagueAveragesFile)
	if err != nil {
		logger.Warn("League averages unavailable, normalized values will be empty",
			"file", cfg.LeagueAveragesFile, "error", err)
	} else {
		logger.Info("League averages loaded", "file", cfg.LeagueAveragesFile, "seasons", avgs.Len())
	}

	standings := bref.NewClient(bref.Options{
		BaseURL:           cfg.BRefBaseURL,
		RequestsPerMinute: cfg.UpstreamRPM,
		Backoff:           cfg.UpstreamBackoff,
		Timeout:           cfg.UpstreamTimeout,
		Store:             a.Store,
		Logger:            logger,
	})
	players := nbaapi.NewClient(nbaapi.Options{
		URL:               cfg.NBAAPIURL,
		RequestsPerMinute: cfg.UpstreamRPM,
		Timeout:           cfg.UpstreamTimeout,
		Store:             a.Store,
		Logger:            logger,
	})
	leaders := nbastats.NewClient(nbastats.Options{
		BaseURL:           cfg.NBAStatsBaseURL,
		RequestsPerMinute: cfg.UpstreamRPM,
		Timeout:           cfg.UpstreamTimeout,
		Workers:           cfg.Workers,
		Store:             a.Store,
		Logger:            logger,
	})

	defaults := Defaults(cfg)
	a.Ladder = ladder.New(ladder.Deps{
		Standings: standings,
		Players:   players,
		Awards:    standings,
		Leaders:   leaders,
		Averages:  avgs,
		Defaults:  &defaults,
		Workers:   cfg.Workers,
		Logger:    logger,
	})
	return a, nil
}
