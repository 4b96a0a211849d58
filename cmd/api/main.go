// Command api is the Hoopscore MVP ladder API server.
//
// Usage:
//
//	hoopscore-api
//	API_PORT=8080 CACHE_BACKEND=redis REDIS_URL=redis://localhost:6379/0 hoopscore-api

// @title Hoopscore MVP Ladder API
// @version 1.0.0
// @description Ranks an NBA season's players by MVP suitability from team standings, per-game production and shooting efficiency.
// @host localhost:5001
// @BasePath /
// @schemes http https
// @contact.name Hoopscore
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/hoopscore/internal/api"
	"github.com/albapepper/hoopscore/internal/app"
	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/config"
	"github.com/albapepper/hoopscore/internal/maintenance"
	"github.com/albapepper/hoopscore/internal/season"

	_ "github.com/albapepper/hoopscore/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	// HTTP response cache, swept in the background
	responses := cache.NewMemory(cfg.CacheEnabled, cfg.CacheMaxEntries)
	go responses.SweepEvery(ctx, 5*time.Minute)
	logger.Info("Response cache initialized", "enabled", cfg.CacheEnabled)

	// Keep the current season in the Cache Store
	go maintenance.Start(ctx, a.Ladder, maintenance.Config{
		WarmInterval: cfg.WarmInterval,
		WarmSeasons:  []season.Season{config.CurrentSeason},
	}, logger)

	router := api.NewRouter(a.Ladder, responses, a.BackendStats, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // cold ladders fetch several upstream pages
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Hoopscore API",
			"addr", addr,
			"environment", cfg.Environment,
			"cache_backend", cfg.CacheBackend,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
