// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Upstream endpoints
// --------------------------------------------------------------------------

const (
	DefaultBRefBaseURL     = "https://www.basketball-reference.com"
	DefaultNBAAPIURL       = "https://www.nbaapi.com/graphql/"
	DefaultNBAStatsBaseURL = "https://stats.nba.com/stats"
)

// Cache backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// CurrentSeason is the season the API and CLI default to.
const CurrentSeason = 2025

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database (postgres cache backend)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Redis (redis cache backend)
	RedisURL string

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Inbound rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Upstreams
	BRefBaseURL        string
	NBAAPIURL          string
	NBAStatsBaseURL    string
	UpstreamRPM        int           // requests per minute per upstream
	UpstreamBackoff    time.Duration // wait before the single retry after a 429
	UpstreamTimeout    time.Duration
	LeagueAveragesFile string
	Workers            int
	ResponseCacheTTL   time.Duration
	WarmInterval       time.Duration // 0 disables the background warm-up
	CacheBackend       string
	CacheMaxEntries    int
	CacheEnabled       bool

	// Eligibility defaults; minEffectiveFg is a percentage (40 = 0.40)
	DefaultMinPoints       float64
	DefaultMinGamesStarted int
	DefaultMinEffectiveFG  float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		RedisURL: envOr("REDIS_URL", ""),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 5001)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		BRefBaseURL:        envOr("BREF_BASE_URL", DefaultBRefBaseURL),
		NBAAPIURL:          envOr("NBAAPI_URL", DefaultNBAAPIURL),
		NBAStatsBaseURL:    envOr("NBASTATS_BASE_URL", DefaultNBAStatsBaseURL),
		UpstreamRPM:        envInt("UPSTREAM_RPM", 20),
		UpstreamBackoff:    time.Duration(envInt("UPSTREAM_BACKOFF_SECONDS", 10)) * time.Second,
		UpstreamTimeout:    time.Duration(envInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,
		LeagueAveragesFile: envOr("LEAGUE_AVERAGES_FILE", "data/league_avgs.csv"),
		Workers:            envInt("WORKERS", 10),
		ResponseCacheTTL:   time.Duration(envInt("RESPONSE_CACHE_TTL_MINUTES", 60)) * time.Minute,
		WarmInterval:       time.Duration(envInt("WARM_INTERVAL_MINUTES", 60)) * time.Minute,
		CacheBackend:       strings.ToLower(envOr("CACHE_BACKEND", BackendMemory)),
		CacheMaxEntries:    envInt("CACHE_MAX_ENTRIES", 0),
		CacheEnabled:       envBool("CACHE_ENABLED", true),
	}

	// Eligibility defaults are parsed strictly: a typo must not silently
	// fall back to a different ladder.
	var err error
	if cfg.DefaultMinPoints, err = envFloatStrict("MIN_POINTS", 15.0); err != nil {
		return nil, err
	}
	if cfg.DefaultMinGamesStarted, err = envIntStrict("MIN_GAMES_STARTED", 50); err != nil {
		return nil, err
	}
	if cfg.DefaultMinEffectiveFG, err = envFloatStrict("MIN_EFFECTIVE_FG", 40); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CacheBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when CACHE_BACKEND=postgres")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q (want memory, postgres or redis)", c.CacheBackend)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.UpstreamRPM < 1 {
		return fmt.Errorf("UPSTREAM_RPM must be at least 1, got %d", c.UpstreamRPM)
	}
	if math.IsNaN(c.DefaultMinPoints) || math.IsInf(c.DefaultMinPoints, 0) || c.DefaultMinPoints < 0 {
		return fmt.Errorf("MIN_POINTS must be a non-negative number, got %v", c.DefaultMinPoints)
	}
	if c.DefaultMinGamesStarted < 0 {
		return fmt.Errorf("MIN_GAMES_STARTED must be non-negative, got %d", c.DefaultMinGamesStarted)
	}
	if math.IsNaN(c.DefaultMinEffectiveFG) || c.DefaultMinEffectiveFG < 0 || c.DefaultMinEffectiveFG > 100 {
		return fmt.Errorf("MIN_EFFECTIVE_FG must be a percentage between 0 and 100, got %v", c.DefaultMinEffectiveFG)
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envIntStrict(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

func envFloatStrict(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, v)
	}
	return f, nil
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
