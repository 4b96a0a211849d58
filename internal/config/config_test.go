package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.CacheBackend)
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, 10*time.Second, cfg.UpstreamBackoff)
	assert.Equal(t, 15.0, cfg.DefaultMinPoints)
	assert.Equal(t, 50, cfg.DefaultMinGamesStarted)
	assert.Equal(t, 40.0, cfg.DefaultMinEffectiveFG)
	assert.Equal(t, time.Hour, cfg.WarmInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORKERS", "4")
	t.Setenv("MIN_POINTS", "20.5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("WORKERS_IGNORED", "x")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 20.5, cfg.DefaultMinPoints)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
}

func TestLoadBackendValidation(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.CacheBackend)

	t.Setenv("CACHE_BACKEND", "memcached")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsZeroWorkers(t *testing.T) {
	t.Setenv("WORKERS", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEligibilityDefaults(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		ok    bool
	}{
		{"efg above 100", "MIN_EFFECTIVE_FG", "400", false},
		{"efg negative", "MIN_EFFECTIVE_FG", "-1", false},
		{"efg not a number", "MIN_EFFECTIVE_FG", "forty", false},
		{"efg NaN", "MIN_EFFECTIVE_FG", "NaN", false},
		{"points negative", "MIN_POINTS", "-1", false},
		{"points infinite", "MIN_POINTS", "+Inf", false},
		{"points not a number", "MIN_POINTS", "abc", false},
		{"games started negative", "MIN_GAMES_STARTED", "-5", false},
		{"games started fractional", "MIN_GAMES_STARTED", "2.5", false},
		{"efg at 100", "MIN_EFFECTIVE_FG", "100", true},
		{"points zero", "MIN_POINTS", "0", true},
		{"games started zero", "MIN_GAMES_STARTED", "0", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoadZeroEligibilityDefaults(t *testing.T) {
	t.Setenv("MIN_POINTS", "0")
	t.Setenv("MIN_GAMES_STARTED", "0")
	t.Setenv("MIN_EFFECTIVE_FG", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.DefaultMinPoints)
	assert.Equal(t, 0, cfg.DefaultMinGamesStarted)
	assert.Equal(t, 0.0, cfg.DefaultMinEffectiveFG)
}
