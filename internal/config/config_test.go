package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
	t.Setenv("STORE_DRIVER", "memory")
}

func TestParseDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("API_URL", "api/v2")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "/api/v2/", cfg.APIPrefix)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 50, cfg.AccessTTLMin)
	assert.Equal(t, 7, cfg.RefreshTTLDays)

	tokens := cfg.Tokens()
	assert.Equal(t, 50*time.Minute, tokens.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, tokens.RefreshTTL)
}

func TestParseReportsEverythingMissing(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("REFRESH_TOKEN_SECRET", "")
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "soon")

	_, err := Parse()
	require.Error(t, err)
	for _, key := range []string{"ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET", "DB_USER", "DB_HOST", "DB_NAME", "ACCESS_TOKEN_TTL_MIN"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestParseRejectsSharedSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("REFRESH_TOKEN_SECRET", "access")
	_, err := Parse()
	assert.ErrorContains(t, err, "must differ")
}

func TestParseUnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err := Parse()
	assert.ErrorContains(t, err, "STORE_DRIVER=sqlite")
}

func TestParseMongo(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "furniture-store", cfg.MongoDB)
}

func TestRateLimitNormalized(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, RefillTokens: -1, RefillInterval: 0, TTL: time.Second}.normalized()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, time.Second, c.RefillInterval)
	assert.Equal(t, 5*time.Second, c.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "2m")
	c := LoadCacheConfig()
	assert.True(t, c.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
	assert.Equal(t, 2*time.Minute, c.TTL)
	assert.Equal(t, "path_query", c.KeyStrategy)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_TLS", "1")
	rc := LoadRedisConfig()
	assert.Equal(t, "cache:6380", rc.Addr)
	assert.True(t, rc.TLS)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}
