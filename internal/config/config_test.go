package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("TOKEN_ISSUER", "")
	t.Setenv("TOKEN_AUDIENCE", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("SYNC_WORKERS", "")
	t.Setenv("LIST_PAGE_SIZE", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.Development())
	assert.Equal(t, "pivotai-auth", cfg.TokenIssuer)
	assert.Equal(t, "pivotai", cfg.TokenAudience)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 16, cfg.SyncWorkers)
	assert.Equal(t, 50, cfg.ListPageSize)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("SYNC_WORKERS", "4")
	t.Setenv("LIST_PAGE_SIZE", "25")

	cfg := Load()

	assert.False(t, cfg.Development())
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.SyncWorkers)
	assert.Equal(t, 25, cfg.ListPageSize)
}

func TestLoadIgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("SYNC_WORKERS", "not-a-number")
	t.Setenv("TOKEN_TTL", "-5m")

	cfg := Load()

	assert.Equal(t, 16, cfg.SyncWorkers)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}
