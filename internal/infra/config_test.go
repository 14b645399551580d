package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.DBMaxConns)
	assert.Equal(t, 2, cfg.DBMinConns)
	assert.Equal(t, 30*time.Minute, cfg.DBMaxConnLifetime)
	assert.Equal(t, 5*time.Minute, cfg.DBMaxConnIdleTime)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("DB_MAX_CONN_LIFETIME", "1h")
	t.Setenv("RATE_LIMIT_PER_MIN", "600")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.DBMaxConns)
	assert.Equal(t, time.Hour, cfg.DBMaxConnLifetime)
	assert.Equal(t, 600, cfg.RateLimitPerMin)
}

func TestConfigValidateRejectsDefaultSecret(t *testing.T) {
	cfg := &Config{JWTSecret: "change-me-in-production"}
	require.Error(t, cfg.Validate())

	cfg.AllowInsecureDefaults = true
	require.NoError(t, cfg.Validate())
}
