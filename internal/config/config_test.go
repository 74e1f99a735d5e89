package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, EnvLocal, cfg.Environment)
	assert.Equal(t, "https://codeforces.com/profile/%s", cfg.ProfileURLTemplate)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.Attempts)
	assert.Equal(t, 3*time.Second, cfg.RetryDelay)
	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENVIRONMENT", "deployed")
	t.Setenv("BROWSER_USE_DOCKER", "true")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SCRAPE_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, EnvDeployed, cfg.Environment)
	assert.True(t, cfg.UseDocker)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.Attempts)
}

func TestInvalidEnvironmentRejected(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")

	_, err := Load()
	assert.Error(t, err)
}

func TestMalformedValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("BROWSER_USE_DOCKER", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.UseDocker)
}
