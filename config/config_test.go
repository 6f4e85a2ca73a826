package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DB_USER", "foodgram")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "foodgram")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 10, cfg.DB.MaxSize)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, "./media", cfg.Media.Root)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTokenDuration)
}

func TestLoadConfigReportsMissingRequired(t *testing.T) {
	setBaseEnv(t)
	// t.Setenv registered the restore; unsetting afterwards is safe.
	os.Unsetenv("DB_USER")
	os.Unsetenv("JWT_SECRET")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfigCollectsParseErrors(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PORT")
	assert.Contains(t, err.Error(), "JWT_ACCESS_TOKEN_DURATION")
}

func TestLoadConfigClampsPoolSize(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_POOL_SIZE", "1000")

	_, err := LoadConfig()
	// Clamping is reported as a configuration error so operators notice it.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_POOL_SIZE")
}

func TestLoadConfigTrimsBaseURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BASE_URL", "https://foodgram.example.com/")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://foodgram.example.com", cfg.Server.BaseURL)
}
