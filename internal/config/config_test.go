package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
	assert.Equal(t, StoreMemory, cfg.SessionStore)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "ru", cfg.Locale)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadConfig_EnvAndFlags(t *testing.T) {
	t.Setenv("KQ_API_BASE_URL", "http://backend:8000/api/")
	t.Setenv("KQ_SESSION_STORE", "SQLite")
	t.Setenv("KQ_COOKIE_SECURE", "true")
	t.Setenv("KQ_BACKEND_RPS", "2.5")
	t.Setenv("KQ_REQUEST_TIMEOUT", "3s")
	t.Setenv("KQ_LOG_LEVEL", "warn")

	cfg, err := LoadConfig([]string{"--addr", ":8080", "--log-level", "debug"})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://backend:8000/api", cfg.APIBaseURL)
	assert.Equal(t, StoreSQLite, cfg.SessionStore)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 2.5, cfg.BackendRPS)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown store", args: []string{"--session-store", "redis"}},
		{name: "postgres without dsn", args: []string{"--session-store", "postgres"}},
		{name: "bad log level", args: []string{"--log-level", "loud"}},
		{name: "unknown flag", args: []string{"--token", "x"}},
		{name: "empty base url", args: []string{"--api-base-url", ""}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(tc.args)
			assert.Error(t, err)
		})
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("KQ_TEST_BOOL", "maybe")
	t.Setenv("KQ_TEST_DURATION", "soon")

	assert.True(t, getEnvBool("KQ_TEST_BOOL", true))
	assert.Equal(t, time.Minute, getEnvDuration("KQ_TEST_DURATION", time.Minute))
	assert.Equal(t, "fallback", getEnv("KQ_TEST_MISSING", "fallback"))
}
