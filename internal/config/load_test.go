package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jwtSecret is deliberately over the 32-character minimum.
const jwtSecret = "0123456789abcdef0123456789abcdef-test"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TASKBOARD_DATABASE_URL", "postgres://app@localhost:5432/taskboard")
	t.Setenv("TASKBOARD_AUTH_JWT_SECRET", jwtSecret)
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TASKBOARD_SERVER_PORT", "9090")
	t.Setenv("TASKBOARD_SERVER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, jwtSecret, cfg.Auth.JWTSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 30, cfg.Server.RequestTimeoutSeconds)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.ModelName)
	assert.Empty(t, cfg.LLM.GeminiAPIKey)
	assert.False(t, cfg.Email.Enabled())
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("TASKBOARD_DATABASE_URL", "")
	t.Setenv("TASKBOARD_AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadShortJWTSecret(t *testing.T) {
	t.Setenv("TASKBOARD_DATABASE_URL", "postgres://app@localhost:5432/taskboard")
	t.Setenv("TASKBOARD_AUTH_JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TASKBOARD_SERVER_LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
}

func TestEmailEnabled(t *testing.T) {
	cfg := EmailConfig{}
	assert.False(t, cfg.Enabled())

	cfg = EmailConfig{SMTPHost: "smtp.example.com", FromAddress: "noreply@example.com"}
	assert.True(t, cfg.Enabled())
}
