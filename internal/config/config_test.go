package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("MM_DATABASE_URL", "postgres://mm:mm@localhost:5432/mm")
	t.Setenv("MM_AUTH_ISSUER_URL", "https://issuer.example")
	t.Setenv("MM_AUTH_CLIENT_ID", "client-id")
	t.Setenv("MM_AUTH_CLIENT_SECRET", "client-secret")
	t.Setenv("MM_AUTH_REDIRECT_URL", "https://app.example/auth/callback")
	t.Setenv("MM_SESSION_COOKIE_KEY", "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")
	t.Setenv("MM_INGESTION_TOKEN", "ingest-token")
}

func TestLoad_fromEnvironment(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://mm:mm@localhost:5432/mm", cfg.DatabaseURL)
	assert.Equal(t, "https://issuer.example", cfg.Auth.IssuerURL)
	assert.Equal(t, "client-id", cfg.Auth.ClientID)
	assert.Equal(t, "ingest-token", cfg.Ingestion.Token)

	// Defaults
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 24*time.Hour, cfg.Session.Timeout)
	assert.Equal(t, "localhost:4318", cfg.Tracing.Endpoint)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_environmentOverridesDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MM_LISTEN_ADDR", ":9999")
	t.Setenv("MM_SESSION_TIMEOUT", "1h")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, time.Hour, cfg.Session.Timeout)
}

func TestLoad_missingRequiredValue(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MM_AUTH_CLIENT_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.client_secret")
}

func TestLoad_missingConfigFile(t *testing.T) {
	setRequiredEnv(t)

	_, err := Load("does/not/exist.toml")
	require.Error(t, err)
}
