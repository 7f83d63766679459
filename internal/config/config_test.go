package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "auth-service", cfg.AppName)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 30*time.Second, cfg.Audit.SyncInterval)
	assert.True(t, cfg.Migrations.Enabled)
	assert.NotEmpty(t, cfg.Database.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET", "c2VjcmV0LWtleQ==")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("AUDIT_MAX_RETRY", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "c2VjcmV0LWtleQ==", cfg.JWT.Secret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.TTL)
	assert.False(t, cfg.Migrations.Enabled)
	assert.Equal(t, 7, cfg.Audit.MaxRetry)
}

func TestLoad_DurationAcceptsBareSeconds(t *testing.T) {
	t.Setenv("JWT_TTL", "3600")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
}

func TestLoad_DatabaseURLBuiltFromParts(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "volunteers")
	t.Setenv("DB_USER", "svc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.Database.URL, "db.internal")
	assert.Contains(t, cfg.Database.URL, "volunteers")
}

func TestAddress(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "8443")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8443", cfg.Address())
}
