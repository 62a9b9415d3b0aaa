package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9000"
database_url: postgres://localhost/auth
redis_addr: localhost:6379
metrics_enabled: false
jwt:
  secret: file-secret
  issuer: velora
  leeway: 45s
session:
  cookie_name: session_token
  refresh_threshold: 1h
  cookie_secure: false
bootstrap_admin:
  email: root@example.com
  password: changeme
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "postgres://localhost/auth", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, "velora", cfg.JWT.Issuer)
	assert.Equal(t, duration(45*time.Second), cfg.JWT.Leeway)
	assert.Equal(t, "session_token", cfg.Session.CookieName)
	assert.Equal(t, duration(time.Hour), cfg.Session.RefreshThreshold)
	require.NotNil(t, cfg.Session.CookieSecure)
	assert.False(t, *cfg.Session.CookieSecure)
	require.NotNil(t, cfg.MetricsEnabled)
	assert.False(t, *cfg.MetricsEnabled)
	assert.Equal(t, "root@example.com", cfg.BootstrapAdmin.Email)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database_url: postgres://localhost/auth
jwt:
  secret: file-secret
`)

	t.Setenv("AUTHCORE_JWT_SECRET", "env-secret")
	t.Setenv("AUTHCORE_LISTEN_ADDR", ":7000")
	t.Setenv("AUTHCORE_COOKIE_SECURE", "true")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, ":7000", cfg.ListenAddr)
	require.NotNil(t, cfg.Session.CookieSecure)
	assert.True(t, *cfg.Session.CookieSecure)
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv("AUTHCORE_DATABASE_URL", "postgres://localhost/auth")
	t.Setenv("AUTHCORE_JWT_SECRET", "env-secret")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoadConfigMissingRequirements(t *testing.T) {
	_, err := loadConfig("")
	assert.Error(t, err)

	path := writeConfig(t, `database_url: postgres://localhost/auth`)
	_, err = loadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := writeConfig(t, `
database_url: postgres://localhost/auth
jwt:
  secret: s
  leeway: soon
`)
	_, err := loadConfig(path)
	assert.Error(t, err)
}
