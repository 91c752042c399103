package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rrens/auth-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_TOKEN_SECRET_KEY", "access-secret")
	t.Setenv("JWT_REFRESH_TOKEN_SECRET_KEY", "refresh-secret")
	t.Setenv("JWT_SECRET_KEY", "reset-secret")
	for _, key := range []string{"NODE_ENV", "ENV", "PORT", "STORAGE_DRIVER", "COOKIE_SECURE"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	setSecrets(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, config.DriverMongo, cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, "jwt", cfg.Auth.CookieName)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, 5, cfg.RateLimit.LoginAttempts)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "access-secret", cfg.Auth.AccessTokenSecret)
	assert.Equal(t, "reset-secret", cfg.Auth.ResetTokenSecret)
	assert.True(t, cfg.Server.IsDevelopment())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
server:
  port: 8081
  env: production
storage:
  driver: sqlite
auth:
  access_token_ttl: 2h
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("CONFIG_PATH", path)
	setSecrets(t)
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.True(t, cfg.Server.IsProduction())
	assert.False(t, cfg.Server.IsDevelopment())
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Storage: config.StorageConfig{Driver: config.DriverMemory},
			Auth: config.AuthConfig{
				AccessTokenSecret:  "a",
				RefreshTokenSecret: "b",
				ResetTokenSecret:   "c",
				AccessTokenTTL:     time.Hour,
				RefreshTokenTTL:    time.Hour,
				ResetTokenTTL:      time.Minute,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"missing access secret", func(c *config.Config) { c.Auth.AccessTokenSecret = "" }},
		{"missing reset secret", func(c *config.Config) { c.Auth.ResetTokenSecret = "" }},
		{"shared secret", func(c *config.Config) { c.Auth.ResetTokenSecret = c.Auth.AccessTokenSecret }},
		{"zero ttl", func(c *config.Config) { c.Auth.RefreshTokenTTL = 0 }},
		{"unknown driver", func(c *config.Config) { c.Storage.Driver = "cassandra" }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_CookieSecureOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	setSecrets(t)
	t.Setenv("COOKIE_SECURE", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.False(t, cfg.Auth.CookieSecure)
}
