package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Session.Driver)
	assert.Equal(t, "sg_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 15*time.Minute, cfg.CodeTTL())
	assert.Equal(t, "Silly Goals", cfg.WebAuthn.RPDisplayName)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: prod
  log_level: warn
server:
  addr: ":9000"
  base_url: https://goals.example.com
session:
  driver: redis
  secure: true
  ttl: 48h
  redis:
    addr: redis:6379
    db: 2
auth:
  code_ttl: 5m
smtp:
  host: smtp.example.com
  port: 587
  from: goals@example.com
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "https://goals.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "redis", cfg.Session.Driver)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, 48*time.Hour, cfg.SessionTTL())
	assert.Equal(t, "redis:6379", cfg.Session.Redis.Addr)
	assert.Equal(t, 2, cfg.Session.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.CodeTTL())
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0o600))

	t.Setenv("SERVER_ADDR", ":7000")
	t.Setenv("SESSION_DRIVER", "redis")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "redis", cfg.Session.Driver)
	assert.Equal(t, 2525, cfg.SMTP.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBadDurationFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  ttl: soon\nauth:\n  code_ttl: \"-5m\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 15*time.Minute, cfg.CodeTTL())
}
