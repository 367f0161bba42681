package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 30*24*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t, 32, cfg.Auth.SessionTokenLength)
	require.Equal(t, 24*time.Hour, cfg.Verification.Expiry)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.SessionSchedule)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 9000
  log_level: debug
database:
  driver: postgres
  user: plateup
  name: plateup
auth:
  session_ttl: 48h
verification:
  expiry: 1h
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 48*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t, time.Hour, cfg.Verification.Expiry)

	store := cfg.Database.StoreConfig()
	require.Equal(t, "postgres", store.Driver)
	require.Equal(t, "plateup", store.User)
}
