package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLoad(t *testing.T) {
	t.Run("FileWithEnvPlaceholders", func(t *testing.T) {
		t.Setenv("MIRU_TEST_API", "http://remote:9000")
		path := filepath.Join(t.TempDir(), "config.yaml")
		body := `
server:
  address: ":9999"
  rate_limit_rps: 5
client:
  base_url: ${MIRU_TEST_API}
  timeout_seconds: 3
  reject_policy: surface
mirror:
  backend: redis
backup:
  enabled: true
  interval_hours: 6
  retention_days: 7
logging:
  level: debug
`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9999", cfg.Server.Address)
		assert.Equal(t, "http://remote:9000", cfg.Client.BaseURL)
		assert.Equal(t, "surface", cfg.Client.RejectPolicy)
		assert.Equal(t, 3*time.Second, cfg.ClientTimeout())
		assert.Equal(t, 6*time.Hour, cfg.BackupInterval())
		assert.True(t, cfg.UseRedisMirror())
		assert.Equal(t, "miru_bookings", cfg.Mirror.Key)
		assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())

		limit, burst := cfg.RateLimit()
		assert.Equal(t, rate.Limit(5), limit)
		assert.Equal(t, 10, burst)
	})

	t.Run("EnvSelectsFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.yaml")
		require.NoError(t, os.WriteFile(path, []byte("database:\n  path: /tmp/x.db\n"), 0o644))
		t.Setenv(EnvPath, path)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("MissingDefaultFileUsesDefaults", func(t *testing.T) {
		t.Setenv(EnvPath, "")
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Address)
		assert.Equal(t, "http://localhost:8080", cfg.Client.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.ClientTimeout())
		assert.False(t, cfg.UseRedisMirror())
		assert.Equal(t, []string{"*"}, cfg.CORSOrigins())
		assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel())
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
