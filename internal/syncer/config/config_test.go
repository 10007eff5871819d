package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config-sync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  name: sync-service
redis:
  host: localhost
  port: 6379
syncer:
  reconcile_cron: "*/5 * * * *"
  stream_max_retry: 3
  auto_subscribe: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sync-service", cfg.App.Name)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "*/5 * * * *", cfg.Syncer.ReconcileCron)
	assert.Equal(t, 3, cfg.Syncer.StreamMaxRetry)
	assert.True(t, cfg.Syncer.AutoSubscribe)
	assert.Equal(t, 24*time.Hour, cfg.Syncer.ReconcileLookback)
	assert.Equal(t, 2*time.Second, cfg.Syncer.StreamBlock)
}
