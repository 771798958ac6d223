package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAppliesDefaults(t *testing.T) {
	cfg, err := Decode(`
[mainConfig]
port = 9000

[kafkaConfig]
messageMode = "redis"
`)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.MainConfig.Port)
	assert.Equal(t, "redis", cfg.MessageMode)
	assert.Equal(t, "mysql", cfg.Driver)
	assert.Equal(t, "127.0.0.1", cfg.RedisConfig.Host)
	assert.Equal(t, 6379, cfg.RedisConfig.Port)
	assert.Equal(t, 5, cfg.MaxConnectionsPerUser)
	assert.Equal(t, 50, cfg.HistoryDefaultLimit)
	assert.Equal(t, 100, cfg.HistoryMaxLimit)
	assert.Equal(t, 60*time.Minute, cfg.RoomCacheTTL())
}

func TestDecodeCapsDefaultLimit(t *testing.T) {
	cfg, err := Decode(`
[chatConfig]
historyDefaultLimit = 500
historyMaxLimit = 20
`)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.HistoryDefaultLimit)
}

func TestLoadConfigSearchesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[chatConfig]\nmaxConnectionsPerUser = 3\n"), 0o644))

	cfg := new(Config)
	require.NoError(t, LoadConfig(cfg, filepath.Join(dir, "missing.toml"), path))
	assert.Equal(t, 3, cfg.MaxConnectionsPerUser)

	assert.Error(t, LoadConfig(new(Config), filepath.Join(dir, "missing.toml")))
}

func TestShippedConfigParses(t *testing.T) {
	cfg := new(Config)
	require.NoError(t, LoadConfig(cfg, "../../configs/config.toml"))
	cfg.applyDefaults()
	assert.Equal(t, "channel", cfg.MessageMode)
	assert.Equal(t, 5, cfg.MaxConnectionsPerUser)
}
