package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 100*time.Millisecond, cfg.BatchInterval)
	assert.Equal(t, 12000, cfg.MaxMessageBytes)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"ADDR":                ":9000",
		"WORLD_SIZE":          "4000",
		"SPAWN_ZONE_FRACTION": "0.1",
		"BATCH_INTERVAL":      "50ms",
		"MAX_MESSAGE_BYTES":   "2048",
		"PING_INTERVAL":       "5s",
		"LOG_LEVEL":           "debug",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 4000.0, cfg.WorldSize)
	assert.Equal(t, 0.1, cfg.SpawnZoneFraction)
	assert.Equal(t, 50*time.Millisecond, cfg.BatchInterval)
	assert.Equal(t, 2048, cfg.MaxMessageBytes)
	assert.Equal(t, 5*time.Second, cfg.PingInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnvAggregatesErrors(t *testing.T) {
	_, err := FromEnv(lookupFrom(map[string]string{
		"WORLD_SIZE":        "big",
		"BATCH_INTERVAL":    "soon",
		"MAX_MESSAGE_BYTES": "12k",
	}))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.Contains(t, err.Error(), "WORLD_SIZE")
	assert.Contains(t, err.Error(), "BATCH_INTERVAL")
}

func TestValidateRejectsNonPositive(t *testing.T) {
	cfg := Default()
	cfg.BatchInterval = 0
	cfg.WorldSize = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("EMOTECHAT_TEST_UNUSED=1\nSTATIC_DIR=public\n"), 0o600))
	t.Setenv("STATIC_DIR", "")
	require.NoError(t, os.Unsetenv("STATIC_DIR"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.StaticDir)
}

func TestLoadToleratesMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}
