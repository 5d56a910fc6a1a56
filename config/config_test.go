package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"ADDR":          ":9000",
		"DB_DRIVER":     "mysql",
		"DB_DSN":        "root:pw@tcp(127.0.0.1:3306)/reminders",
		"REDIS_ADDR":    "localhost:6379",
		"RATE_LIMIT":    "20",
		"RATE_WINDOW":   "10m",
		"EVENT_WORKERS": "4",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 20, cfg.RateLimit)
	assert.Equal(t, 10*time.Minute, cfg.RateWindow)
	assert.Equal(t, 4, cfg.EventWorkers)
}

func TestFromLookup_Invalid(t *testing.T) {
	for key, val := range map[string]string{
		"RATE_LIMIT":    "zero",
		"RATE_WINDOW":   "-1s",
		"EVENT_WORKERS": "0",
		"DB_DRIVER":     "postgres",
	} {
		_, err := FromLookup(lookupFrom(map[string]string{key: val}))
		assert.Error(t, err, key)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("REMINDER_TEST_ONLY=1\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
