package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/raffled/internal/random"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "raffle.db", cfg.SQLitePath)
	assert.Equal(t, 15*time.Minute, cfg.Countdown)
	assert.False(t, cfg.RequireCountdown)
	assert.Equal(t, RandomSeeded, cfg.Random)
	assert.Equal(t, random.DefaultSeed, cfg.SeedBytes())
	assert.False(t, cfg.Verbose)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("RAFFLE_HTTP_ADDR", ":9090")
	t.Setenv("RAFFLE_STORE", "sqlite")
	t.Setenv("RAFFLE_SQLITE_PATH", "/tmp/raffles.db")
	t.Setenv("RAFFLE_COUNTDOWN", "90s")
	t.Setenv("RAFFLE_REQUIRE_COUNTDOWN", "true")
	t.Setenv("RAFFLE_RANDOM", "crypto")
	t.Setenv("RAFFLE_SEED", "deadbeef")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/raffles.db", cfg.SQLitePath)
	assert.Equal(t, 90*time.Second, cfg.Countdown)
	assert.True(t, cfg.RequireCountdown)
	assert.Equal(t, RandomCrypto, cfg.Random)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, cfg.SeedBytes())
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RAFFLE_TEST_FILE_ADDR=:7070\n"), 0o600))

	// godotenv sets variables process wide; register cleanup before loading
	t.Setenv("RAFFLE_TEST_FILE_ADDR", "")
	require.NoError(t, os.Unsetenv("RAFFLE_TEST_FILE_ADDR"))

	_, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", os.Getenv("RAFFLE_TEST_FILE_ADDR"))
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown store", key: "RAFFLE_STORE", value: "postgres"},
		{name: "unknown random", key: "RAFFLE_RANDOM", value: "dice"},
		{name: "bad seed", key: "RAFFLE_SEED", value: "zz"},
		{name: "bad duration", key: "RAFFLE_COUNTDOWN", value: "soon"},
		{name: "negative countdown", key: "RAFFLE_COUNTDOWN", value: "-1m"},
		{name: "bad bool", key: "RAFFLE_VERBOSE", value: "loud"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
