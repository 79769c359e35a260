package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_DRIVER", "DB_PASSWORD", "SYNC_TIMEOUT", "JWT_SECRET", "RATE_LIMIT_PER_MINUTE", "LOG_TO_DB"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.SyncTimeout)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.False(t, cfg.LogToDB)
	assert.False(t, cfg.AuthEnabled())
	assert.EqualError(t, cfg.Validate(), "DB_PASSWORD environment variable is required")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("SYNC_TIMEOUT", "2m")
	t.Setenv("READ_TIMEOUT", "garbage")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("DB_MAX_OPEN_CONNS", "-4")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOG_TO_DB", "true")

	cfg := Load()

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 2*time.Minute, cfg.SyncTimeout)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 0, cfg.RateLimitPerMinute)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.True(t, cfg.AuthEnabled())
	assert.True(t, cfg.LogToDB)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoreDriver: "mongo", SyncTimeout: time.Second}
	assert.Error(t, cfg.Validate())

	cfg = &Config{StoreDriver: StoreDriverPostgres, DBPassword: "pw", SyncTimeout: 0}
	assert.EqualError(t, cfg.Validate(), "SYNC_TIMEOUT must be positive")

	cfg.SyncTimeout = time.Second
	assert.NoError(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "app", DBPassword: "pw", DBName: "stocksync", DBPort: "5433", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=app password=pw dbname=stocksync port=5433 sslmode=require TimeZone=UTC", cfg.DSN())
}
