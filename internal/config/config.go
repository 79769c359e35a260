package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	// Store
	StoreDriver string

	// Database
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Sync
	SyncTimeout time.Duration
	ReadTimeout time.Duration

	// Auth (optional; empty disables bearer auth)
	JWTSecret string

	// Server
	Port               string
	CORSOrigins        string
	BodyLimitMB        int
	RateLimitPerMinute int

	// Observability
	LogToDB          bool
	LogRetentionDays int
	SentryDSN        string
	AppEnv           string
}

func Load() *Config {
	return &Config{
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "stocksync"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns: parseInt(getEnv("DB_MAX_OPEN_CONNS", "25"), 25),
		DBMaxIdleConns: parseInt(getEnv("DB_MAX_IDLE_CONNS", "10"), 10),

		SyncTimeout: parseDuration(getEnv("SYNC_TIMEOUT", "30s"), 30*time.Second),
		ReadTimeout: parseDuration(getEnv("READ_TIMEOUT", "10s"), 10*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),

		Port:               getEnv("PORT", "8080"),
		CORSOrigins:        getEnv("CORS_ORIGINS", "*"),
		BodyLimitMB:        parseInt(getEnv("BODY_LIMIT_MB", "10"), 10),
		RateLimitPerMinute: parseInt(getEnv("RATE_LIMIT_PER_MINUTE", "120"), 120),

		LogToDB:          parseBool(getEnv("LOG_TO_DB", "false")),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		AppEnv:           getEnv("APP_ENV", "development"),
	}
}

// Validate reports settings that would keep the server from starting.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DBPassword == "" {
			return errors.New("DB_PASSWORD environment variable is required")
		}
	case StoreDriverMemory:
	default:
		return errors.New("STORE_DRIVER must be postgres or memory, got " + c.StoreDriver)
	}
	if c.SyncTimeout <= 0 {
		return errors.New("SYNC_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
