package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SessionBackendDB    = "db"
	SessionBackendRedis = "redis"
)

type Config struct {
	BotToken       string
	DBDriver       string // sqlite|pgx
	DatabaseURL    string
	SessionBackend string // db|redis
	RedisAddr      string
	RedisPassword  string
	SessionTTL     time.Duration
	Location       *time.Location
	HTTPAddr       string
	LogLevel       string
	LogFile        string
	Env            string // dev|prod
	SentryDSN      string
	SeedDemo       bool
}

func Load() (*Config, error) {
	token := strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if token == "" {
		return nil, fmt.Errorf("required env BOT_TOKEN is empty")
	}

	tz := getenv("TZ", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("TZ: %w", err)
	}

	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", ttl)
	}

	seed, err := strconv.ParseBool(getenv("SEED_DEMO", "true"))
	if err != nil {
		return nil, fmt.Errorf("SEED_DEMO: %w", err)
	}

	cfg := &Config{
		BotToken:       token,
		DBDriver:       strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DatabaseURL:    getenv("DATABASE_URL", "file:./data/school.db?_pragma=foreign_keys(1)"),
		SessionBackend: strings.ToLower(getenv("SESSION_BACKEND", SessionBackendDB)),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		SessionTTL:     ttl,
		Location:       loc,
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFile:        os.Getenv("LOG_FILE"),
		Env:            getenv("ENV", "dev"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		SeedDemo:       seed,
	}

	switch cfg.DBDriver {
	case "sqlite", "pgx":
	default:
		return nil, fmt.Errorf("DB_DRIVER: unsupported %q (sqlite|pgx)", cfg.DBDriver)
	}
	switch cfg.SessionBackend {
	case SessionBackendDB, SessionBackendRedis:
	default:
		return nil, fmt.Errorf("SESSION_BACKEND: unsupported %q (db|redis)", cfg.SessionBackend)
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
