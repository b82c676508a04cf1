package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	API          APIConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Idempotency  IdempotencyConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// APIConfig controls how the resource routes are mounted.
type APIConfig struct {
	Prefix string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines bearer token parameters.
type AuthConfig struct {
	Enabled               bool
	JWTSecret             string
	Issuer                string
	AccessTokenTTLMinutes int
}

// IdempotencyConfig controls replay of POST responses keyed by Idempotency-Key.
type IdempotencyConfig struct {
	Enabled    bool
	TTLSeconds int
}

// NotificationConfig holds the event fan-out targets.
type NotificationConfig struct {
	RedisChannel string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "messaging-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		API: APIConfig{
			Prefix: normalizePrefix(getEnv("API_PREFIX", "/api/v1")),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			Enabled:               getEnvAsBool("AUTH_ENABLED", false),
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			Issuer:                getEnv("AUTH_JWT_ISSUER", "messaging-service"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Idempotency: IdempotencyConfig{
			Enabled:    getEnvAsBool("IDEMPOTENCY_ENABLED", true),
			TTLSeconds: getEnvAsInt("IDEMPOTENCY_TTL_SECONDS", 86400),
		},
		Notification: NotificationConfig{
			RedisChannel: getEnv("NOTIFY_REDIS_CHANNEL", "messaging.events"),
		},
	}

	if cfg.Auth.Enabled && strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")) == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_ENABLED is set")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TTL returns how long a replayable response is kept.
func (i IdempotencyConfig) TTL() time.Duration {
	if i.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(i.TTLSeconds) * time.Second
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
