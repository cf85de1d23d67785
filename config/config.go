package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	JWT         JWTConfig
	Store       StoreConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	RateLimiter RateLimiterConfig
	Bulkhead    BulkheadConfig
	Driver      DriverConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

// StoreConfig selects the persistence backend. "memory" keeps everything
// in-process and needs no database; "postgres" uses sqlx + migrations.
type StoreConfig struct {
	Backend string
}

type PostgresConfig struct {
	URL      string // DATABASE_URL takes precedence if set
	Host     string
	Port     int
	User     string
	Password string
	DB       string
	SSLMode  string
}

type RedisConfig struct {
	URL      string // REDIS_URL takes precedence if set
	Host     string
	Port     int
	Password string
	DB       int
}

type RateLimiterConfig struct {
	MaxRequests   int
	WindowSeconds int
}

type BulkheadConfig struct {
	HeartbeatPool int
	MutationPool  int
	AdminPool     int
}

type DriverConfig struct {
	LocationCacheTTLSec int
	IdempotencyTTLSec   int
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getenvInt("PORT", getenvInt("SERVER_PORT", 8080)),
			ShutdownTimeout: time.Duration(getenvInt("SHUTDOWN_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:      getenv("JWT_SECRET", "default-secret-change-me"),
			ExpiryHours: time.Duration(getenvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		},
		Store: StoreConfig{
			Backend: getenv("STORE_BACKEND", "memory"),
		},
		Postgres: PostgresConfig{
			URL:      getenv("DATABASE_URL", ""),
			Host:     getenv("POSTGRES_HOST", "localhost"),
			Port:     getenvInt("POSTGRES_PORT", 5432),
			User:     getenv("POSTGRES_USER", "dispatch_admin"),
			Password: getenv("POSTGRES_PASSWORD", "secure_password"),
			DB:       getenv("POSTGRES_DB", "swift_dispatch"),
			SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getenv("REDIS_URL", ""),
			Host:     getenv("REDIS_HOST", "localhost"),
			Port:     getenvInt("REDIS_PORT", 6379),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		RateLimiter: RateLimiterConfig{
			MaxRequests:   getenvInt("RATE_LIMIT_MAX_REQUESTS", 100),
			WindowSeconds: getenvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Bulkhead: BulkheadConfig{
			HeartbeatPool: getenvInt("BULKHEAD_HEARTBEAT_POOL", 100),
			MutationPool:  getenvInt("BULKHEAD_MUTATION_POOL", 50),
			AdminPool:     getenvInt("BULKHEAD_ADMIN_POOL", 20),
		},
		Driver: DriverConfig{
			LocationCacheTTLSec: getenvInt("DRIVER_LOCATION_CACHE_TTL_SECONDS", 60),
			IdempotencyTTLSec:   getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		},
	}

	if cfg.Store.Backend != "memory" && cfg.Store.Backend != "postgres" {
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return cfg, nil
}

func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
