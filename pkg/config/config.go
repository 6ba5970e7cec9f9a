// Package config loads finlog configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Port is the HTTP listen port.
	// Environment variable: PORT
	Port int `koanf:"PORT"`

	// JWTSecret verifies HS256 bearer tokens issued by the auth service.
	// Environment variable: JWT_SECRET
	JWTSecret string `koanf:"JWT_SECRET"`

	// StoreBackend selects "postgres" or "memory".
	// Environment variable: STORE_BACKEND
	StoreBackend string `koanf:"STORE_BACKEND"`

	// KeepAliveURL is pinged on KeepAliveSchedule so hosted instances stay warm.
	// Empty disables the pinger.
	// Environment variable: KEEPALIVE_URL
	KeepAliveURL string `koanf:"KEEPALIVE_URL"`

	// KeepAliveSchedule is a cron spec.
	// Environment variable: KEEPALIVE_SCHEDULE
	KeepAliveSchedule string `koanf:"KEEPALIVE_SCHEDULE"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	// Environment variable: SHUTDOWN_TIMEOUT
	ShutdownTimeout time.Duration `koanf:"SHUTDOWN_TIMEOUT"`

	LogLevel  string `koanf:"LOG_LEVEL"`
	LogFormat string `koanf:"LOG_FORMAT"`
	GinMode   string `koanf:"GIN_MODE"`

	Postgres PostgresConfig `koanf:",squash"`
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host        string `koanf:"POSTGRES_HOST"`
	Port        int    `koanf:"POSTGRES_PORT"`
	Database    string `koanf:"POSTGRES_DB"`
	User        string `koanf:"POSTGRES_USER"`
	Password    string `koanf:"POSTGRES_PASSWORD"`
	SSLMode     string `koanf:"POSTGRES_SSLMODE"`
	MaxPoolSize int    `koanf:"POSTGRES_MAX_POOL_SIZE"`
}

// Default returns the configuration used for unset variables.
func Default() Config {
	return Config{
		Port:              5000,
		StoreBackend:      BackendPostgres,
		KeepAliveSchedule: "@every 14m",
		ShutdownTimeout:   10 * time.Second,
		LogLevel:          "INFO",
		LogFormat:         "text",
		GinMode:           "release",
		Postgres: PostgresConfig{
			Port:        5432,
			SSLMode:     "disable",
			MaxPoolSize: 10,
		},
	}
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables that are already set, then unmarshals the environment
// over Default().
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading config from environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// ValidateStore checks the settings needed to open the configured store.
func (c Config) ValidateStore() error {
	switch c.StoreBackend {
	case BackendMemory:
		return nil
	case BackendPostgres:
		if c.Postgres.Host == "" {
			return fmt.Errorf("POSTGRES_HOST environment variable is required")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("POSTGRES_DB environment variable is required")
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("POSTGRES_USER environment variable is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
}

// ValidateServer checks everything the HTTP server needs.
func (c Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return c.ValidateStore()
}
