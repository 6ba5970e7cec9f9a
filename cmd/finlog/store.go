package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ArionMiles/finlog/pkg/api"
	"github.com/ArionMiles/finlog/pkg/config"
	"github.com/ArionMiles/finlog/pkg/store/memory"
	"github.com/ArionMiles/finlog/pkg/store/postgres"
)

func postgresConfig(c config.PostgresConfig) postgres.Config {
	return postgres.Config{
		Host:        c.Host,
		Port:        c.Port,
		Database:    c.Database,
		User:        c.User,
		Password:    c.Password,
		SSLMode:     c.SSLMode,
		MaxPoolSize: c.MaxPoolSize,
	}
}

// openStore opens the backend selected by STORE_BACKEND. Postgres applies its
// schema unless skipMigrations is set.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger, skipMigrations bool) (api.Store, error) {
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory store, data will be lost on exit")
		return memory.New(), nil
	case config.BackendPostgres:
		pgCfg := postgresConfig(cfg.Postgres)
		pgCfg.SkipMigrations = skipMigrations
		store, err := postgres.New(ctx, pgCfg, logger.With("component", "postgres"))
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
