// Package postgres provides the PostgreSQL implementation of api.Store.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArionMiles/finlog/pkg/api"
)

//go:embed 001_init.sql
var migrationSQL string

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Config holds the PostgreSQL store configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// DSN, when set, is used instead of the individual connection fields.
	DSN string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int

	// ConnectAttempts is how many times the initial ping is tried. Defaults to 5.
	ConnectAttempts uint
	// ConnectDelay is the base delay between ping attempts. Defaults to 2 seconds.
	ConnectDelay time.Duration

	// SkipMigrations connects without applying the schema.
	SkipMigrations bool
}

// Store persists finlog data in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ api.Store = (*Store)(nil)

// New connects to PostgreSQL, waits for it to accept connections and applies
// the schema unless cfg.SkipMigrations is set.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Set defaults
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}
	if cfg.ConnectAttempts == 0 {
		cfg.ConnectAttempts = 5
	}
	if cfg.ConnectDelay == 0 {
		cfg.ConnectDelay = 2 * time.Second
	}

	connStr := cfg.DSN
	if connStr == "" {
		connStr = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
		)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		},
		retry.Context(ctx),
		retry.Attempts(cfg.ConnectAttempts),
		retry.Delay(cfg.ConnectDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("database not ready, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", poolConfig.ConnConfig.Host,
		"port", poolConfig.ConnConfig.Port,
		"database", poolConfig.ConnConfig.Database,
	)

	s := &Store{
		pool:   pool,
		logger: logger,
	}

	if cfg.SkipMigrations {
		return s, nil
	}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// runMigrations runs the database migrations.
func (s *Store) runMigrations(ctx context.Context) error {
	s.logger.Info("running database migrations")

	if _, err := s.pool.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}

	s.logger.Info("migrations completed successfully")
	return nil
}

var schemaTables = []string{"users", "categories", "expenses", "journals", "sms_transactions", "merchant_categories"}

// SchemaReady reports whether every table of the schema exists. It does not
// modify the database.
func (s *Store) SchemaReady(ctx context.Context) (bool, error) {
	var missing int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM unnest($1::text[]) AS t(name) WHERE to_regclass(t.name) IS NULL`,
		schemaTables,
	).Scan(&missing)
	if err != nil {
		return false, fmt.Errorf("checking schema: %w", err)
	}
	return missing == 0, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("closed PostgreSQL connection pool")
	}
}

// notFound maps pgx.ErrNoRows to api.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return api.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
