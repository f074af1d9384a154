package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"dutyservice/internal/types"
)

const pingTimeout = 5 * time.Second

// PostgreSQL error codes treated as "already there" during bootstrap.
const (
	pgUniqueViolation   = "23505"
	pgDuplicateDatabase = "42P04"
	pgDuplicateTable    = "42P07"
)

const createDutyTableSQL = `CREATE TABLE IF NOT EXISTS duty (id UUID PRIMARY KEY DEFAULT gen_random_uuid(), name TEXT NOT NULL)`

const databaseExistsSQL = `SELECT 1 FROM pg_catalog.pg_database WHERE datname = $1`

// PoolConfig holds the connection string and tuning for the shared pool.
type PoolConfig struct {
	URL               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	HealthCheckPeriod time.Duration
	// Tracer, when set, receives every query on every pooled connection.
	Tracer pgx.QueryTracer
}

// Gateway owns the process-wide connection pool. It is created once at
// startup and closed on shutdown.
type Gateway struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// Open creates the pool and pings it so startup fails fast when the
// database is unreachable.
func Open(ctx context.Context, cfg PoolConfig, logger zerolog.Logger) (*Gateway, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.HealthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.Tracer != nil {
		poolCfg.ConnConfig.Tracer = cfg.Tracer
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("connected to the database")

	return &Gateway{pool: pool, logger: logger}, nil
}

// Pool returns the shared pool.
func (g *Gateway) Pool() *pgxpool.Pool {
	return g.pool
}

// Name identifies the gateway as a health probe.
func (g *Gateway) Name() string {
	return "database"
}

// Check pings the database.
func (g *Gateway) Check(ctx context.Context) error {
	return g.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (g *Gateway) Close() {
	g.logger.Info().Msg("closing database connection pool")
	g.pool.Close()
}

// EnsureSchema creates the duty table if it does not exist. Losing a
// concurrent creation race counts as success.
func EnsureSchema(ctx context.Context, q DBTX, logger zerolog.Logger) error {
	if _, err := q.Exec(ctx, createDutyTableSQL); err != nil {
		if isAlreadyExists(err) {
			logger.Debug().Msg("duty table created concurrently")
			return nil
		}
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create duty table", err)
	}
	logger.Info().Msg("duty table ensured")
	return nil
}

// AdminConn is the administrative connection used to create databases.
// *pgx.Conn satisfies it.
type AdminConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close(ctx context.Context) error
}

// AdminConnector opens an administrative connection.
type AdminConnector func(ctx context.Context) (AdminConn, error)

// NewAdminConnector connects with the credentials of dsn but to the
// maintenance database adminDB, since a database cannot be created from a
// connection to itself.
func NewAdminConnector(dsn, adminDB string) AdminConnector {
	return func(ctx context.Context) (AdminConn, error) {
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse admin config: %w", err)
		}
		cfg.Database = adminDB
		conn, err := pgx.ConnectConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// DatabaseName returns the database named in a connection string.
func DatabaseName(dsn string) (string, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return "", err
	}
	return cfg.Database, nil
}

// EnsureDatabases creates each named database that does not exist yet. In
// production it does nothing and never connects. The administrative
// connection is closed on every path.
func EnsureDatabases(ctx context.Context, connect AdminConnector, names []string, isProduction bool, logger zerolog.Logger) error {
	if isProduction {
		logger.Info().Msg("skipping database bootstrap in production")
		return nil
	}
	if len(names) == 0 {
		return nil
	}

	conn, err := connect(ctx)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to open administrative connection", err)
	}
	defer func() {
		if err := conn.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("failed to close administrative connection")
		}
	}()

	for _, name := range names {
		if err := ensureDatabase(ctx, conn, name, logger); err != nil {
			return err
		}
	}
	return nil
}

func ensureDatabase(ctx context.Context, conn AdminConn, name string, logger zerolog.Logger) error {
	var one int
	err := conn.QueryRow(ctx, databaseExistsSQL, name).Scan(&one)
	switch {
	case err == nil:
		logger.Debug().Str("database", name).Msg("database exists")
		return nil
	case !errors.Is(err, pgx.ErrNoRows):
		return types.NewAppError(types.ErrCodeInternalDB, fmt.Sprintf("failed to look up database %q", name), err)
	}

	// CREATE DATABASE cannot take a bind parameter; the name is quoted as an
	// identifier instead.
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return types.NewAppError(types.ErrCodeInternalDB, fmt.Sprintf("failed to create database %q", name), err)
	}
	logger.Info().Str("database", name).Msg("database created")
	return nil
}

func isAlreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgDuplicateDatabase, pgDuplicateTable:
		return true
	}
	return false
}
