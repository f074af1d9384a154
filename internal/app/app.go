// Package app assembles the runtime pieces shared by the API server and the
// operator CLI: the pool gateway, the startup bootstrap, and the duty
// service.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"dutyservice/internal/config"
	"dutyservice/internal/db"
	"dutyservice/internal/duty"
	"dutyservice/internal/logger"
)

// PrepareOptions controls the bootstrap steps of Prepare.
type PrepareOptions struct {
	// Production skips database creation.
	Production bool
	// SkipSchema skips the duty table check.
	SkipSchema bool
}

// PoolConfig derives the pool settings from cfg. SQL tracing is attached
// when enabled.
func PoolConfig(cfg *config.Config, log zerolog.Logger) db.PoolConfig {
	pc := db.PoolConfig{
		URL:               cfg.Database.URL.Unmask(),
		MaxConns:          cfg.Database.MaxConns,
		MinConns:          cfg.Database.MinConns,
		MaxConnLifetime:   cfg.Database.MaxConnLifetime,
		HealthCheckPeriod: cfg.Database.HealthCheckPeriod,
	}
	if cfg.Database.TraceSQL {
		pc.Tracer = logger.NewPgxTracer(log.With().Str("component", "pgx").Logger())
	}
	return pc
}

// Prepare creates missing databases, opens the shared pool and makes sure
// the duty table exists. The caller owns the returned gateway.
func Prepare(ctx context.Context, cfg *config.Config, opts PrepareOptions, log zerolog.Logger) (*db.Gateway, error) {
	connect := db.NewAdminConnector(cfg.Database.URL.Unmask(), cfg.Database.AdminDatabase)
	if err := db.EnsureDatabases(ctx, connect, cfg.Database.EnsureDatabases, opts.Production, log); err != nil {
		return nil, err
	}

	gw, err := db.Open(ctx, PoolConfig(cfg, log), log)
	if err != nil {
		return nil, fmt.Errorf("opening database pool: %w", err)
	}

	if !opts.SkipSchema {
		if err := db.EnsureSchema(ctx, gw.Pool(), log); err != nil {
			gw.Close()
			return nil, err
		}
	}
	return gw, nil
}

// NewService wires the executor and the duty service on top of gw.
func NewService(gw *db.Gateway, log zerolog.Logger) *duty.Service {
	return duty.NewService(db.NewExecutor(gw.Pool(), log), log)
}
