// Package main is the entry point for the duty API server.
//
// It loads the configuration, bootstraps the database outside production,
// opens the shared pool, wires the duty routes onto the core chassis and
// serves until SIGINT or SIGTERM, then shuts down gracefully.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"dutyservice/internal/api/handlers"
	"dutyservice/internal/app"
	"dutyservice/internal/config"
	"dutyservice/internal/core"
	"dutyservice/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout).
		With().
		Str("service", cfg.Service).
		Logger()
	log.Info().
		Str("environment", cfg.Environment).
		Str("version", cfg.Build.Version).
		Str("commit", cfg.Build.Commit).
		Str("port", cfg.Server.Port).
		Msg("duty API starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := app.Prepare(ctx, cfg, app.PrepareOptions{
		Production: cfg.IsProduction(),
		SkipSchema: cfg.IsProduction(),
	}, log)
	if err != nil {
		return fmt.Errorf("preparing database: %w", err)
	}

	srv, err := newServer(cfg, log, app.NewService(gw, log), gw)
	if err != nil {
		gw.Close()
		return fmt.Errorf("creating server: %w", err)
	}
	srv.OnShutdown(gw.Close)

	return serve(ctx, srv, log)
}

// newServer builds the chassis with the duty routes mounted. probes back
// the /health endpoint.
func newServer(cfg *config.Config, log zerolog.Logger, svc handlers.DutyService, probes ...core.HealthProbe) (*core.Server, error) {
	srv, err := core.NewServer(cfg, log)
	if err != nil {
		return nil, err
	}
	srv.HealthProbes = append(srv.HealthProbes, probes...)

	dutyHandler := handlers.NewDutyHandler(svc, srv.Validator, log)
	srv.RouteRegistrars = append(srv.RouteRegistrars, dutyHandler.RegisterRoutes)

	srv.MountRoutes()
	return srv, nil
}

// serve runs the HTTP server until ctx is cancelled or the listener fails,
// then drains in-flight requests and releases server resources.
func serve(ctx context.Context, srv *core.Server, log zerolog.Logger) error {
	httpServer := srv.HTTPServer(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), srv.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped cleanly")
	return nil
}
