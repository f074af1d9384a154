// Package core provides the HTTP chassis for the duty service: a chi router
// with the cross-cutting middleware (panic recovery, request ids, logging,
// CORS, security headers), JSON response helpers, request validation and
// the health endpoint. Domain handlers register onto it.
package core

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"dutyservice/internal/config"
)

// RouteRegistrar mounts a handler group on the router.
type RouteRegistrar func(r chi.Router)

// Server encapsulates the API dependencies so tests can inject their own.
type Server struct {
	Config       *config.Config
	Logger       zerolog.Logger
	Validator    *Validator
	HealthProbes []HealthProbe

	// RouteRegistrars are mounted at the root by MountRoutes, in order.
	RouteRegistrars []RouteRegistrar

	router     *chi.Mux
	onShutdown []func()
}

// NewServer prepares the router. Routes are mounted separately by
// MountRoutes so tests can customise registration.
func NewServer(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// HTTPServer builds the net/http server using the configured address and
// timeouts. baseCtx becomes the parent of every request context.
func (s *Server) HTTPServer(baseCtx context.Context) *http.Server {
	sc := s.Config.Server
	return &http.Server{
		Addr:         net.JoinHostPort("", sc.Port),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
}

// OnShutdown registers fn to run during Shutdown, in registration order.
func (s *Server) OnShutdown(fn func()) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Shutdown releases server resources such as the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info().Msg("server shutdown initiated")
	for _, fn := range s.onShutdown {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn()
	}
	s.Logger.Info().Msg("server shutdown complete")
	return nil
}
