package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sitecrew/api/internal/config"
	"github.com/sitecrew/api/internal/infra/http/middleware"
	"github.com/sitecrew/api/pkg/logger"
)

// Server wraps the HTTP server with routing and the middleware stack.
type Server struct {
	httpServer *http.Server
	router     Router
	log        *logger.Logger

	// cleanupFuncs run during shutdown, after the listener has stopped.
	cleanupFuncs []func()
}

// NewServer creates a configured HTTP server. Routes are registered by
// the caller through Router().
func NewServer(cfg *config.Config, log *logger.Logger) *Server {
	router := NewChiRouter()

	rateLimitMw, rateLimitStop := middleware.RateLimitWithStop(&cfg.RateLimit, log)

	// Order matters: recovery first so every later middleware is covered,
	// logging last so it observes the final status code.
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.SecurityHeaders(),
		middleware.CORS(&cfg.CORS),
		middleware.BodyLimit(cfg.Server.MaxBodySize),
		rateLimitMw,
		middleware.Timeout(cfg.Server.RequestTimeout),
		middleware.Metrics(),
		middleware.Logger(log),
	)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router.Handler(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		router:       router,
		log:          log,
		cleanupFuncs: []func(){rateLimitStop},
	}
}

// Router returns the router for route registration.
func (s *Server) Router() Router {
	return s.router
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info("http server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and runs cleanup functions.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("http server shutting down")
	err := s.httpServer.Shutdown(ctx)

	for _, cleanup := range s.cleanupFuncs {
		cleanup()
	}
	return err
}
