// Package httpapi exposes a built vsmgo.Index over HTTP: a chi.Mux, a
// small middleware stack, and JSON request/response handlers.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/liliang-cn/vsmgo"
)

// Config configures a Server.
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

// DefaultConfig returns sane defaults for local development.
func DefaultConfig() *Config {
	return &Config{
		Addr:           ":8080",
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		RequestTimeout: 5 * time.Second,
	}
}

// Server serves search queries against a single built Index over HTTP.
type Server[D, M any] struct {
	config    *Config
	index     *vsmgo.Index[D, M]
	router    *chi.Mux
	httpSrv   *http.Server
	startTime time.Time
}

// New creates a Server wrapping index. The index is read-only from the
// server's perspective: callers are expected to swap it out (by creating a
// new Server) rather than mutate it concurrently with queries.
func New[D, M any](config *Config, index *vsmgo.Index[D, M]) *Server[D, M] {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Server[D, M]{
		config:    config,
		index:     index,
		router:    chi.NewRouter(),
		startTime: time.Now(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:         config.Addr,
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

func (s *Server[D, M]) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Timeout(s.config.RequestTimeout))
}

func (s *Server[D, M]) setupRoutes() {
	s.router.Get("/_health", s.handleHealth)
	s.router.Get("/_stats", s.handleStats)
	s.router.Post("/_search", s.handleSearch)
}

// Router exposes the underlying chi router, mainly for tests that want to
// drive requests through an httptest.ResponseRecorder without a live
// listener.
func (s *Server[D, M]) Router() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server, blocking until ctx is canceled or
// an unrecoverable error occurs.
func (s *Server[D, M]) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("httpapi: serve: %w", err)
	}
}
