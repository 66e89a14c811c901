// Package server exposes the skeleton pipeline over HTTP.
//
// Routes:
//
//	POST   /v1/forests                          upload a skeleton record
//	GET    /v1/forests/{id}                     forest summary
//	GET    /v1/forests/{id}/components/{n}/swc  one component as SWC (?scale=)
//	GET    /v1/forests/{id}/components/{n}/dot  one component as DOT (?reduced=)
//	GET    /v1/forests/{id}/components/{n}/svg  one component as SVG (?reduced=)
//	DELETE /v1/forests/{id}                     drop a forest
//	GET    /healthz                             liveness and build info
//
// Uploaded forests live in an in-memory LRU [Store] keyed by a random UUID.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/meshskel/pkg/observability"
	"github.com/matzehuels/meshskel/pkg/pipeline"
)

// DefaultMaxBodyBytes caps the size of an uploaded record.
const DefaultMaxBodyBytes = 256 << 20

// Config configures a [Server].
type Config struct {
	Runner       *pipeline.Runner
	Logger       *log.Logger
	MaxForests   int
	ForestTTL    time.Duration
	MaxBodyBytes int64
}

// Server is the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	store   *Store
	logger  *log.Logger
	maxBody int64
	router  chi.Router
}

// New creates a server. A nil runner gets an uncached one.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	s := &Server{
		runner:  runner,
		store:   NewStore(cfg.MaxForests, cfg.ForestTTL),
		logger:  logger.WithPrefix("http"),
		maxBody: maxBody,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	r.Route("/v1/forests", func(r chi.Router) {
		r.Post("/", s.createForest)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getForest)
			r.Delete("/", s.deleteForest)
			r.Get("/components/{n}/{format}", s.getComponent)
		})
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Store returns the forest store.
func (s *Server) Store() *Store { return s.store }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// observe reports every request to the HTTP hooks and the debug log. The
// response is reported under the matched route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "took", time.Since(start))
	})
}
