// Package server exposes a [store.Store] over HTTP.
//
// The REST routes under /api/v1 drive the same operations as the interactive
// editor. Every mutation response carries the resulting snapshot in the
// [graph] wire format. Renderers that want live updates connect to
// /api/v1/ws and receive a snapshot message for every published version.
//
// Failures are returned as {"code", "message"} with a status code derived
// from the [errors.Code]. An invalid status in a PATCH is not a failure: the
// rest of the patch is applied and the problem is listed under "warnings".
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/mindtower/pkg/buildinfo"
	"github.com/matzehuels/mindtower/pkg/config"
	"github.com/matzehuels/mindtower/pkg/observability"
	"github.com/matzehuels/mindtower/pkg/store"
)

// Server serves one store.
type Server struct {
	cfg      config.ServerConfig
	store    *store.Store
	logger   *log.Logger
	metrics  http.Handler
	validate *validator.Validate
	hub      *hub
	router   chi.Router

	httpServer *http.Server
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request and stream logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New creates a server for st. The snapshot stream subscribes to st
// immediately; call [Server.Close] to detach it.
func New(st *store.Store, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		logger:   log.New(io.Discard),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.StreamBuffer < 1 {
		s.cfg.StreamBuffer = 1
	}
	s.hub = newHub(st, s.cfg.StreamBuffer, s.logger)
	s.router = s.buildRouter()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match", "X-Request-ID"},
		ExposedHeaders: []string{"ETag", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/mindmap", s.getMindMap)
		r.Post("/root", s.addRoot)
		r.Post("/reset", s.reset)
		r.Get("/ws", s.hub.serveWS)

		r.Route("/nodes/{id}", func(r chi.Router) {
			r.Patch("/", s.updateNode)
			r.Delete("/", s.deleteNode)
			r.Post("/children", s.addChild)
			r.Put("/position", s.updatePosition)
			r.Post("/release", s.release)
			r.Post("/select", s.selectNode)
		})
	})

	return r
}

// instrument logs each request at debug level and reports it to the HTTP
// hooks under its route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		elapsed := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", elapsed, "request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Close()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Close detaches the snapshot stream from the store and disconnects every
// stream client. It is safe to call more than once.
func (s *Server) Close() {
	s.hub.close()
}
