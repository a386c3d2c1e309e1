package preview

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	ferrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
	"git.home.luguber.info/inful/assetbuilder/internal/taskgraph"
)

const shutdownTimeout = 5 * time.Second

// Server serves the development output root with live reload.
type Server struct {
	Addr string
	Root string

	hub         *Hub
	metricsPath string
	metrics     http.Handler
	router      *chi.Mux
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts h at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metrics = h
	}
}

// NewServer returns a server for the files below root.
func NewServer(addr, root string, hub *Hub, opts ...Option) *Server {
	s := &Server{Addr: addr, Root: root, hub: hub, router: chi.NewRouter()}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	s.router.Handle("/livereload", s.hub)
	s.router.Get(ScriptPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write([]byte(ClientScript)); err != nil {
			slog.Error("failed to write livereload script", logfields.Error(err))
		}
	})
	if s.metrics != nil {
		s.router.Handle(s.metricsPath, s.metrics)
	}

	files := http.FileServer(http.Dir(filepath.FromSlash(s.Root)))
	s.router.Handle("/*", InjectScript(noCache(files)))
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on Addr until ctx ends. Cancellation is a clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryServer, "listen for preview server").
			Fatal().
			WithContext("addr", s.Addr).
			Build()
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	// No write timeout: event streams stay open.
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       5 * time.Minute,
	}
	log := observability.Logger(ctx)
	log.Info("Preview server listening", logfields.Addr("http://"+ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		s.hub.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return ferrors.WrapError(err, ferrors.CategoryServer, "preview server stopped").Build()
	case <-ctx.Done():
	}

	log.Info("Shutting down preview server")
	s.hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Preview server shutdown", logfields.Error(err))
	}
	return nil
}

// Task returns the serve task of the development graph.
func (s *Server) Task() taskgraph.Task {
	return taskgraph.Task{Name: "serve", Run: s.Serve}
}
