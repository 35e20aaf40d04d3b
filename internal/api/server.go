// Package api exposes the preset library and generation engine over HTTP.
//
// The surface is small and JSON-only: validate a document, generate terrain
// from one, and CRUD the stored preset library. It exists for map editors
// and web tooling that want the engine without linking it.
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sandfall/strata/pkg/preset/store"
	"github.com/sandfall/strata/pkg/world"
)

// Server holds the API's dependencies.
type Server struct {
	store  store.Store
	table  *world.Table
	logger *log.Logger

	// maxGridCells bounds generate requests so one request cannot
	// allocate an arbitrary grid.
	maxGridCells int
}

// NewServer wires a server. A nil logger discards; a nil table uses the
// builtin materials.
func NewServer(st store.Store, table *world.Table, logger *log.Logger) *Server {
	if table == nil {
		table = world.NewTable()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{
		store:        st,
		table:        table,
		logger:       logger,
		maxGridCells: 1 << 22,
	}
}

// Router builds the HTTP routing tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/generate", s.handleGenerate)

		r.Route("/presets/{folder}", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Get("/{name}", s.handleLoad)
			r.Put("/{name}", s.handleSave)
			r.Delete("/{name}", s.handleDelete)
		})
	})
	return r
}

// ListenAndServe runs the API on addr until the server fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("api listening", "addr", addr)
	return srv.ListenAndServe()
}

// requestLogger logs one line per request in the structured style the rest
// of the binary uses.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
