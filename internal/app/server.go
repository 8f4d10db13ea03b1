package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/api/handlers"
	appMiddleware "github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/api/middlewares"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/config"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewServer builds and wires all routes. uploader may be nil when object storage is not
// configured, in which case the upload route is not mounted.
func NewServer(cfg *config.Config, ingest handlers.Submitter, uploader handlers.Uploader, search handlers.Searcher, health Pinger, log *slog.Logger) *Server {
	ingestHandler := handlers.NewIngestHandler(ingest, uploader, log)
	searchHandler := handlers.NewSearchHandler(search, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := health.Ping(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		if cfg.JWTSecret != "" {
			api.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
		} else {
			log.Warn("JWT_SECRET not set, /api routes are open")
		}

		// Inline (?sync=true) ingestion can run for minutes, so only search is bounded.
		api.Post("/ingest", ingestHandler.Submit)
		api.Get("/ingest/{jobId}", ingestHandler.Status)
		if uploader != nil {
			api.Post("/documents/upload", ingestHandler.Upload)
		}
		api.With(middleware.Timeout(60*time.Second)).Post("/search", searchHandler.Search)
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
