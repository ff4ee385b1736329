// Package server provides the HTTP server and routing for kanbanbar.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/database"
	"github.com/aristath/kanbanbar/internal/modules/display"
	displayhandlers "github.com/aristath/kanbanbar/internal/modules/display/handlers"
	markethandlers "github.com/aristath/kanbanbar/internal/modules/market_hours/handlers"
	"github.com/aristath/kanbanbar/internal/work"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	DB        *database.DB
	Settings  *config.Store
	Scheduler *work.Scheduler
	Display   *display.StateManager
	Market    markethandlers.StatusProvider
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	startedAt      time.Time
	db             *database.DB
	settings       *config.Store
	scheduler      *work.Scheduler
	displayManager *display.StateManager
	market         markethandlers.StatusProvider
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		startedAt:      time.Now(),
		db:             cfg.DB,
		settings:       cfg.Settings,
		scheduler:      cfg.Scheduler,
		displayManager: cfg.Display,
		market:         cfg.Market,
	}
	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.DB, s.startedAt)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: /api/stream holds its connection open
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5, "application/json"))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		if s.displayManager != nil {
			displayhandlers.NewHandler(s.displayManager, s.log).RegisterRoutes(r)
		}
		if s.market != nil {
			markethandlers.NewHandler(s.market, s.log).RegisterRoutes(r)
		}

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.handleListJobs)
			r.Post("/{job}/restart", s.handleRestartJob)
		})
		r.Post("/config/reload", s.handleReloadConfig)
		r.Get("/system", s.systemHandlers.HandleSystemStatus)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
