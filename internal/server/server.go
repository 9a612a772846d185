// Package server provides the HTTP server and routing for kafkanator.
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

	"github.com/aristath/kafkanator/internal/config"
	"github.com/aristath/kafkanator/internal/di"
	fairnesshandlers "github.com/aristath/kafkanator/internal/modules/fairness/handlers"
	indiceshandlers "github.com/aristath/kafkanator/internal/modules/indices/handlers"
	reportshandlers "github.com/aristath/kafkanator/internal/modules/reports/handlers"
	"github.com/aristath/kafkanator/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	backupHandlers *BackupHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.Config.DataDir,
			cfg.Container.ReportsDB,
			cfg.Container.Scheduler,
			cfg.Container.StartedAt,
		),
		backupHandlers: NewBackupHandlers(cfg.Container.BackupService, cfg.Log),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // cluster runs over large datasets
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetJobs registers job instances for manual triggering via API
func (s *Server) SetJobs(healthCheck scheduler.Job) {
	if healthCheck != nil {
		s.systemHandlers.SetHealthCheckJob(healthCheck)
	}
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	indicesHandler := indiceshandlers.NewHandler(s.container.IndexService, s.container.Loader, s.log)
	fairnessHandler := fairnesshandlers.NewHandler(s.container.Loader, s.log)

	var reportScheduler reportshandlers.Scheduler
	if s.cfg.SchedulerEnabled {
		reportScheduler = s.container.ReportScheduler
	}
	reportsHandler := reportshandlers.NewHandler(s.container.ReportRepo, s.container.ReportRunner, reportScheduler, s.log)
	reportsHandler.SetEventManager(s.container.EventManager)

	eventsStreamHandler := NewEventsStreamHandler(s.container.EventBus, s.log)

	s.router.Route("/api", func(r chi.Router) {
		// Report lifecycle events (SSE)
		r.Get("/events/stream", eventsStreamHandler.ServeHTTP)

		indicesHandler.RegisterRoutes(r)
		fairnessHandler.RegisterRoutes(r)
		reportsHandler.RegisterRoutes(r)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
			r.Post("/jobs/health-check", s.systemHandlers.HandleTriggerHealthCheck)
			r.Get("/backups", s.backupHandlers.HandleListBackups)
			r.Post("/backups", s.backupHandlers.HandleCreateBackup)
		})
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
