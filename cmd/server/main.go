// Package main is the entry point for the kafkanator inequality index service.
// It serves index computations over datasets, stores report definitions and
// recomputes scheduled reports in the background.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/kafkanator/internal/config"
	"github.com/aristath/kafkanator/internal/di"
	"github.com/aristath/kafkanator/internal/server"
	"github.com/aristath/kafkanator/internal/version"
	"github.com/aristath/kafkanator/pkg/logger"
)

// main loads configuration, wires the container, starts the HTTP server and
// the scheduler, then waits for SIGINT or SIGTERM and shuts down gracefully.
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("version", version.Version).
		Str("data_dir", cfg.DataDir).
		Int("cluster_workers", cfg.ClusterWorkers).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting kafkanator")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, jobs, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
	})
	srv.SetJobs(jobs.HealthCheck)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	if cfg.SchedulerEnabled {
		container.Scheduler.Start()
		log.Info().Int("scheduled_reports", jobs.ScheduledReports).Msg("Scheduler started")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	log.Info().Msg("Shutting down server...")

	// The HTTP server gets 10 seconds to finish in-flight requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop scheduler after the server so no report run starts mid-shutdown
	if cfg.SchedulerEnabled {
		container.Scheduler.Stop()
	}

	log.Info().Msg("Server stopped")
}
