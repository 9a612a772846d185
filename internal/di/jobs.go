package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/kafkanator/internal/config"
	"github.com/aristath/kafkanator/internal/reliability"
	"github.com/aristath/kafkanator/internal/scheduler"
)

// RegisterJobs registers the database maintenance jobs and every stored
// report with a schedule. Nothing is registered when the scheduler is disabled.
func RegisterJobs(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	instances := &JobInstances{}
	if !cfg.SchedulerEnabled {
		log.Info().Msg("Scheduler disabled, no jobs registered")
		return instances, nil
	}

	instances.HealthCheck = scheduler.NewHealthCheckJob(log, container.ReportsDB)
	if err := container.Scheduler.AddJob(cfg.HealthCheckSchedule, instances.HealthCheck); err != nil {
		return nil, fmt.Errorf("failed to register health check job: %w", err)
	}

	if cfg.WALCheckpointSchedule != "" {
		instances.WALCheckpoint = scheduler.NewWALCheckpointJob(log, container.ReportsDB)
		if err := container.Scheduler.AddJob(cfg.WALCheckpointSchedule, instances.WALCheckpoint); err != nil {
			return nil, fmt.Errorf("failed to register WAL checkpoint job: %w", err)
		}
	}

	if container.BackupService != nil && cfg.Backup.Schedule != "" {
		instances.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
		if err := container.Scheduler.AddJob(cfg.Backup.Schedule, instances.Backup); err != nil {
			return nil, fmt.Errorf("failed to register backup job: %w", err)
		}
	}

	n, err := container.ReportScheduler.Sync(ctx, container.ReportRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to register scheduled reports: %w", err)
	}
	instances.ScheduledReports = n

	return instances, nil
}
