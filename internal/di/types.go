// Package di provides dependency injection type definitions.
package di

import (
	"time"

	"github.com/aristath/kafkanator/internal/database"
	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/internal/events"
	"github.com/aristath/kafkanator/internal/modules/indices"
	"github.com/aristath/kafkanator/internal/modules/reports"
	"github.com/aristath/kafkanator/internal/reliability"
	"github.com/aristath/kafkanator/internal/scheduler"
	"github.com/aristath/kafkanator/pkg/inequality"
)

// Container holds all dependencies for the application.
// It is created by Wire() and passed to the server for access to services.
type Container struct {
	// Databases
	ReportsDB *database.DB // reports.db - saved report definitions and results

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Datasets
	S3Fetcher *dataset.S3Fetcher // nil when S3 is not configured
	Loader    *dataset.Loader

	// Services
	Calculator   *inequality.Calculator
	IndexService *indices.Service

	// Reports
	ReportRepo   *reports.Repository
	ReportRunner *reports.Runner

	// Backups
	BackupService *reliability.BackupService // nil when backups are not configured

	// Background jobs
	Scheduler       *scheduler.Scheduler
	ReportScheduler *scheduler.ReportScheduler

	StartedAt time.Time
}

// JobInstances holds the jobs registered at startup
type JobInstances struct {
	HealthCheck      *scheduler.HealthCheckJob
	WALCheckpoint    *scheduler.WALCheckpointJob
	Backup           *reliability.BackupJob
	ScheduledReports int
}

// Close releases the container's databases
func (c *Container) Close() error {
	if c.ReportsDB != nil {
		return c.ReportsDB.Close()
	}
	return nil
}
