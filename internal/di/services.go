package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/kafkanator/internal/config"
	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/internal/events"
	"github.com/aristath/kafkanator/internal/modules/indices"
	"github.com/aristath/kafkanator/internal/modules/reports"
	"github.com/aristath/kafkanator/internal/reliability"
	"github.com/aristath/kafkanator/internal/scheduler"
	"github.com/aristath/kafkanator/internal/version"
	"github.com/aristath/kafkanator/pkg/inequality"
)

// InitializeServices creates the dataset loader, index services and report
// components on top of the container's databases
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	if cfg.S3.Enabled() {
		client, err := dataset.NewS3Client(ctx, cfg.S3.ToDatasetConfig())
		if err != nil {
			return fmt.Errorf("failed to initialize s3 client: %w", err)
		}
		container.S3Fetcher = dataset.NewS3Fetcher(client)
		log.Info().Str("region", cfg.S3.Region).Str("endpoint", cfg.S3.Endpoint).Msg("S3 dataset source enabled")

		if cfg.Backup.Enabled() {
			store := reliability.NewS3Store(client, cfg.Backup.Bucket)
			container.BackupService = reliability.NewBackupService(store, cfg.DataDir, version.Version, log, container.ReportsDB)
			log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Backups enabled")
		}
	}
	container.Loader = dataset.NewLoader(cfg.DataDir, container.S3Fetcher, log)

	container.Calculator = inequality.NewCalculator(log)
	container.IndexService = indices.NewService(container.Calculator, cfg.ClusterWorkers, log)

	container.ReportRepo = reports.NewRepository(container.ReportsDB.Conn(), log)
	container.ReportRunner = reports.NewRunner(container.ReportRepo, container.Loader, container.IndexService, log)
	container.ReportRunner.SetEventManager(container.EventManager)

	container.Scheduler = scheduler.New(log)
	container.ReportScheduler = scheduler.NewReportScheduler(container.Scheduler, container.ReportRunner, log)

	return nil
}
