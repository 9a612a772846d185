package di

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kafkanator/internal/config"
	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/internal/modules/reports"
	"github.com/aristath/kafkanator/pkg/inequality"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DataDir:               t.TempDir(),
		Port:                  8080,
		ClusterWorkers:        2,
		SchedulerEnabled:      true,
		HealthCheckSchedule:   "0 */15 * * * *",
		WALCheckpointSchedule: "0 0 * * * *",
		S3:                    &config.S3Config{},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)
	log := zerolog.Nop()

	container, jobs, err := Wire(context.Background(), cfg, log)
	require.NoError(t, err)
	require.NotNil(t, container)
	require.NotNil(t, jobs)
	defer container.Close()

	assert.NotNil(t, container.ReportsDB)
	assert.Nil(t, container.S3Fetcher)
	assert.NotNil(t, container.Loader)
	assert.NotNil(t, container.Calculator)
	assert.NotNil(t, container.IndexService)
	assert.NotNil(t, container.ReportRepo)
	assert.NotNil(t, container.ReportRunner)
	assert.NotNil(t, container.Scheduler)
	assert.NotNil(t, container.ReportScheduler)
	assert.NotNil(t, container.EventBus)
	assert.NotNil(t, container.EventManager)
	assert.Nil(t, container.BackupService)
	assert.False(t, container.StartedAt.IsZero())

	assert.NotNil(t, jobs.HealthCheck)
	assert.Equal(t, 0, jobs.ScheduledReports)
	assert.NoError(t, jobs.HealthCheck.Run())
	require.NotNil(t, jobs.WALCheckpoint)
	assert.NoError(t, jobs.WALCheckpoint.Run())
}

func TestWire_RegistersStoredSchedules(t *testing.T) {
	cfg := testConfig(t)
	log := zerolog.Nop()
	ctx := context.Background()

	container, _, err := Wire(ctx, cfg, log)
	require.NoError(t, err)

	def := &reports.Definition{
		Name: "nightly",
		Source: dataset.Source{
			Kind:    dataset.SourceInline,
			Columns: []string{"g", "x"},
			Rows:    [][]string{{"a", "1"}, {"a", "2"}},
		},
		GroupColumn:  "g",
		IncomeColumn: "x",
		Kind:         inequality.KindTheilL,
		Schedule:     "0 0 2 * * *",
	}
	require.NoError(t, container.ReportRepo.Create(ctx, def))
	require.NoError(t, container.Close())

	container, jobs, err := Wire(ctx, cfg, log)
	require.NoError(t, err)
	defer container.Close()

	assert.Equal(t, 1, jobs.ScheduledReports)
	names := make([]string, 0)
	for _, j := range container.Scheduler.Jobs() {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"health_check", "report:" + def.ID, "wal_checkpoint"}, names)
}

func TestWire_SchedulerDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.SchedulerEnabled = false

	container, jobs, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.Nil(t, jobs.HealthCheck)
	assert.Empty(t, container.Scheduler.Jobs())
}

func TestWire_InvalidHealthSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.HealthCheckSchedule = "whenever"

	_, _, err := Wire(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestWire_S3Enabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.S3 = &config.S3Config{
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	}

	container, _, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.S3Fetcher)
}

func TestWire_S3AndBackups(t *testing.T) {
	cfg := testConfig(t)
	cfg.S3 = &config.S3Config{
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	}
	cfg.Backup = &config.BackupConfig{Bucket: "backups", Schedule: "0 0 3 * * *", RetentionDays: 7}

	container, jobs, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.S3Fetcher)
	assert.NotNil(t, container.BackupService)
	require.NotNil(t, jobs.Backup)

	names := make([]string, 0)
	for _, j := range container.Scheduler.Jobs() {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"backup", "health_check", "wal_checkpoint"}, names)
}
