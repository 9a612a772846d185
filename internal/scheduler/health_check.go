package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is a database that can verify its own integrity.
type HealthChecker interface {
	QuickCheck(ctx context.Context) error
	Name() string
}

// HealthCheckJob runs a quick integrity check over the databases
type HealthCheckJob struct {
	databases []HealthChecker
	timeout   time.Duration
	log       zerolog.Logger
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(log zerolog.Logger, databases ...HealthChecker) *HealthCheckJob {
	return &HealthCheckJob{
		databases: databases,
		timeout:   30 * time.Second,
		log:       log.With().Str("job", "health_check").Logger(),
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Run executes the health check
func (j *HealthCheckJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	for _, db := range j.databases {
		if err := db.QuickCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Database integrity check failed")
			return fmt.Errorf("%s: %w", db.Name(), err)
		}
	}

	j.log.Debug().
		Int("databases", len(j.databases)).
		Dur("duration", time.Since(start)).
		Msg("Database health check passed")
	return nil
}
