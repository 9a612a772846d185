package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/kafkanator/internal/modules/reports"
)

// DefaultReportTimeout bounds a single scheduled report run.
const DefaultReportTimeout = 10 * time.Minute

// ReportRunner executes a stored report definition.
type ReportRunner interface {
	Run(ctx context.Context, id string) (*reports.Result, error)
}

// ReportJob recomputes one saved report.
type ReportJob struct {
	id      string
	name    string
	runner  ReportRunner
	timeout time.Duration
	log     zerolog.Logger
}

// NewReportJob creates the job for a report definition
func NewReportJob(def reports.Definition, runner ReportRunner, log zerolog.Logger) *ReportJob {
	return &ReportJob{
		id:      def.ID,
		name:    def.Name,
		runner:  runner,
		timeout: DefaultReportTimeout,
		log:     log.With().Str("job", reportJobName(def.ID)).Logger(),
	}
}

func reportJobName(id string) string {
	return "report:" + id
}

// Name returns the job name
func (j *ReportJob) Name() string {
	return reportJobName(j.id)
}

// Run executes the report
func (j *ReportJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	res, err := j.runner.Run(ctx, j.id)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("report", j.name).
		Float64("overall", res.Overall).
		Int("clusters", len(res.Clusters)).
		Msg("Scheduled report computed")
	return nil
}

// DefinitionLister lists stored report definitions.
type DefinitionLister interface {
	List(ctx context.Context) ([]reports.Definition, error)
}

// ReportScheduler keeps the jobs of scheduled reports in sync with their definitions.
type ReportScheduler struct {
	scheduler *Scheduler
	runner    ReportRunner
	log       zerolog.Logger
}

// NewReportScheduler creates a report scheduler on top of s
func NewReportScheduler(s *Scheduler, runner ReportRunner, log zerolog.Logger) *ReportScheduler {
	return &ReportScheduler{
		scheduler: s,
		runner:    runner,
		log:       log.With().Str("component", "report_scheduler").Logger(),
	}
}

// ScheduleReport registers (or re-registers) the job of def. Definitions
// without a schedule are ignored.
func (r *ReportScheduler) ScheduleReport(def reports.Definition) error {
	if def.Schedule == "" {
		return nil
	}
	return r.scheduler.AddJob(def.Schedule, NewReportJob(def, r.runner, r.log))
}

// UnscheduleReport drops the job of a report, if any.
func (r *ReportScheduler) UnscheduleReport(id string) {
	r.scheduler.RemoveJob(reportJobName(id))
}

// Sync registers a job for every stored definition that has a schedule.
// A definition that fails to register is logged and skipped.
func (r *ReportScheduler) Sync(ctx context.Context, lister DefinitionLister) (int, error) {
	defs, err := lister.List(ctx)
	if err != nil {
		return 0, err
	}

	registered := 0
	for _, def := range defs {
		if def.Schedule == "" {
			continue
		}
		if err := r.ScheduleReport(def); err != nil {
			r.log.Warn().Err(err).Str("id", def.ID).Str("schedule", def.Schedule).Msg("Skipping report with invalid schedule")
			continue
		}
		registered++
	}

	r.log.Info().Int("reports", registered).Msg("Scheduled reports registered")
	return registered, nil
}
