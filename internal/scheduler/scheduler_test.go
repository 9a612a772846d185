package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kafkanator/internal/modules/reports"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func TestAddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 */5 * * * *", &countingJob{name: "a"}))
	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "b"}))
	assert.Error(t, s.AddJob("not a schedule", &countingJob{name: "c"}))

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "0 */5 * * * *", jobs[0].Schedule)
	assert.Equal(t, "b", jobs[1].Name)
}

func TestAddJob_ReplacesSameName(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "a"}))
	require.NoError(t, s.AddJob("@daily", &countingJob{name: "a"}))

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "@daily", jobs[0].Schedule)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestRemoveJob(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "a"}))

	assert.True(t, s.RemoveJob("a"))
	assert.False(t, s.RemoveJob("a"))
	assert.Empty(t, s.Jobs())
	assert.Empty(t, s.cron.Entries())
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{name: "a"}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())

	failing := &countingJob{name: "b", err: errors.New("boom")}
	assert.Error(t, s.RunNow(failing))
}

func TestScheduledJobRuns(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "tick"}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

type fakeRunner struct {
	ids []string
	err error
}

func (f *fakeRunner) Run(_ context.Context, id string) (*reports.Result, error) {
	f.ids = append(f.ids, id)
	if f.err != nil {
		return nil, f.err
	}
	return &reports.Result{DefinitionID: id, Overall: 0.3}, nil
}

type fakeLister struct {
	defs []reports.Definition
	err  error
}

func (f *fakeLister) List(context.Context) ([]reports.Definition, error) {
	return f.defs, f.err
}

func TestReportJob(t *testing.T) {
	runner := &fakeRunner{}
	job := NewReportJob(reports.Definition{ID: "r1", Name: "salaries"}, runner, zerolog.Nop())

	assert.Equal(t, "report:r1", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, []string{"r1"}, runner.ids)

	runner.err = errors.New("dataset gone")
	assert.Error(t, job.Run())
}

func TestReportScheduler_Sync(t *testing.T) {
	s := New(zerolog.Nop())
	rs := NewReportScheduler(s, &fakeRunner{}, zerolog.Nop())

	lister := &fakeLister{defs: []reports.Definition{
		{ID: "a", Schedule: "@hourly"},
		{ID: "b"},
		{ID: "c", Schedule: "bogus"},
		{ID: "d", Schedule: "0 30 2 * * *"},
	}}

	n, err := rs.Sync(context.Background(), lister)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "report:a", jobs[0].Name)
	assert.Equal(t, "report:d", jobs[1].Name)

	rs.UnscheduleReport("a")
	assert.Len(t, s.Jobs(), 1)

	// definitions without a schedule are not registered
	require.NoError(t, rs.ScheduleReport(reports.Definition{ID: "e"}))
	assert.Len(t, s.Jobs(), 1)

	_, err = rs.Sync(context.Background(), &fakeLister{err: errors.New("db closed")})
	assert.Error(t, err)
}

type fakeDB struct {
	name string
	err  error
}

func (f *fakeDB) QuickCheck(context.Context) error { return f.err }
func (f *fakeDB) Name() string                     { return f.name }

func TestHealthCheckJob(t *testing.T) {
	healthy := NewHealthCheckJob(zerolog.Nop(), &fakeDB{name: "reports"})
	assert.Equal(t, "health_check", healthy.Name())
	assert.NoError(t, healthy.Run())

	broken := NewHealthCheckJob(zerolog.Nop(), &fakeDB{name: "reports"}, &fakeDB{name: "other", err: errors.New("malformed")})
	err := broken.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other")
}
