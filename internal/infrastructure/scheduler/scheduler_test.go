package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingExecutor struct {
	mu       sync.Mutex
	executed []JobType
	failures int // fail this many executions before succeeding
	done     chan struct{}
}

func newRecordingExecutor(expected int) *recordingExecutor {
	return &recordingExecutor{done: make(chan struct{}, expected)}
}

func (e *recordingExecutor) Execute(_ context.Context, job *Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, job.Type)
	e.done <- struct{}{}
	if e.failures > 0 {
		e.failures--
		return errors.New("transient failure")
	}
	return nil
}

func (e *recordingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.executed)
}

func waitForExecutions(t *testing.T, executor *recordingExecutor, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-executor.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for execution %d of %d", i+1, n)
		}
	}
}

func newTestScheduler(executor JobExecutor) *Scheduler {
	cfg := DefaultSchedulerConfig()
	cfg.MaxConcurrentJobs = 1
	cfg.RetryDelay = 10 * time.Millisecond
	return NewScheduler(cfg, executor, zap.NewNop())
}

func TestScheduler_SubmitBeforeStart(t *testing.T) {
	s := newTestScheduler(newRecordingExecutor(0))

	err := s.SubmitJob(NewJob(JobTypeBlacklistSweep, time.Time{}, 0))

	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_ExecutesSubmittedJob(t *testing.T) {
	executor := newRecordingExecutor(1)
	s := newTestScheduler(executor)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	require.NoError(t, s.ScheduleBlacklistSweep())

	waitForExecutions(t, executor, 1)
	assert.Equal(t, JobTypeBlacklistSweep, executor.executed[0])
}

func TestScheduler_RetriesFailedJob(t *testing.T) {
	executor := newRecordingExecutor(2)
	executor.failures = 1
	s := newTestScheduler(executor)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	job := NewJob(JobTypeCatalogSummary, time.Now(), 3)
	require.NoError(t, s.SubmitJob(job))

	waitForExecutions(t, executor, 2)
	assert.Equal(t, 2, executor.count())
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	executor := newRecordingExecutor(1)
	s := newTestScheduler(executor)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))

	require.NoError(t, s.ScheduleDailySummary())
	waitForExecutions(t, executor, 1)

	assert.NoError(t, s.Stop(ctx))
	assert.NoError(t, s.Stop(ctx))
}

func TestJob_RetryBookkeeping(t *testing.T) {
	job := NewJob(JobTypeCatalogSummary, time.Now(), 2)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)

	job.Fail("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.NotNil(t, job.NextRetryAt)

	job.Fail("boom")
	job.ScheduleRetry(time.Minute)
	job.Fail("boom")
	assert.False(t, job.ShouldRetry())
}
