package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsim/internal/events"
)

// fakeJob is a scripted job for scheduler tests.
type fakeJob struct {
	name string
	run  func() error
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "scripted test job" }
func (j *fakeJob) Run() error {
	if j.run != nil {
		return j.run()
	}
	return nil
}

func setupScheduler(t *testing.T) (*Scheduler, *events.Bus) {
	t.Helper()

	log := zerolog.Nop()
	bus := events.NewBus(log)
	manager := events.NewManager(bus, log)

	return New(manager, log), bus
}

func TestScheduler_RunNow(t *testing.T) {
	s, _ := setupScheduler(t)

	ran := 0
	job := &fakeJob{name: "touch", run: func() error {
		ran++
		return nil
	}}

	require.NoError(t, s.RunNow(job))
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 2, ran)

	health := s.Health()
	require.Len(t, health, 1)
	assert.Equal(t, "touch", health[0].Job)
	assert.Equal(t, 2, health[0].Runs)
	assert.Equal(t, 0, health[0].Failures)
	assert.Empty(t, health[0].Error)
	assert.False(t, health[0].LastRun.IsZero())
}

func TestScheduler_RecordsFailure(t *testing.T) {
	s, _ := setupScheduler(t)

	job := &fakeJob{name: "flaky", run: func() error {
		return errors.New("disk on fire")
	}}

	err := s.RunNow(job)
	require.Error(t, err)

	health := s.Health()
	require.Len(t, health, 1)
	assert.Equal(t, 1, health[0].Failures)
	assert.Equal(t, "disk on fire", health[0].Error)

	// A later success clears the recorded error but keeps the failure count.
	job.run = nil
	require.NoError(t, s.RunNow(job))

	health = s.Health()
	assert.Equal(t, 2, health[0].Runs)
	assert.Equal(t, 1, health[0].Failures)
	assert.Empty(t, health[0].Error)
}

func TestScheduler_RecoversPanic(t *testing.T) {
	s, _ := setupScheduler(t)

	job := &fakeJob{name: "reckless", run: func() error {
		panic("index out of range")
	}}

	err := s.RunNow(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job panicked")

	health := s.Health()
	require.Len(t, health, 1)
	assert.Equal(t, 1, health[0].Failures)
	assert.Contains(t, health[0].Error, "index out of range")
}

func TestScheduler_EmitsJobLifecycle(t *testing.T) {
	s, bus := setupScheduler(t)

	eventCh := bus.Subscribe("")
	defer bus.Unsubscribe(eventCh)

	require.NoError(t, s.RunNow(&fakeJob{name: "touch"}))

	started := <-eventCh
	assert.Equal(t, events.JobStarted, started.Type)
	assert.Equal(t, "touch", started.Data["job_type"])
	assert.NotEmpty(t, started.Data["job_id"])

	completed := <-eventCh
	assert.Equal(t, events.JobCompleted, completed.Type)
	assert.Equal(t, started.Data["job_id"], completed.Data["job_id"])
}

func TestScheduler_EmitsFailureEvent(t *testing.T) {
	s, bus := setupScheduler(t)

	eventCh := bus.Subscribe(events.JobFailed)
	defer bus.Unsubscribe(eventCh)

	_ = s.RunNow(&fakeJob{name: "flaky", run: func() error {
		return errors.New("no space left")
	}})

	select {
	case ev := <-eventCh:
		assert.Equal(t, events.JobFailed, ev.Type)
		assert.Equal(t, "no space left", ev.Data["error"])
	default:
		t.Fatal("expected a JOB_FAILED event")
	}
}

func TestScheduler_RejectsInvalidSchedule(t *testing.T) {
	s, _ := setupScheduler(t)

	err := s.AddJob("every monday maybe", &fakeJob{name: "touch"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule job touch")
}

func TestScheduler_TriggerByName(t *testing.T) {
	s, _ := setupScheduler(t)

	done := make(chan struct{})
	var once sync.Once
	job := &fakeJob{name: "vacuum", run: func() error {
		once.Do(func() { close(done) })
		return nil
	}}
	require.NoError(t, s.AddJob("@every 1h", job))
	assert.Equal(t, []string{"vacuum"}, s.JobNames())

	require.NoError(t, s.Trigger("vacuum"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("triggered job never ran")
	}

	err := s.Trigger("defrag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job")
}

func TestScheduler_RunsScheduledJob(t *testing.T) {
	s, _ := setupScheduler(t)

	done := make(chan struct{})
	var once sync.Once
	job := &fakeJob{name: "pulse", run: func() error {
		once.Do(func() { close(done) })
		return nil
	}}

	require.NoError(t, s.AddJob("@every 10ms", job))
	s.Start()
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job did not run in time")
	}
}
