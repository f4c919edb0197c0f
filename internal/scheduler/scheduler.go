// Package scheduler runs recurring maintenance jobs on cron schedules.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/events"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
	Description() string
}

// JobReport is the recorded outcome of a job's most recent run.
type JobReport struct {
	LastRun  time.Time `json:"last_run"`
	Job      string    `json:"job"`
	Error    string    `json:"error,omitempty"`
	Duration float64   `json:"duration_seconds"`
	Runs     int       `json:"runs"`
	Failures int       `json:"failures"`
}

// Scheduler manages background jobs
type Scheduler struct {
	cron   *cron.Cron
	events *events.Manager
	log    zerolog.Logger

	mu      sync.Mutex
	jobs    map[string]Job
	reports map[string]*JobReport
}

// New creates a new scheduler
func New(eventManager *events.Manager, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		events:  eventManager,
		log:     log.With().Str("component", "scheduler").Logger(),
		jobs:    map[string]Job{},
		reports: map[string]*JobReport{},
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with a cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "0 0 3 * * *"        - 3 AM daily
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}

	s.mu.Lock()
	s.jobs[job.Name()] = job
	if _, ok := s.reports[job.Name()]; !ok {
		s.reports[job.Name()] = &JobReport{Job: job.Name()}
	}
	s.mu.Unlock()

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	return s.runJob(job)
}

// Trigger starts a registered job by name in the background. The outcome
// lands in the job's report and on the event bus like any scheduled run.
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}

	s.log.Info().Str("job", name).Msg("Manual job trigger")
	go s.runJob(job)
	return nil
}

// JobNames returns the names of all registered jobs, sorted.
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Health returns the report for every registered job, sorted by job name.
// Jobs that have not run yet report zero runs and a zero LastRun.
func (s *Scheduler) Health() []JobReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobReport, 0, len(s.reports))
	for _, report := range s.reports {
		out = append(out, *report)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}

func (s *Scheduler) runJob(job Job) (err error) {
	jobID := uuid.New().String()
	started := time.Now()

	s.log.Debug().Str("job", job.Name()).Msg("Running job")
	s.emitStatus(jobID, job, "started", 0, nil)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
		duration := time.Since(started)
		s.record(job.Name(), started, duration, err)

		if err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Dur("duration", duration).
				Msg("Job failed")
			s.emitStatus(jobID, job, "failed", duration, err)
		} else {
			s.log.Debug().
				Str("job", job.Name()).
				Dur("duration", duration).
				Msg("Job completed")
			s.emitStatus(jobID, job, "completed", duration, nil)
		}
	}()

	err = job.Run()
	return err
}

func (s *Scheduler) record(name string, started time.Time, duration time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[name]
	if !ok {
		report = &JobReport{Job: name}
		s.reports[name] = report
	}

	report.LastRun = started
	report.Duration = duration.Seconds()
	report.Runs++
	if err != nil {
		report.Error = err.Error()
		report.Failures++
	} else {
		report.Error = ""
	}
}

func (s *Scheduler) emitStatus(jobID string, job Job, status string, duration time.Duration, err error) {
	if s.events == nil {
		return
	}

	data := &events.JobStatusData{
		JobID:       jobID,
		JobType:     job.Name(),
		Status:      status,
		Description: job.Description(),
		Timestamp:   time.Now(),
	}
	if duration > 0 {
		data.Duration = duration.Seconds()
	}
	if err != nil {
		data.Error = err.Error()
	}

	s.events.EmitTyped(data.EventType(), "scheduler", data)
}
