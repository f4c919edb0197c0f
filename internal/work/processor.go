package work

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/domain"
	"github.com/aristath/qsim/internal/events"
	"github.com/aristath/qsim/internal/modules/settings"
	"github.com/aristath/qsim/internal/quantum"
)

// Processor executes queued sweeps one at a time. Points within a sweep fan
// out over a bounded worker set sized from settings. A permanent rejection
// fails the whole sweep; transient memory pressure retries the point.
type Processor struct {
	simulator domain.Simulator
	settings  *settings.Service
	events    *events.Manager
	archive   *Archive
	log       zerolog.Logger

	trigger chan struct{}
	stop    chan struct{}
	stopped chan struct{}

	retryDelay time.Duration

	pending  []string
	statuses map[string]*SweepStatus
	mu       sync.Mutex
}

// NewProcessor creates a sweep processor. archive may be nil, in which case
// finished sweeps survive only as long as the process does.
func NewProcessor(simulator domain.Simulator, settingsService *settings.Service, eventManager *events.Manager, archive *Archive, log zerolog.Logger) *Processor {
	return &Processor{
		simulator:  simulator,
		settings:   settingsService,
		events:     eventManager,
		archive:    archive,
		log:        log.With().Str("component", "sweep_processor").Logger(),
		trigger:    make(chan struct{}, 1),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
		retryDelay: pointRetryDelay,
		statuses:   make(map[string]*SweepStatus),
	}
}

// Run starts the processor loop. This blocks until Stop() is called.
func (p *Processor) Run() {
	defer close(p.stopped)

	for {
		select {
		case <-p.stop:
			return
		case <-p.trigger:
			p.drainPending()
		}
	}
}

// Stop stops the processor and waits for the loop to exit. A sweep in flight
// is interrupted and marked failed.
func (p *Processor) Stop() {
	close(p.stop)
	<-p.stopped
}

// Trigger wakes up the processor to check for queued sweeps.
// This is non-blocking and can be called from any goroutine.
func (p *Processor) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
		// Trigger already pending
	}
}

// Enqueue validates and queues a sweep, returning its id.
func (p *Processor) Enqueue(req SweepRequest) (string, error) {
	if err := req.Validate(p.settings.SweepMaxSteps()); err != nil {
		return "", err
	}

	st := &SweepStatus{
		ID:        uuid.New().String(),
		State:     SweepStateQueued,
		Request:   req,
		Total:     req.Steps,
		CreatedAt: time.Now().UTC(),
	}

	p.mu.Lock()
	p.statuses[st.ID] = st
	p.pending = append(p.pending, st.ID)
	p.mu.Unlock()

	p.log.Info().
		Str("sweep_id", st.ID).
		Str("algorithm", string(req.Algorithm)).
		Str("parameter", string(req.Parameter)).
		Int("steps", req.Steps).
		Msg("Sweep queued")
	p.emitStatus(st, "queued")
	p.Trigger()

	return st.ID, nil
}

// Status returns a point-in-time copy of a sweep's progress. Sweeps no longer
// held in memory are looked up in the archive.
func (p *Processor) Status(id string) (*SweepStatus, bool) {
	p.mu.Lock()
	if st, ok := p.statuses[id]; ok {
		out := st.snapshot()
		p.mu.Unlock()
		return out, true
	}
	p.mu.Unlock()

	if p.archive == nil {
		return nil, false
	}
	archived, err := p.archive.Get(id)
	if err != nil {
		p.log.Warn().Err(err).Str("sweep_id", id).Msg("Failed to read archived sweep")
		return nil, false
	}
	if archived == nil {
		return nil, false
	}
	return archived, true
}

// drainPending runs queued sweeps until the queue is empty or the processor
// is stopped.
func (p *Processor) drainPending() {
	for {
		select {
		case <-p.stop:
			return
		default:
		}

		st := p.popPending()
		if st == nil {
			return
		}
		p.runSweep(st)
	}
}

func (p *Processor) popPending() *SweepStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) == 0 {
		return nil
	}
	id := p.pending[0]
	p.pending = p.pending[1:]
	return p.statuses[id]
}

// runSweep simulates every point of one sweep and settles its terminal state.
func (p *Processor) runSweep(st *SweepStatus) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-p.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	p.mu.Lock()
	st.State = SweepStateRunning
	st.StartedAt = time.Now().UTC()
	st.Points = make([]SweepPoint, st.Total)
	p.mu.Unlock()
	p.emitStatus(st, "started")

	timeout := p.settings.DefaultTimeout()
	workers := p.settings.SweepWorkers()
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var failOnce sync.Once

	for i, value := range st.Request.values() {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, value float64) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			point, err := p.runPoint(ctx, st.Request, value, timeout)
			if err != nil {
				// Only the first failure names the cause; the cancel
				// drains the remaining points.
				failOnce.Do(func() {
					p.mu.Lock()
					st.Error = err.Error()
					p.mu.Unlock()
					cancel()
				})
				return
			}

			p.mu.Lock()
			st.Points[i] = point
			st.Completed++
			p.mu.Unlock()
			p.emitStatus(st, "progress")
		}(i, value)
	}
	wg.Wait()

	p.mu.Lock()
	st.FinishedAt = time.Now().UTC()
	switch {
	case st.Error != "":
		st.State = SweepStateFailed
	case st.Completed < st.Total:
		st.State = SweepStateFailed
		st.Error = "sweep interrupted before completion"
	default:
		st.State = SweepStateCompleted
	}
	state := st.State
	errMsg := st.Error
	p.mu.Unlock()

	if state == SweepStateCompleted {
		p.log.Info().
			Str("sweep_id", st.ID).
			Str("algorithm", string(st.Request.Algorithm)).
			Int("points", st.Total).
			Msg("Sweep completed")
		p.emitStatus(st, "completed")
	} else {
		p.log.Warn().
			Str("sweep_id", st.ID).
			Str("error", errMsg).
			Msg("Sweep failed")
		p.emitStatus(st, "failed")
	}

	p.archiveSweep(st)
}

// runPoint simulates one sweep point, retrying transient memory-pressure
// rejections up to MaxPointRetries times.
func (p *Processor) runPoint(ctx context.Context, req SweepRequest, value float64, timeout time.Duration) (SweepPoint, error) {
	simReq := domain.SimulationRequest{
		Algorithm: req.Algorithm,
		Qubits:    req.Qubits,
		Noise:     req.noiseAt(value),
		Timeout:   timeout,
	}

	var lastErr error
	for attempt := 0; attempt <= MaxPointRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return SweepPoint{}, ctx.Err()
			case <-time.After(p.retryDelay):
			}
		}

		result, err := p.simulator.Simulate(ctx, simReq)
		if err == nil {
			return SweepPoint{
				Value:     value,
				RunID:     result.RunID,
				Fidelity:  result.Fidelity,
				ErrorRate: result.ErrorRate,
				Valid:     result.Valid,
				Retries:   attempt,
			}, nil
		}

		lastErr = err
		if !transient(err) {
			break
		}
		p.log.Warn().
			Err(err).
			Float64("value", value).
			Int("attempt", attempt+1).
			Msg("Sweep point rejected, will retry")
	}
	return SweepPoint{}, lastErr
}

// transient reports whether a failure is memory pressure that may clear, as
// opposed to a permanent rejection of the request itself. The capacity guard
// annotates pressure rejections with a detail string; the hard qubit ceiling
// does not.
func transient(err error) bool {
	var rerr *quantum.ResourceError
	return errors.As(err, &rerr) && rerr.Detail != ""
}

func (p *Processor) emitStatus(st *SweepStatus, status string) {
	if p.events == nil {
		return
	}

	p.mu.Lock()
	data := &events.SweepStatusData{
		SweepID:   st.ID,
		Status:    status,
		Algorithm: string(st.Request.Algorithm),
		Parameter: string(st.Request.Parameter),
		Completed: st.Completed,
		Total:     st.Total,
		Error:     st.Error,
	}
	p.mu.Unlock()

	p.events.EmitTyped(data.EventType(), "work", data)
}

func (p *Processor) archiveSweep(st *SweepStatus) {
	if p.archive == nil {
		return
	}

	p.mu.Lock()
	snap := st.snapshot()
	p.mu.Unlock()

	if err := p.archive.Save(snap); err != nil {
		p.log.Error().Err(err).Str("sweep_id", snap.ID).Msg("Failed to archive sweep")
	}
}
