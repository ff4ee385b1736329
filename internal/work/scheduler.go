package work

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/clock"
)

// ErrUnknownJob is returned for names that were never registered.
var ErrUnknownJob = errors.New("unknown job")

// Scheduler drives every registered PollJob as its own self-rescheduling loop.
// Per job there is at most one armed timer and at most one cycle in flight.
type Scheduler struct {
	registry *Registry
	clock    clock.Clock
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	states map[string]*jobState
}

type jobState struct {
	mu    sync.Mutex
	name  string
	state State
	token *CancellationToken

	// running admits one cycle at a time; a restarted cycle waits for the cancelled one to unwind.
	running chan struct{}

	seq       int64
	runs      int64
	failures  int64
	lastErr   string
	readyErr  string
	lastRunAt time.Time
	nextRunAt time.Time
}

// NewScheduler creates a scheduler over the registry's jobs.
func NewScheduler(registry *Registry, clk clock.Clock, log zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		registry: registry,
		clock:    clk,
		log:      log.With().Str("component", "scheduler").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		states:   make(map[string]*jobState),
	}
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

func (s *Scheduler) stateFor(name string) (*jobState, PollJob, error) {
	job, ok := s.registry.Get(name)
	if !ok {
		return nil, PollJob{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	js, ok := s.states[name]
	if !ok {
		js = &jobState{name: name, running: make(chan struct{}, 1)}
		s.states[name] = js
	}
	return js, job, nil
}

// StartAll starts every registered job. Jobs whose configuration is incomplete stay stopped.
func (s *Scheduler) StartAll() {
	for _, name := range s.registry.Names() {
		if err := s.Start(name); err != nil {
			s.log.Debug().Err(err).Str("job", name).Msg("Job not started")
		}
	}
}

// Start runs the first cycle of a job immediately. Same as Restart.
func (s *Scheduler) Start(name string) error {
	return s.Restart(name)
}

// Restart cancels the job's pending timer and in-flight cycle, then arms a
// zero-delay timer for an initial cycle. Back-to-back restarts leave one timer.
// A job that is not ready is stopped and its configuration error returned.
func (s *Scheduler) Restart(name string) error {
	js, job, err := s.stateFor(name)
	if err != nil {
		return err
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	if job.Ready != nil {
		if err := job.Ready(); err != nil {
			s.stopLocked(js)
			// Logged once per distinct configuration problem
			if msg := err.Error(); msg != js.readyErr {
				js.readyErr = msg
				s.log.Warn().Err(err).Str("job", name).Msg("Job not started, configuration incomplete")
			}
			return err
		}
	}
	js.readyErr = ""

	if s.ctx.Err() != nil {
		return context.Canceled
	}

	s.arm(js, job, 0, true)
	return nil
}

// Stop cancels the job's timer and in-flight cycle.
func (s *Scheduler) Stop(name string) error {
	js, _, err := s.stateFor(name)
	if err != nil {
		return err
	}

	js.mu.Lock()
	defer js.mu.Unlock()
	s.stopLocked(js)
	return nil
}

// StopAll cancels every job and waits for in-flight cycles to unwind or ctx to end.
func (s *Scheduler) StopAll(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	states := make([]*jobState, 0, len(s.states))
	for _, js := range s.states {
		states = append(states, js)
	}
	s.mu.Unlock()

	for _, js := range states {
		js.mu.Lock()
		s.stopLocked(js)
		js.mu.Unlock()
	}

	for _, js := range states {
		select {
		case js.running <- struct{}{}:
			<-js.running
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Scheduler) stopLocked(js *jobState) {
	if js.token != nil {
		js.token.Cancel()
		js.token = nil
	}
	js.state = StateCancelled
	js.nextRunAt = time.Time{}
}

// arm replaces the job's token and schedules the next cycle. Caller holds js.mu.
func (s *Scheduler) arm(js *jobState, job PollJob, delay time.Duration, initial bool) {
	if js.token != nil {
		js.token.Cancel()
	}

	token := NewCancellationToken(s.ctx)
	js.token = token
	if js.state != StateRunning {
		js.state = StateIdle
	}
	js.nextRunAt = s.clock.Now().Add(delay)

	token.attach(s.clock.AfterFunc(delay, func() {
		s.fire(js, job.Name, token, initial)
	}))
}

func (s *Scheduler) fire(js *jobState, name string, token *CancellationToken, initial bool) {
	if token.Cancelled() {
		return
	}

	select {
	case js.running <- struct{}{}:
	case <-token.Done():
		return
	}
	defer func() { <-js.running }()

	// The definition is re-read so a re-registered job takes effect on its next cycle
	job, ok := s.registry.Get(name)
	if !ok {
		return
	}

	js.mu.Lock()
	if js.token != token {
		js.mu.Unlock()
		return
	}
	js.seq++
	run := Run{ID: uuid.NewString(), Seq: js.seq, Initial: initial}
	js.state = StateRunning
	js.lastRunAt = s.clock.Now()
	js.nextRunAt = time.Time{}
	js.mu.Unlock()

	log := s.log.With().Str("job", name).Str("run_id", run.ID).Int64("seq", run.Seq).Logger()
	log.Debug().Bool("initial", initial).Msg("Cycle started")

	outcome, err := s.runCycle(token.Context(), job, run)

	js.mu.Lock()
	defer js.mu.Unlock()

	js.runs++
	superseded := js.token != token || token.Cancelled()
	switch {
	case err != nil && superseded && errors.Is(err, context.Canceled):
		log.Debug().Msg("Cycle cancelled")
	case err != nil:
		js.failures++
		js.lastErr = err.Error()
		log.Warn().Err(err).Msg("Cycle failed")
	default:
		js.lastErr = ""
		log.Debug().Bool("gated", outcome == OutcomeGated).Msg("Cycle completed")
	}

	if superseded {
		// Whoever replaced the token owns the schedule now
		if js.token == nil {
			js.state = StateCancelled
		} else {
			js.state = StateIdle
		}
		return
	}

	js.state = StateIdle
	s.arm(js, job, s.intervals(job).Next(outcome, err), false)
}

func (s *Scheduler) intervals(job PollJob) Intervals {
	if job.Intervals == nil {
		return Intervals{Interval: 5 * time.Second, Idle: 30 * time.Second}
	}
	return job.Intervals()
}

func (s *Scheduler) runCycle(ctx context.Context, job PollJob, run Run) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, CycleTimeout)
	defer cancel()

	return job.Cycle(ctx, run)
}

// Status returns a snapshot of one job.
func (s *Scheduler) Status(name string) (Status, error) {
	js, _, err := s.stateFor(name)
	if err != nil {
		return Status{}, err
	}

	js.mu.Lock()
	defer js.mu.Unlock()
	return Status{
		Name:      name,
		State:     js.state.String(),
		Scheduled: js.token != nil && !js.token.Cancelled(),
		Runs:      js.runs,
		Failures:  js.failures,
		LastError: js.lastErr,
		LastRunAt: js.lastRunAt,
		NextRunAt: js.nextRunAt,
	}, nil
}

// Statuses returns a snapshot of every job in registration order.
func (s *Scheduler) Statuses() []Status {
	names := s.registry.Names()
	out := make([]Status, 0, len(names))
	for _, name := range names {
		if st, err := s.Status(name); err == nil {
			out = append(out, st)
		}
	}
	return out
}
