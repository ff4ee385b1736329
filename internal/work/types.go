// Package work provides the poll scheduler: independently paced, cancellable,
// self-rescheduling loops, one per data source.
package work

import (
	"context"
	"time"
)

// CycleTimeout bounds a single cycle. Clients use shorter per-request timeouts.
const CycleTimeout = 30 * time.Second

// State is the lifecycle state of a poll job.
type State int

const (
	// StateIdle means a timer is armed, or the job was never started.
	StateIdle State = iota
	// StateRunning means a cycle is in flight.
	StateRunning
	// StateCancelled means the job is stopped and has no pending timer.
	StateCancelled
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome tells the scheduler how to pace the next cycle.
type Outcome int

const (
	// OutcomeDone schedules the next cycle after the normal interval.
	OutcomeDone Outcome = iota
	// OutcomeGated means live work was skipped; the idle interval applies.
	OutcomeGated
)

// Run describes one invocation of a cycle.
type Run struct {
	// ID correlates log lines of one cycle.
	ID string
	// Seq counts cycles of the job, starting at 1.
	Seq int64
	// Initial is true for the first cycle after a start or restart.
	Initial bool
}

// CycleFunc performs one fetch-and-render pass.
// A returned error is logged and the loop continues at the retry interval.
type CycleFunc func(ctx context.Context, run Run) (Outcome, error)

// Intervals are the delays the scheduler chooses between.
type Intervals struct {
	Interval time.Duration
	Idle     time.Duration
	// Retry is used after a failed cycle. Zero means Interval.
	Retry time.Duration
}

// Next picks the delay for the given cycle result.
func (iv Intervals) Next(outcome Outcome, err error) time.Duration {
	switch {
	case err != nil:
		if iv.Retry > 0 {
			return iv.Retry
		}
		return iv.Interval
	case outcome == OutcomeGated && iv.Idle > 0:
		return iv.Idle
	default:
		return iv.Interval
	}
}

// PollJob is one data source's loop definition.
type PollJob struct {
	// Name identifies the job, e.g. "quotes".
	Name string

	// Sections are the settings sections whose edits restart the job.
	Sections []string

	// Cycle runs one pass.
	Cycle CycleFunc

	// Intervals is read after every cycle so cadence edits apply without restarting.
	Intervals func() Intervals

	// Ready reports whether the job's configuration allows it to run.
	// A nil Ready means always ready.
	Ready func() error
}

// Status is a snapshot of a job for APIs and logs.
type Status struct {
	Name      string    `json:"name"`
	State     string    `json:"state"`
	Scheduled bool      `json:"scheduled"`
	Runs      int64     `json:"runs"`
	Failures  int64     `json:"failures"`
	LastError string    `json:"last_error,omitempty"`
	LastRunAt time.Time `json:"last_run_at,omitempty"`
	NextRunAt time.Time `json:"next_run_at,omitempty"`
}
