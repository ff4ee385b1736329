// Package work implements the poll scheduler.
//
// # Loops
//
// Every data source is a PollJob. The scheduler runs its cycle, then arms exactly
// one timer for the next one:
//
//   - Interval after a successful cycle
//   - Idle after a gated cycle (market closed, login failed)
//   - Retry after a failed cycle (defaults to Interval)
//
// Cycle errors and panics are logged and never stop the loop. Jobs never share
// state, so one job failing cannot affect another.
//
// # Cancellation
//
// Each armed timer is owned by a CancellationToken. Rescheduling, restarting or
// stopping a job cancels the current token (stopping its timer and aborting the
// in-flight cycle's context) before a new one is created. A timer that fires with
// a stale token does nothing.
//
// # Restarts
//
// Restart arms a zero-delay timer and marks the next run as initial, which
// bypasses the market-hours gate so the display refreshes right after a
// configuration change. Settings edits reach Restart through RegisterTriggers,
// debounced per job.
package work
