package work

import (
	"errors"

	"github.com/rs/zerolog"
)

// ChangeSource notifies once per edited settings section.
type ChangeSource interface {
	Subscribe(fn func(section string))
}

// TriggerDeps contains all dependencies for triggers
type TriggerDeps struct {
	Changes   ChangeSource
	Scheduler *Scheduler
	Debouncer *Debouncer
	Log       zerolog.Logger
}

// RegisterTriggers restarts every job touched by an edited section.
// Restarts are debounced per job, so a burst of edits yields one restart.
func RegisterTriggers(deps *TriggerDeps) {
	log := deps.Log.With().Str("component", "triggers").Logger()

	deps.Changes.Subscribe(func(section string) {
		for _, name := range deps.Scheduler.Registry().JobsFor(section) {
			name := name
			log.Debug().Str("section", section).Str("job", name).Msg("Restart requested")
			deps.Debouncer.Trigger(name, func() {
				// Configuration errors are logged by the scheduler itself
				if err := deps.Scheduler.Restart(name); errors.Is(err, ErrUnknownJob) {
					log.Error().Err(err).Str("job", name).Msg("Restart failed")
				}
			})
		}
	})
}
