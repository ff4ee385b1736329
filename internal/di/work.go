package di

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/reliability"
	"github.com/aristath/kanbanbar/internal/services"
	"github.com/aristath/kanbanbar/internal/work"
)

// InitializeWork registers the poll jobs, the config-change triggers and the maintenance jobs.
// Nothing is started here.
func InitializeWork(container *Container, log zerolog.Logger) error {
	container.Registry = work.NewRegistry()
	for _, svc := range []services.Service{
		container.QuoteService,
		container.MergeRequestService,
		container.TaskService,
	} {
		container.Registry.Register(svc.Job())
	}

	container.Scheduler = work.NewScheduler(container.Registry, container.Clock, log)
	container.Debouncer = work.NewDebouncer(container.Clock, func() time.Duration {
		return container.Settings.Current().Polling.Debounce()
	})

	work.RegisterTriggers(&work.TriggerDeps{
		Changes:   container.Settings,
		Scheduler: container.Scheduler,
		Debouncer: container.Debouncer,
		Log:       log,
	})

	container.Maintenance = reliability.NewScheduler(log)
	prune := reliability.NewStatePruneJob(container.StateDB, container.StateRepo, log)
	if err := container.Maintenance.AddJob(reliability.StatePruneSchedule, prune); err != nil {
		return fmt.Errorf("failed to register %s: %w", prune.Name(), err)
	}

	log.Info().Strs("jobs", container.Registry.Names()).Msg("Jobs registered")
	return nil
}
