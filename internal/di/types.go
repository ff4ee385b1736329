// Package di provides dependency injection wiring and initialization.
//
// The Container holds every long-lived instance. It is built once by Wire and
// handed to the command that hosts the jobs.
package di

import (
	"github.com/aristath/kanbanbar/internal/clients/gitlab"
	"github.com/aristath/kanbanbar/internal/clients/holiday"
	"github.com/aristath/kanbanbar/internal/clients/sina"
	"github.com/aristath/kanbanbar/internal/clients/zentao"
	"github.com/aristath/kanbanbar/internal/clock"
	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/database"
	"github.com/aristath/kanbanbar/internal/modules/display"
	"github.com/aristath/kanbanbar/internal/modules/market_hours"
	"github.com/aristath/kanbanbar/internal/reliability"
	"github.com/aristath/kanbanbar/internal/services"
	"github.com/aristath/kanbanbar/internal/session"
	"github.com/aristath/kanbanbar/internal/state"
	"github.com/aristath/kanbanbar/internal/work"
)

// Container holds all application dependencies
type Container struct {
	// Storage
	StateDB   *database.DB
	StateRepo *state.Repository

	// Configuration and time
	Settings *config.Store
	Clock    clock.Clock

	// Outbound render/notify sink
	Display *display.StateManager

	// Clients
	SinaClient    *sina.Client
	GitLabClient  *gitlab.Client
	ZentaoClient  *zentao.Client
	HolidayClient *holiday.Client

	// Per-source state
	HolidayCache  *market_hours.HolidayCache
	ZentaoSession *session.Manager

	// Services
	QuoteService        *services.QuoteService
	MergeRequestService *services.MergeRequestService
	TaskService         *services.TaskService

	// Scheduling
	Registry    *work.Registry
	Scheduler   *work.Scheduler
	Debouncer   *work.Debouncer
	Maintenance *reliability.Scheduler
}
