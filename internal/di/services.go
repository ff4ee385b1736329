package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/clients/gitlab"
	"github.com/aristath/kanbanbar/internal/clients/holiday"
	"github.com/aristath/kanbanbar/internal/clients/sina"
	"github.com/aristath/kanbanbar/internal/clients/zentao"
	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/modules/display"
	"github.com/aristath/kanbanbar/internal/modules/market_hours"
	"github.com/aristath/kanbanbar/internal/services"
	"github.com/aristath/kanbanbar/internal/session"
	"github.com/aristath/kanbanbar/internal/state"
)

// InitializeRepositories creates the state repository
func InitializeRepositories(container *Container) {
	container.StateRepo = state.NewRepository(container.StateDB.Conn())
}

// InitializeServices loads settings and builds the clients and per-source services
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	settings, err := config.NewStore(cfg.SettingsPath, log)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	container.Settings = settings

	container.Display = display.NewStateManager(services.JobOrder, log)

	container.SinaClient = sina.NewClient("", log)
	container.GitLabClient = gitlab.NewClient(log)
	container.ZentaoClient = zentao.NewClient(log)
	// The holiday URL is read once; editing it takes effect after a restart
	container.HolidayClient = holiday.NewClient(settings.Current().Market.HolidayURL, log)

	container.HolidayCache = market_hours.NewHolidayCache(container.HolidayClient, container.StateRepo, log)
	container.ZentaoSession = session.NewManager(services.SessionNamespace, container.ZentaoClient, container.StateRepo, log)

	container.QuoteService = services.NewQuoteService(
		settings,
		container.SinaClient,
		container.HolidayCache,
		container.Display,
		container.Clock,
		log,
	)
	container.MergeRequestService = services.NewMergeRequestService(
		settings,
		container.GitLabClient,
		container.Display,
		container.Display,
		log,
	)
	container.TaskService = services.NewTaskService(
		settings,
		container.ZentaoClient,
		container.ZentaoSession,
		container.Display,
		container.Display,
		log,
	)

	log.Info().Str("settings", cfg.SettingsPath).Msg("Services initialized")
	return nil
}
