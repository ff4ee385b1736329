package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/clients/zentao"
	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/domain"
	"github.com/aristath/kanbanbar/internal/render"
	"github.com/aristath/kanbanbar/internal/session"
	"github.com/aristath/kanbanbar/internal/tracker"
	"github.com/aristath/kanbanbar/internal/utils"
	"github.com/aristath/kanbanbar/internal/work"
)

// SessionNamespace prefixes the persisted Zentao cookie key.
const SessionNamespace = "zentao-cookie"

var statusLabels = map[domain.TaskStatus]string{
	domain.TaskWait:   "Not started",
	domain.TaskDoing:  "In progress",
	domain.TaskUndone: "Undone",
	domain.TaskDone:   "Done",
	domain.TaskClosed: "Closed",
	domain.TaskCancel: "Cancelled",
}

// TaskFetcher fetches the task tree with an authenticated cookie.
type TaskFetcher interface {
	FetchTasks(ctx context.Context, baseURL, cookie string) ([]domain.TaskRecord, error)
}

// TaskService drives the task job on top of a session manager.
type TaskService struct {
	settings *config.Store
	fetcher  TaskFetcher
	session  *session.Manager
	renderer domain.Renderer
	notifier domain.Notifier
	seen     *tracker.Tracker[domain.TaskRecord, string]
	log      zerolog.Logger
}

// NewTaskService creates the task service
func NewTaskService(
	settings *config.Store,
	fetcher TaskFetcher,
	sessions *session.Manager,
	renderer domain.Renderer,
	notifier domain.Notifier,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{
		settings: settings,
		fetcher:  fetcher,
		session:  sessions,
		renderer: renderer,
		notifier: notifier,
		seen:     tracker.New(func(t domain.TaskRecord) string { return t.ID }),
		log:      log.With().Str("service", JobTasks).Logger(),
	}
}

// Job returns the poll job definition.
func (s *TaskService) Job() work.PollJob {
	return work.PollJob{
		Name:      JobTasks,
		Sections:  []string{config.SectionPolling, config.SectionZentao},
		Cycle:     s.Cycle,
		Intervals: intervalsFrom(s.settings),
		Ready:     s.Ready,
	}
}

// Ready requires the server address and both credentials.
func (s *TaskService) Ready() error {
	z := s.settings.Current().Zentao
	switch {
	case z.BaseURL == "":
		return &domain.ConfigError{Section: config.SectionZentao, Field: "base_url"}
	case z.Account == "":
		return &domain.ConfigError{Section: config.SectionZentao, Field: "account"}
	case z.Password == "":
		return &domain.ConfigError{Section: config.SectionZentao, Field: "password"}
	}
	return nil
}

// Session exposes the session manager for status reporting.
func (s *TaskService) Session() *session.Manager {
	return s.session
}

// Cycle ensures a session, fetches the task tree and renders the per-status counts.
// While the login is marked failed the job idles without rendering.
func (s *TaskService) Cycle(ctx context.Context, run work.Run) (work.Outcome, error) {
	defer utils.TimeOperation(s.log, "tasks_cycle", pollInterval(s.settings))()

	z := s.settings.Current().Zentao
	s.session.Configure(z.BaseURL, domain.Credentials{Account: z.Account, Password: z.Password})

	cookie, err := s.session.EnsureSession(ctx)
	if errors.Is(err, domain.ErrLoginFailed) {
		s.log.Debug().Msg("Login failed earlier, waiting for new credentials")
		return work.OutcomeGated, nil
	}
	if err != nil {
		return work.OutcomeDone, err
	}

	tasks, err := s.fetcher.FetchTasks(ctx, z.BaseURL, cookie)
	if errors.Is(err, domain.ErrSessionExpired) {
		s.session.Invalidate()
		return work.OutcomeDone, err
	}
	if err != nil {
		return work.OutcomeDone, fmt.Errorf("fetch tasks: %w", err)
	}

	view := RenderTasks(domain.CountTasks(tasks), z.Template)
	view.Link = strings.TrimRight(z.BaseURL, "/") + zentao.TasksPath
	s.renderer.Render(JobTasks, view)

	if added := s.seen.Diff(domain.FlattenTasks(tasks)); len(added) > 0 {
		s.notifier.Notify(fmt.Sprintf("%d new tasks assigned", len(added)))
	}
	return work.OutcomeDone, nil
}

// RenderTasks fills the count template and lists every non-zero status in the tooltip.
func RenderTasks(counts domain.TaskCounts, tpl string) domain.View {
	lines := []string{"#### Zentao tasks"}
	for _, status := range domain.TaskStatuses {
		if n := counts[status]; n > 0 {
			lines = append(lines, fmt.Sprintf("- %s %d", statusLabels[status], n))
		}
	}
	return domain.View{
		Text:    render.Template(tpl, counts.Placeholders()),
		Tooltip: strings.Join(lines, "\n"),
	}
}
