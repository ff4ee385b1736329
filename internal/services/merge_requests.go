package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/clients/gitlab"
	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/domain"
	"github.com/aristath/kanbanbar/internal/render"
	"github.com/aristath/kanbanbar/internal/tracker"
	"github.com/aristath/kanbanbar/internal/utils"
	"github.com/aristath/kanbanbar/internal/work"
)

// MergeRequestFetcher fetches the open merge requests of several projects.
type MergeRequestFetcher interface {
	FetchAll(ctx context.Context, projects []gitlab.Project) ([][]domain.MergeRequestRecord, error)
}

// MergeRequestService drives the merge-request job.
type MergeRequestService struct {
	settings *config.Store
	fetcher  MergeRequestFetcher
	renderer domain.Renderer
	notifier domain.Notifier
	seen     *tracker.Tracker[domain.MergeRequestRecord, int64]
	log      zerolog.Logger
}

// NewMergeRequestService creates the merge-request service
func NewMergeRequestService(
	settings *config.Store,
	fetcher MergeRequestFetcher,
	renderer domain.Renderer,
	notifier domain.Notifier,
	log zerolog.Logger,
) *MergeRequestService {
	return &MergeRequestService{
		settings: settings,
		fetcher:  fetcher,
		renderer: renderer,
		notifier: notifier,
		seen:     tracker.New(func(mr domain.MergeRequestRecord) int64 { return mr.ID }),
		log:      log.With().Str("service", JobMergeRequests).Logger(),
	}
}

// Job returns the poll job definition.
func (s *MergeRequestService) Job() work.PollJob {
	return work.PollJob{
		Name:      JobMergeRequests,
		Sections:  []string{config.SectionPolling, config.SectionGitLab},
		Cycle:     s.Cycle,
		Intervals: intervalsFrom(s.settings),
		Ready:     s.Ready,
	}
}

// Ready requires at least one fully specified project.
func (s *MergeRequestService) Ready() error {
	projects := s.settings.Current().GitLab.Projects
	if len(projects) == 0 {
		return &domain.ConfigError{Section: config.SectionGitLab, Field: "projects"}
	}
	for i, p := range projects {
		if p.BaseURL == "" {
			return &domain.ConfigError{Section: config.SectionGitLab, Field: fmt.Sprintf("projects[%d].base_url", i)}
		}
		if p.ProjectID == "" {
			return &domain.ConfigError{Section: config.SectionGitLab, Field: fmt.Sprintf("projects[%d].project_id", i)}
		}
	}
	return nil
}

// Cycle fetches every project, renders the total and notifies about unseen merge requests.
func (s *MergeRequestService) Cycle(ctx context.Context, run work.Run) (work.Outcome, error) {
	defer utils.TimeOperation(s.log, "merge_requests_cycle", pollInterval(s.settings))()

	st := s.settings.Current().GitLab

	projects := make([]gitlab.Project, 0, len(st.Projects))
	for _, p := range st.Projects {
		projects = append(projects, gitlab.Project{BaseURL: p.BaseURL, ProjectID: p.ProjectID, AccessToken: p.AccessToken})
	}

	groups, err := s.fetcher.FetchAll(ctx, projects)
	if err != nil {
		return work.OutcomeDone, fmt.Errorf("fetch merge requests: %w", err)
	}

	view, all := RenderMergeRequests(groups, st.Template)
	s.renderer.Render(JobMergeRequests, view)

	if added := s.seen.Diff(all); len(added) > 0 {
		s.notifier.Notify(fmt.Sprintf("%d new merge requests", len(added)))
	}
	return work.OutcomeDone, nil
}

// RenderMergeRequests renders the count template, a tooltip grouped by project, and
// the newest merge request as the primary link. It also returns every record, newest first.
func RenderMergeRequests(groups [][]domain.MergeRequestRecord, tpl string) (domain.View, []domain.MergeRequestRecord) {
	var all []domain.MergeRequestRecord
	var sections []string
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		all = append(all, group...)

		lines := []string{"#### " + group[0].Project}
		for _, mr := range group {
			line := fmt.Sprintf("- %s: %s -> %s", mr.Author, mr.SourceBranch, mr.TargetBranch)
			if !mr.Mergeable {
				line += " (conflict)"
			}
			lines = append(lines, line)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	domain.SortMergeRequestsNewestFirst(all)

	view := domain.View{
		Text:    render.Template(tpl, map[string]string{"count": strconv.Itoa(len(all))}),
		Tooltip: strings.Join(sections, "\n\n"),
	}
	if len(all) > 0 {
		view.Link = all[0].WebURL
	}
	return view, all
}
