package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/clients/gitlab"
	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/domain"
)

var shanghai = mustLoad("Asia/Shanghai")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Wednesday, inside the morning session.
var tradingTime = time.Date(2024, 3, 6, 10, 0, 0, 0, shanghai)

func newSettings(mutate func(s *config.Settings)) *config.Store {
	s := config.DefaultSettings()
	if mutate != nil {
		mutate(s)
	}
	return config.NewStoreWith(s, zerolog.Nop())
}

type stubHolidays struct {
	dates []string
	calls int
}

func (s *stubHolidays) Holidays(ctx context.Context, year int) ([]string, error) {
	s.calls++
	return s.dates, nil
}

type stubQuotes struct {
	mu     sync.Mutex
	calls  int
	errs   []error
	quotes []domain.QuoteRecord
	codes  []string
}

func (s *stubQuotes) FetchQuotes(ctx context.Context, codes []string) ([]domain.QuoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.codes = codes
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.quotes, nil
}

type stubMergeRequests struct {
	groups   [][]domain.MergeRequestRecord
	err      error
	projects []gitlab.Project
}

func (s *stubMergeRequests) FetchAll(ctx context.Context, projects []gitlab.Project) ([][]domain.MergeRequestRecord, error) {
	s.projects = projects
	if s.err != nil {
		return nil, s.err
	}
	return s.groups, nil
}

type stubTasks struct {
	tasks   []domain.TaskRecord
	err     error
	calls   int
	cookies []string
}

func (s *stubTasks) FetchTasks(ctx context.Context, baseURL, cookie string) ([]domain.TaskRecord, error) {
	s.calls++
	s.cookies = append(s.cookies, cookie)
	if s.err != nil {
		return nil, s.err
	}
	return s.tasks, nil
}

type stubAuth struct {
	calls  int
	cookie string
	err    error
}

func (a *stubAuth) Login(ctx context.Context, baseURL string, creds domain.Credentials) (string, error) {
	a.calls++
	return a.cookie, a.err
}
