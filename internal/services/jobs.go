// Package services holds one instance per data source. Each owns its per-source
// state and exposes a poll job whose cycle runs gate, session, fetch, diff and render.
package services

import (
	"time"

	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/work"
)

// Job names.
const (
	JobQuotes        = "quotes"
	JobMergeRequests = "merge-requests"
	JobTasks         = "tasks"
)

// JobOrder is the left-to-right order of items in the bar.
var JobOrder = []string{JobQuotes, JobMergeRequests, JobTasks}

// Service is implemented by every per-source service.
type Service interface {
	Job() work.PollJob
}

func intervalsFrom(settings *config.Store) func() work.Intervals {
	return func() work.Intervals {
		interval, idle, retry := settings.Current().Polling.Intervals()
		return work.Intervals{Interval: interval, Idle: idle, Retry: retry}
	}
}

// pollInterval is the threshold above which a cycle is logged as slow.
func pollInterval(settings *config.Store) time.Duration {
	interval, _, _ := settings.Current().Polling.Intervals()
	return interval
}
