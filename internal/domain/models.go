// Package domain provides the normalized records, credentials, error taxonomy and
// collaborator interfaces shared by the poll jobs.
package domain

import (
	"sort"
	"strconv"
	"time"
)

// QuoteRecord is one instrument from the quote feed.
// Prices are already truncated to two decimals.
type QuoteRecord struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	YesterdayPrice float64 `json:"yesterday_price"`
	OpenPrice      float64 `json:"open_price"`
	MaxPrice       float64 `json:"max_price"`
	MinPrice       float64 `json:"min_price"`
	Turnover       float64 `json:"turnover"`
	AsOfDate       string  `json:"as_of_date"`
	AsOfTime       string  `json:"as_of_time"`
}

// Change returns the absolute move against the previous close.
func (q QuoteRecord) Change() float64 {
	return q.Price - q.YesterdayPrice
}

// ChangePercent returns the relative move against the previous close, in percent.
// A zero previous close yields 0 rather than an infinity.
func (q QuoteRecord) ChangePercent() float64 {
	if q.YesterdayPrice == 0 {
		return 0
	}
	return q.Change() / q.YesterdayPrice * 100
}

// MergeRequestRecord is one open merge request.
type MergeRequestRecord struct {
	ID           int64     `json:"id"`
	Project      string    `json:"project"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	SourceBranch string    `json:"source_branch"`
	TargetBranch string    `json:"target_branch"`
	CreatedAt    time.Time `json:"created_at"`
	WebURL       string    `json:"web_url"`
	Mergeable    bool      `json:"mergeable"`
}

// SortMergeRequestsNewestFirst orders merge requests by creation time, newest first.
func SortMergeRequestsNewestFirst(mrs []MergeRequestRecord) {
	sort.SliceStable(mrs, func(i, j int) bool {
		return mrs[i].CreatedAt.After(mrs[j].CreatedAt)
	})
}

// TaskStatus is the lifecycle status of a project-management task.
type TaskStatus string

const (
	TaskWait   TaskStatus = "wait"
	TaskDoing  TaskStatus = "doing"
	TaskUndone TaskStatus = "undone"
	TaskDone   TaskStatus = "done"
	TaskClosed TaskStatus = "closed"
	TaskCancel TaskStatus = "cancel"
)

// TaskStatuses lists every known status in display order.
var TaskStatuses = []TaskStatus{TaskWait, TaskDoing, TaskUndone, TaskDone, TaskClosed, TaskCancel}

// TaskRecord is a task and its ordered sub-tasks.
type TaskRecord struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Status   TaskStatus   `json:"status"`
	Children []TaskRecord `json:"children,omitempty"`
}

// TaskCounts aggregates tasks per status.
type TaskCounts map[TaskStatus]int

// Total returns the number of tasks counted across all statuses.
func (c TaskCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Placeholders returns the counts keyed by template placeholder name.
func (c TaskCounts) Placeholders() map[string]string {
	values := make(map[string]string, len(TaskStatuses)+1)
	for _, status := range TaskStatuses {
		values[string(status)] = strconv.Itoa(c[status])
	}
	values["total"] = strconv.Itoa(c.Total())
	return values
}

// CountTasks walks the task tree and counts every node by status, at any depth.
func CountTasks(tasks []TaskRecord) TaskCounts {
	counts := make(TaskCounts)
	var walk func([]TaskRecord)
	walk = func(nodes []TaskRecord) {
		for _, t := range nodes {
			counts[t.Status]++
			walk(t.Children)
		}
	}
	walk(tasks)
	return counts
}

// FlattenTasks returns every task in the tree in depth-first order.
func FlattenTasks(tasks []TaskRecord) []TaskRecord {
	var out []TaskRecord
	var walk func([]TaskRecord)
	walk = func(nodes []TaskRecord) {
		for _, t := range nodes {
			out = append(out, t)
			walk(t.Children)
		}
	}
	walk(tasks)
	return out
}

// Credentials identify an account on a credentialed source.
type Credentials struct {
	Account  string
	Password string
}

// Empty reports whether either half of the credential pair is missing.
func (c Credentials) Empty() bool {
	return c.Account == "" || c.Password == ""
}
