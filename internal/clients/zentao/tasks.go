package zentao

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aristath/kanbanbar/internal/domain"
)

var tasksAssignment = regexp.MustCompile(`(?s)^\s*tasks\s*=\s*(.+?);?\s*$`)

// ErrNoTaskData means the page had no embedded task list.
var ErrNoTaskData = errors.New("no task data in page")

type rawTask struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	Status   string          `json:"status"`
	Children json.RawMessage `json:"children"`
}

// ParseTaskPage extracts the task tree embedded in a <script>tasks = ...;</script> block.
func ParseTaskPage(html string) ([]domain.TaskRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var payload string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := tasksAssignment.FindStringSubmatch(s.Text()); m != nil {
			payload = m[1]
			return false
		}
		return true
	})
	if payload == "" {
		return nil, ErrNoTaskData
	}

	return decodeTasks([]byte(payload))
}

// decodeTasks accepts either an array or an object keyed by task id.
// Object entries are ordered by numeric key.
func decodeTasks(data []byte) ([]domain.TaskRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var raws []rawTask
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("decode task list: %w", err)
		}
	case '{':
		var byID map[string]rawTask
		if err := json.Unmarshal(data, &byID); err != nil {
			return nil, fmt.Errorf("decode task map: %w", err)
		}
		keys := make([]string, 0, len(byID))
		for k := range byID {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
		for _, k := range keys {
			raws = append(raws, byID[k])
		}
	default:
		return nil, fmt.Errorf("unexpected task payload starting with %q", data[0])
	}

	tasks := make([]domain.TaskRecord, 0, len(raws))
	for _, raw := range raws {
		children, err := decodeTasks(raw.Children)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, domain.TaskRecord{
			ID:       decodeID(raw.ID),
			Name:     raw.Name,
			Status:   domain.TaskStatus(raw.Status),
			Children: children,
		})
	}
	return tasks, nil
}

// decodeID accepts both "12" and 12.
func decodeID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func keyLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}
