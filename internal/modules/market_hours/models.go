// Package market_hours decides whether live quote polling should be skipped.
package market_hours

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the calendar date format used by the holiday source.
const DateLayout = "2006-01-02"

// Window is a closed interval of wall-clock time, at second precision.
type Window struct {
	Start time.Duration // offset from midnight
	End   time.Duration
}

// ParseWindow parses "HH:MM" bounds.
func ParseWindow(start, end string) (Window, error) {
	s, err := parseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return Window{}, err
	}
	if e < s {
		return Window{}, fmt.Errorf("window %s-%s ends before it starts", start, end)
	}
	return Window{Start: s, End: e}, nil
}

func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", v, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Contains reports whether the wall-clock time of t lies inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	offset := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
	return offset >= w.Start && offset <= w.End
}

// String formats the window as HH:MM-HH:MM.
func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		int(w.Start.Hours()), int(w.Start.Minutes())%60,
		int(w.End.Hours()), int(w.End.Minutes())%60)
}

// HolidaySet is a set of ISO calendar dates.
type HolidaySet map[string]struct{}

// NewHolidaySet builds a set from dates.
func NewHolidaySet(dates ...string) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// Dates returns the set's dates in calendar order.
func (h HolidaySet) Dates() []string {
	dates := make([]string, 0, len(h))
	for d := range h {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Contains reports whether t's calendar date is a holiday.
func (h HolidaySet) Contains(t time.Time) bool {
	_, ok := h[t.Format(DateLayout)]
	return ok
}

// MarketStatus describes the gate's view of a moment.
type MarketStatus struct {
	Open     bool     `json:"open"`
	Reason   string   `json:"reason,omitempty"`
	Timezone string   `json:"timezone"`
	Date     string   `json:"date"`
	Time     string   `json:"time"`
	Windows  []string `json:"windows"`
}
