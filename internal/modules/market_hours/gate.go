package market_hours

import (
	"context"
	"time"
)

// Skip reasons.
const (
	ReasonHoliday  = "holiday"
	ReasonWeekend  = "weekend"
	ReasonOffHours = "off_hours"
)

// ShouldSkip decides whether live work is skipped at now, which must already be in market time.
// Rules, in order: the initial run never skips; holidays skip; weekends skip;
// times outside every window skip.
func ShouldSkip(now time.Time, holidays HolidaySet, initial bool, windows []Window) bool {
	if initial {
		return false
	}
	return closedReason(now, holidays, windows) != ""
}

func closedReason(now time.Time, holidays HolidaySet, windows []Window) string {
	if holidays.Contains(now) {
		return ReasonHoliday
	}
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return ReasonWeekend
	}
	for _, w := range windows {
		if w.Contains(now) {
			return ""
		}
	}
	return ReasonOffHours
}

// Gate evaluates the market-hours rules against the lazily loaded holiday list.
type Gate struct {
	loc      *time.Location
	windows  []Window
	holidays *HolidayCache
}

// NewGate creates a gate for the given market timezone and open windows.
func NewGate(loc *time.Location, windows []Window, holidays *HolidayCache) *Gate {
	return &Gate{loc: loc, windows: windows, holidays: holidays}
}

// ShouldSkip applies ShouldSkip in market time. The initial run does not touch the holiday source.
func (g *Gate) ShouldSkip(ctx context.Context, now time.Time, initial bool) bool {
	if initial {
		return false
	}
	local := now.In(g.loc)
	return ShouldSkip(local, g.holidays.Get(ctx, local.Year()), false, g.windows)
}

// Status reports whether the market is open at now and why not.
// It only consults holidays already loaded by the quote job.
func (g *Gate) Status(now time.Time) MarketStatus {
	local := now.In(g.loc)
	reason := closedReason(local, g.holidays.Cached(local.Year()), g.windows)

	windows := make([]string, 0, len(g.windows))
	for _, w := range g.windows {
		windows = append(windows, w.String())
	}

	return MarketStatus{
		Open:     reason == "",
		Reason:   reason,
		Timezone: g.loc.String(),
		Date:     local.Format(DateLayout),
		Time:     local.Format("15:04:05"),
		Windows:  windows,
	}
}
