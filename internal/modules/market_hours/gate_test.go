package market_hours

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kbtesting "github.com/aristath/kanbanbar/internal/testing"
)

func defaultWindows(t *testing.T) []Window {
	t.Helper()
	morning, err := ParseWindow("09:25", "11:35")
	require.NoError(t, err)
	afternoon, err := ParseWindow("13:00", "15:05")
	require.NoError(t, err)
	return []Window{morning, afternoon}
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	require.NoError(t, err)
	return ts
}

func TestShouldSkip(t *testing.T) {
	windows := defaultWindows(t)
	holidays := NewHolidaySet("2024-10-01")

	tests := []struct {
		name     string
		now      string // 2024-03-04 is a Monday
		initial  bool
		expected bool
	}{
		{"weekday inside morning window", "2024-03-04 10:00:00", false, false},
		{"weekday inside afternoon window", "2024-03-04 14:30:00", false, false},
		{"window start is inclusive", "2024-03-04 09:25:00", false, false},
		{"window end is inclusive", "2024-03-04 11:35:00", false, false},
		{"just after morning close", "2024-03-04 11:35:01", false, true},
		{"lunch break", "2024-03-04 12:00:00", false, true},
		{"before open", "2024-03-04 08:00:00", false, true},
		{"after close", "2024-03-04 15:06:00", false, true},
		{"saturday inside window", "2024-03-09 10:00:00", false, true},
		{"sunday inside window", "2024-03-10 10:00:00", false, true},
		{"holiday inside window", "2024-10-01 10:00:00", false, true},
		{"initial run on sunday", "2024-03-10 10:00:00", true, false},
		{"initial run on holiday at night", "2024-10-01 23:00:00", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldSkip(at(t, tt.now), holidays, tt.initial, windows))
		})
	}
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("09:25", "11:35")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+25*time.Minute, w.Start)
	assert.Equal(t, "09:25-11:35", w.String())

	_, err = ParseWindow("9am", "11:35")
	assert.Error(t, err)

	_, err = ParseWindow("12:00", "11:00")
	assert.Error(t, err)
}

type stubSource struct {
	calls int
	dates []string
	err   error
}

func (s *stubSource) Holidays(ctx context.Context, year int) ([]string, error) {
	s.calls++
	return s.dates, s.err
}

func TestGate_UsesMarketTimezone(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	source := &stubSource{dates: []string{"2024-12-31"}}
	gate := NewGate(shanghai, defaultWindows(t), NewHolidayCache(source, kbtesting.NewMemoryStore(), zerolog.Nop()))

	// 02:00 UTC is 10:00 in Shanghai
	monday := time.Date(2024, 3, 4, 2, 0, 0, 0, time.UTC)
	assert.False(t, gate.ShouldSkip(context.Background(), monday, false))

	// 10:00 UTC is 18:00 in Shanghai
	assert.True(t, gate.ShouldSkip(context.Background(), monday.Add(8*time.Hour), false))
}

func TestGate_InitialRunSkipsHolidayLookup(t *testing.T) {
	source := &stubSource{dates: []string{"2024-03-04"}}
	gate := NewGate(time.UTC, defaultWindows(t), NewHolidayCache(source, kbtesting.NewMemoryStore(), zerolog.Nop()))

	assert.False(t, gate.ShouldSkip(context.Background(), at(t, "2024-03-04 10:00:00"), true))
	assert.Zero(t, source.calls)

	assert.True(t, gate.ShouldSkip(context.Background(), at(t, "2024-03-04 10:00:00"), false))
	assert.Equal(t, 1, source.calls)
}

func TestGate_Status(t *testing.T) {
	source := &stubSource{dates: []string{"2024-03-04"}}
	cache := NewHolidayCache(source, kbtesting.NewMemoryStore(), zerolog.Nop())
	gate := NewGate(time.UTC, defaultWindows(t), cache)

	status := gate.Status(at(t, "2024-03-04 10:00:00"))
	assert.True(t, status.Open, "holidays not loaded yet")
	assert.Zero(t, source.calls, "status never fetches")
	assert.Equal(t, []string{"09:25-11:35", "13:00-15:05"}, status.Windows)
	assert.Equal(t, "UTC", status.Timezone)

	cache.Get(context.Background(), 2024)
	status = gate.Status(at(t, "2024-03-04 10:00:00"))
	assert.False(t, status.Open)
	assert.Equal(t, ReasonHoliday, status.Reason)

	status = gate.Status(at(t, "2024-03-05 12:00:00"))
	assert.Equal(t, ReasonOffHours, status.Reason)
}
