package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/domain"
	"github.com/aristath/kanbanbar/internal/modules/market_hours"
	kbtesting "github.com/aristath/kanbanbar/internal/testing"
	"github.com/aristath/kanbanbar/internal/work"
)

var sampleQuote = domain.QuoteRecord{
	Code:           "sh600519",
	Name:           "贵州茅台",
	Price:          1700.5,
	YesterdayPrice: 1690,
	OpenPrice:      1691,
	MaxPrice:       1710.25,
	MinPrice:       1688,
	Turnover:       3_210_000,
	AsOfDate:       "2024-03-06",
	AsOfTime:       "10:00:00",
}

type quoteFixture struct {
	service  *QuoteService
	fetcher  *stubQuotes
	holidays *stubHolidays
	renderer *kbtesting.RecordingRenderer
	clock    *kbtesting.FakeClock
}

func newQuoteFixture(now time.Time, mutate func(s *config.Settings)) *quoteFixture {
	f := &quoteFixture{
		fetcher:  &stubQuotes{quotes: []domain.QuoteRecord{sampleQuote}},
		holidays: &stubHolidays{},
		renderer: kbtesting.NewRecordingRenderer(),
		clock:    kbtesting.NewFakeClock(now),
	}
	settings := newSettings(func(s *config.Settings) {
		s.Stock.Symbols = []string{"sh600519"}
		if mutate != nil {
			mutate(s)
		}
	})
	cache := market_hours.NewHolidayCache(f.holidays, kbtesting.NewMemoryStore(), zerolog.Nop())
	f.service = NewQuoteService(settings, f.fetcher, cache, f.renderer, f.clock, zerolog.Nop())
	return f
}

func TestQuoteService_RendersInsideTradingHours(t *testing.T) {
	f := newQuoteFixture(tradingTime, func(s *config.Settings) {
		s.Stock.Aliases = map[string]string{"sh600519": "MT"}
	})

	outcome, err := f.service.Cycle(context.Background(), work.Run{Seq: 2})

	require.NoError(t, err)
	assert.Equal(t, work.OutcomeDone, outcome)
	assert.Equal(t, []string{"sh600519"}, f.fetcher.codes)

	view, ok := f.renderer.Last(JobQuotes)
	require.True(t, ok)
	assert.Equal(t, "MT 1700.50 +0.62%", view.Text)
	assert.Contains(t, view.Tooltip, "贵州茅台")
	assert.Contains(t, view.Tooltip, "321.00万")
	assert.Contains(t, view.Tooltip, "2024-03-06 10:00:00")
}

func TestQuoteService_Gate(t *testing.T) {
	saturday := time.Date(2024, 3, 9, 10, 0, 0, 0, shanghai)
	lunch := time.Date(2024, 3, 6, 12, 0, 0, 0, shanghai)

	tests := []struct {
		name     string
		now      time.Time
		initial  bool
		holidays []string
		gated    bool
	}{
		{name: "weekday in window", now: tradingTime, gated: false},
		{name: "lunch break", now: lunch, gated: true},
		{name: "saturday", now: saturday, gated: true},
		{name: "holiday", now: tradingTime, holidays: []string{"2024-03-06"}, gated: true},
		{name: "initial run on saturday", now: saturday, initial: true, gated: false},
		{name: "utc clock is converted", now: tradingTime.UTC(), gated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newQuoteFixture(tt.now, nil)
			f.holidays.dates = tt.holidays

			outcome, err := f.service.Cycle(context.Background(), work.Run{Initial: tt.initial})
			require.NoError(t, err)

			if tt.gated {
				assert.Equal(t, work.OutcomeGated, outcome)
				assert.Zero(t, f.fetcher.calls)
				assert.Empty(t, f.renderer.Views(JobQuotes))
			} else {
				assert.Equal(t, work.OutcomeDone, outcome)
				assert.Equal(t, 1, f.fetcher.calls)
			}
		})
	}
}

func TestQuoteService_FailureKeepsPreviousRender(t *testing.T) {
	f := newQuoteFixture(tradingTime, nil)

	_, err := f.service.Cycle(context.Background(), work.Run{})
	require.NoError(t, err)

	f.fetcher.errs = []error{domain.NetworkError("sina", errors.New("timeout"))}
	_, err = f.service.Cycle(context.Background(), work.Run{})

	assert.True(t, domain.IsFetchKind(err, domain.KindNetwork))
	assert.Len(t, f.renderer.Views(JobQuotes), 1)
}

func TestQuoteService_EmptyResponseIsParseError(t *testing.T) {
	f := newQuoteFixture(tradingTime, nil)
	f.fetcher.quotes = nil

	_, err := f.service.Cycle(context.Background(), work.Run{})

	assert.True(t, domain.IsFetchKind(err, domain.KindParse))
	assert.ErrorIs(t, err, ErrNoQuotes)
	assert.Empty(t, f.renderer.Views(JobQuotes))
}

func TestQuoteService_Ready(t *testing.T) {
	f := newQuoteFixture(tradingTime, func(s *config.Settings) { s.Stock.Symbols = nil })

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, f.service.Ready(), &cfgErr)
	assert.Equal(t, config.SectionStock, cfgErr.Section)

	assert.NoError(t, newQuoteFixture(tradingTime, nil).service.Ready())
}

func TestQuoteService_MarketStatus(t *testing.T) {
	f := newQuoteFixture(tradingTime, nil)

	status := f.service.MarketStatus(tradingTime)
	assert.True(t, status.Open)
	assert.Equal(t, "Asia/Shanghai", status.Timezone)

	status = f.service.MarketStatus(time.Date(2024, 3, 6, 16, 0, 0, 0, shanghai))
	assert.False(t, status.Open)
	assert.Equal(t, market_hours.ReasonOffHours, status.Reason)
	assert.Zero(t, f.holidays.calls, "status never loads holidays")
}

func TestQuoteService_GateBuiltOncePerSnapshot(t *testing.T) {
	f := newQuoteFixture(tradingTime, nil)
	store := f.service.settings

	first, err := f.service.gate(store.Current())
	require.NoError(t, err)
	again, err := f.service.gate(store.Current())
	require.NoError(t, err)
	assert.Same(t, first, again)

	next := *store.Current()
	next.Market.Windows = []config.Window{{Start: "13:00", End: "15:00"}}
	_, err = store.Replace(&next)
	require.NoError(t, err)

	rebuilt, err := f.service.gate(store.Current())
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)

	outcome, err := f.service.Cycle(context.Background(), work.Run{Seq: 2})
	require.NoError(t, err)
	assert.Equal(t, work.OutcomeGated, outcome, "10:00 is outside the new afternoon window")
}

func TestQuoteService_InvertedWindowRejectedBeforeCycle(t *testing.T) {
	f := newQuoteFixture(tradingTime, nil)
	store := f.service.settings

	next := *store.Current()
	next.Market.Windows = []config.Window{{Start: "15:00", End: "09:00"}}
	_, err := store.Replace(&next)
	require.Error(t, err)

	outcome, err := f.service.Cycle(context.Background(), work.Run{Seq: 2})
	require.NoError(t, err)
	assert.Equal(t, work.OutcomeDone, outcome, "previous snapshot stays active")
	assert.Equal(t, 1, f.fetcher.calls)
}

func TestQuoteService_Holidays(t *testing.T) {
	f := newQuoteFixture(tradingTime, nil)
	f.holidays.dates = []string{"2024-10-01", "2024-02-12"}

	assert.Empty(t, f.service.Holidays(2024), "nothing cached before the first gated cycle")

	_, err := f.service.Cycle(context.Background(), work.Run{Seq: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-02-12", "2024-10-01"}, f.service.Holidays(2024))
	assert.Empty(t, f.service.Holidays(2023))
}

func TestRenderQuotes(t *testing.T) {
	down := sampleQuote
	down.Code = "sz000001"
	down.Name = "平安银行"
	down.Price = 9.5
	down.YesterdayPrice = 10

	view := RenderQuotes([]domain.QuoteRecord{sampleQuote, down}, config.StockSettings{
		Template:  " {price} {change} {unknown}",
		Separator: " | ",
		Aliases:   map[string]string{"sz000001": "PA"},
	})

	assert.Equal(t, "贵州茅台 1700.50 +10.50 {unknown} | PA 9.50 -0.50 {unknown}", view.Text)
	assert.Empty(t, view.Link)
}

func TestQuoteService_FailThenSucceed(t *testing.T) {
	f := newQuoteFixture(tradingTime, nil)
	f.fetcher.errs = []error{domain.NetworkError("sina", errors.New("reset")), nil}

	reg := work.NewRegistry()
	reg.Register(f.service.Job())
	sched := work.NewScheduler(reg, f.clock, zerolog.Nop())

	require.NoError(t, sched.Restart(JobQuotes))
	f.clock.Advance(0)

	assert.Equal(t, 1, f.fetcher.calls)
	assert.Empty(t, f.renderer.Views(JobQuotes), "nothing rendered after the failed cycle")
	assert.Equal(t, []time.Time{tradingTime.Add(5 * time.Second)}, f.clock.Deadlines())

	f.clock.Advance(5 * time.Second)

	assert.Equal(t, 2, f.fetcher.calls)
	view, ok := f.renderer.Last(JobQuotes)
	require.True(t, ok)
	assert.NotEmpty(t, view.Text)
	assert.Equal(t, 1, f.clock.Pending())
}
