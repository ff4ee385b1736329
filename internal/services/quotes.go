package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/clock"
	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/domain"
	"github.com/aristath/kanbanbar/internal/modules/market_hours"
	"github.com/aristath/kanbanbar/internal/render"
	"github.com/aristath/kanbanbar/internal/utils"
	"github.com/aristath/kanbanbar/internal/work"
)

// ErrNoQuotes means the feed answered without any recognised symbol.
var ErrNoQuotes = errors.New("no quotes in response")

// QuoteFetcher fetches quotes for a batch of symbols.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, codes []string) ([]domain.QuoteRecord, error)
}

// QuoteService drives the quote job. Outside trading hours it skips the fetch
// and leaves the previous render in place.
type QuoteService struct {
	settings *config.Store
	fetcher  QuoteFetcher
	holidays *market_hours.HolidayCache
	renderer domain.Renderer
	clock    clock.Clock
	log      zerolog.Logger

	// gate parsed from the market section of gateFor
	gateMu  sync.Mutex
	gateFor *config.Settings
	gateVal *market_hours.Gate
	gateErr error
}

// NewQuoteService creates the quote service
func NewQuoteService(
	settings *config.Store,
	fetcher QuoteFetcher,
	holidays *market_hours.HolidayCache,
	renderer domain.Renderer,
	clk clock.Clock,
	log zerolog.Logger,
) *QuoteService {
	return &QuoteService{
		settings: settings,
		fetcher:  fetcher,
		holidays: holidays,
		renderer: renderer,
		clock:    clk,
		log:      log.With().Str("service", JobQuotes).Logger(),
	}
}

// Job returns the poll job definition.
func (s *QuoteService) Job() work.PollJob {
	return work.PollJob{
		Name:      JobQuotes,
		Sections:  []string{config.SectionPolling, config.SectionStock, config.SectionMarket},
		Cycle:     s.Cycle,
		Intervals: intervalsFrom(s.settings),
		Ready:     s.Ready,
	}
}

// Ready requires at least one symbol.
func (s *QuoteService) Ready() error {
	if len(s.settings.Current().Stock.Symbols) == 0 {
		return &domain.ConfigError{Section: config.SectionStock, Field: "symbols"}
	}
	return nil
}

// Cycle runs one quote pass.
func (s *QuoteService) Cycle(ctx context.Context, run work.Run) (work.Outcome, error) {
	defer utils.TimeOperation(s.log, "quotes_cycle", pollInterval(s.settings))()

	st := s.settings.Current()

	gate, err := s.gate(st)
	if err != nil {
		return work.OutcomeDone, err
	}
	if gate.ShouldSkip(ctx, s.clock.Now(), run.Initial) {
		s.log.Debug().Msg("Market closed, quote fetch skipped")
		return work.OutcomeGated, nil
	}

	quotes, err := s.fetcher.FetchQuotes(ctx, st.Stock.Symbols)
	if err != nil {
		return work.OutcomeDone, fmt.Errorf("fetch quotes: %w", err)
	}
	if len(quotes) == 0 {
		return work.OutcomeDone, domain.ParseError(JobQuotes, ErrNoQuotes)
	}

	s.renderer.Render(JobQuotes, RenderQuotes(quotes, st.Stock))
	return work.OutcomeDone, nil
}

// MarketStatus reports the gate state at now without fetching holidays.
func (s *QuoteService) MarketStatus(now time.Time) market_hours.MarketStatus {
	st := s.settings.Current()
	gate, err := s.gate(st)
	if err != nil {
		return market_hours.MarketStatus{Reason: err.Error(), Timezone: st.Market.Timezone}
	}
	return gate.Status(now)
}

// Holidays returns the cached holiday dates of year. It never triggers a fetch.
func (s *QuoteService) Holidays(year int) []string {
	return s.holidays.Cached(year).Dates()
}

// gate returns the gate of snapshot st, building it once per snapshot.
func (s *QuoteService) gate(st *config.Settings) (*market_hours.Gate, error) {
	s.gateMu.Lock()
	defer s.gateMu.Unlock()

	if s.gateFor != st {
		s.gateVal, s.gateErr = s.buildGate(st.Market)
		s.gateFor = st
	}
	return s.gateVal, s.gateErr
}

func (s *QuoteService) buildGate(m config.MarketSettings) (*market_hours.Gate, error) {
	loc, err := m.Location()
	if err != nil {
		return nil, fmt.Errorf("market timezone: %w", err)
	}

	windows := make([]market_hours.Window, 0, len(m.Windows))
	for _, w := range m.Windows {
		win, err := market_hours.ParseWindow(w.Start, w.End)
		if err != nil {
			return nil, fmt.Errorf("market window: %w", err)
		}
		windows = append(windows, win)
	}
	return market_hours.NewGate(loc, windows, s.holidays), nil
}

// QuoteValues are the template placeholders of one quote.
func QuoteValues(q domain.QuoteRecord) map[string]string {
	return map[string]string{
		"name":    q.Name,
		"price":   utils.FormatFixed(q.Price, 2),
		"change":  render.Signed(q.Change()),
		"percent": render.Signed(q.ChangePercent()) + "%",
		"open":    utils.FormatFixed(q.OpenPrice, 2),
		"high":    utils.FormatFixed(q.MaxPrice, 2),
		"low":     utils.FormatFixed(q.MinPrice, 2),
		"prev":    utils.FormatFixed(q.YesterdayPrice, 2),
	}
}

// RenderQuotes builds the bar text, each quote prefixed by its alias or feed name,
// and a tooltip table.
func RenderQuotes(quotes []domain.QuoteRecord, st config.StockSettings) domain.View {
	parts := make([]string, 0, len(quotes))
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		label := utils.FirstNonEmpty(st.Aliases[q.Code], q.Name)
		values := QuoteValues(q)
		parts = append(parts, label+render.Template(st.Template, values))
		rows = append(rows, []string{
			q.Name,
			values["price"],
			values["change"],
			values["percent"],
			render.Unit(q.Turnover),
			values["open"],
			values["high"],
			values["low"],
			strings.TrimSpace(q.AsOfDate + " " + q.AsOfTime),
		})
	}

	return domain.View{
		Text:    strings.Join(parts, st.Separator),
		Tooltip: render.Table([]string{"Name", "Price", "Change", "Percent", "Turnover", "Open", "High", "Low", "Time"}, rows),
	}
}
