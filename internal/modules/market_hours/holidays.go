package market_hours

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/domain"
)

// HolidayKeyPrefix namespaces persisted holiday lists; the year follows.
const HolidayKeyPrefix = "holiday:"

// HolidaySource fetches the holiday dates of a year.
type HolidaySource interface {
	Holidays(ctx context.Context, year int) ([]string, error)
}

// HolidayCache loads each year's holidays at most once per process unless the result was empty.
// Lookup failures yield an empty set and are retried on the next call.
type HolidayCache struct {
	source HolidaySource
	store  domain.StateStore
	log    zerolog.Logger

	mu    sync.Mutex
	years map[int]HolidaySet
}

// NewHolidayCache creates a cache backed by the persisted store and the remote source.
func NewHolidayCache(source HolidaySource, store domain.StateStore, log zerolog.Logger) *HolidayCache {
	return &HolidayCache{
		source: source,
		store:  store,
		log:    log.With().Str("component", "holiday_cache").Logger(),
		years:  make(map[int]HolidaySet),
	}
}

// HolidayKey is the state key of a year's list.
func HolidayKey(year int) string {
	return HolidayKeyPrefix + strconv.Itoa(year)
}

// Get returns the holiday set for year.
func (c *HolidayCache) Get(ctx context.Context, year int) HolidaySet {
	c.mu.Lock()
	defer c.mu.Unlock()

	if set, ok := c.years[year]; ok && len(set) > 0 {
		return set
	}

	key := HolidayKey(year)
	var dates []string
	found, err := c.store.Get(key, &dates)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to read cached holidays")
	}

	if !found || len(dates) == 0 {
		dates, err = c.source.Holidays(ctx, year)
		if err != nil {
			c.log.Warn().Err(err).Int("year", year).Msg("Failed to fetch holidays, treating every day as a trading day")
			return HolidaySet{}
		}
		if err := c.store.Set(key, dates); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Failed to persist holidays")
		}
		c.log.Info().Int("year", year).Int("count", len(dates)).Msg("Holidays loaded")
	}

	set := NewHolidaySet(dates...)
	c.years[year] = set
	return set
}

// Cached returns the in-memory set for year without any lookup.
func (c *HolidayCache) Cached(year int) HolidaySet {
	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok := c.years[year]; ok {
		return set
	}
	return HolidaySet{}
}
