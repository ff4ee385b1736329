package reliability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/database"
	"github.com/aristath/kanbanbar/internal/modules/market_hours"
	"github.com/aristath/kanbanbar/internal/state"
)

// StatePruneSchedule runs the prune job at 03:00 every day.
const StatePruneSchedule = "0 0 3 * * *"

// StatePruneJob deletes holiday lists of past years and checkpoints the WAL.
type StatePruneJob struct {
	db   *database.DB
	repo *state.Repository
	now  func() time.Time
	log  zerolog.Logger
}

// NewStatePruneJob creates a new state prune job
func NewStatePruneJob(db *database.DB, repo *state.Repository, log zerolog.Logger) *StatePruneJob {
	return &StatePruneJob{
		db:   db,
		repo: repo,
		now:  time.Now,
		log:  log.With().Str("job", "state-prune").Logger(),
	}
}

// Name returns the job name for the scheduler
func (j *StatePruneJob) Name() string {
	return "state-prune"
}

// Run executes the prune
func (j *StatePruneJob) Run() error {
	start := time.Now()
	year := j.now().Year()

	deleted, err := j.repo.DeleteWhere(market_hours.HolidayKeyPrefix, func(key string) bool {
		y, err := strconv.Atoi(strings.TrimPrefix(key, market_hours.HolidayKeyPrefix))
		// Keys that are not a year are left alone
		return err != nil || y >= year
	})
	if err != nil {
		return fmt.Errorf("prune holiday lists: %w", err)
	}

	if _, err := j.db.Conn().Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	j.log.Info().
		Int("deleted", deleted).
		Dur("duration_ms", time.Since(start)).
		Msg("State prune completed")
	return nil
}
