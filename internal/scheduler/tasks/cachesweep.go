package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tmdbcat/tmdbcat/internal/config"
	"github.com/tmdbcat/tmdbcat/internal/scheduler"
)

// CacheSweeper drops fully expired detail cache entries.
type CacheSweeper interface {
	SweepCache() int
	CacheLen() int
}

// CacheSweepTask handles scheduled detail cache cleanup.
type CacheSweepTask struct {
	cache  CacheSweeper
	logger zerolog.Logger
}

// NewCacheSweepTask creates a new cache sweep task.
func NewCacheSweepTask(cache CacheSweeper, logger zerolog.Logger) *CacheSweepTask {
	return &CacheSweepTask{
		cache:  cache,
		logger: logger.With().Str("task", "detail-cache-sweep").Logger(),
	}
}

// Run removes entries past their last stale window.
func (t *CacheSweepTask) Run(ctx context.Context) error {
	removed := t.cache.SweepCache()
	t.logger.Debug().
		Int("removed", removed).
		Int("remaining", t.cache.CacheLen()).
		Msg("Detail cache sweep completed")
	return nil
}

// RegisterCacheSweepTask registers the detail cache sweep with the scheduler.
func RegisterCacheSweepTask(sched *scheduler.Scheduler, cache CacheSweeper, cfg config.SchedulerConfig, logger zerolog.Logger) error {
	task := NewCacheSweepTask(cache, logger)

	interval := cfg.CacheSweepInterval
	if interval == 0 {
		interval = 10 * time.Minute
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "detail-cache-sweep",
		Name:        "Detail Cache Sweep",
		Description: "Removes detail records past their stale-if-error window",
		Cron:        scheduler.Every(interval),
		Func:        task.Run,
	})
}
