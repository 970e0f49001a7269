package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tmdbcat/tmdbcat/internal/config"
	"github.com/tmdbcat/tmdbcat/internal/scheduler"
)

// OptionsRefresher loads catalog filter options into the lookup cache.
type OptionsRefresher interface {
	Refresh(ctx context.Context, languages []string) error
}

// OptionsRefreshTask keeps genre and language lists warm for manifest builds.
type OptionsRefreshTask struct {
	options   OptionsRefresher
	languages []string
	logger    zerolog.Logger
}

// NewOptionsRefreshTask creates a new options refresh task.
func NewOptionsRefreshTask(options OptionsRefresher, languages []string, logger zerolog.Logger) *OptionsRefreshTask {
	return &OptionsRefreshTask{
		options:   options,
		languages: languages,
		logger:    logger.With().Str("task", "catalog-options-refresh").Logger(),
	}
}

// Run loads the genre lists for every warm language and the language list.
func (t *OptionsRefreshTask) Run(ctx context.Context) error {
	t.logger.Info().Strs("languages", t.languages).Msg("Refreshing catalog options")

	if err := t.options.Refresh(ctx, t.languages); err != nil {
		t.logger.Warn().Err(err).Msg("Catalog options refresh incomplete")
		return err
	}
	return nil
}

// RegisterOptionsRefreshTask registers the options refresh with the scheduler.
func RegisterOptionsRefreshTask(sched *scheduler.Scheduler, options OptionsRefresher, cfg *config.Config, logger zerolog.Logger) error {
	task := NewOptionsRefreshTask(options, cfg.Catalog.WarmLanguages, logger)

	interval := cfg.Scheduler.OptionsRefreshInterval
	if interval == 0 {
		interval = time.Hour
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "catalog-options-refresh",
		Name:        "Catalog Options Refresh",
		Description: "Loads genre and language lists used by manifest filters",
		Cron:        scheduler.Every(interval),
		RunOnStart:  true,
		Timeout:     2 * time.Minute,
		Func:        task.Run,
	})
}
