package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tmdbcat/tmdbcat/internal/config"
	"github.com/tmdbcat/tmdbcat/internal/scheduler"
)

// ProviderChecker probes upstream providers and records their health.
type ProviderChecker interface {
	CheckAll(ctx context.Context) error
}

// ProviderHealthTask handles scheduled provider connectivity checks.
type ProviderHealthTask struct {
	checker ProviderChecker
	logger  zerolog.Logger
}

// NewProviderHealthTask creates a new provider health task.
func NewProviderHealthTask(checker ProviderChecker, logger zerolog.Logger) *ProviderHealthTask {
	return &ProviderHealthTask{
		checker: checker,
		logger:  logger.With().Str("task", "provider-health-check").Logger(),
	}
}

// Run probes every registered provider.
func (t *ProviderHealthTask) Run(ctx context.Context) error {
	t.logger.Debug().Msg("Starting provider health check")
	return t.checker.CheckAll(ctx)
}

// RegisterProviderHealthTask registers the provider health check with the scheduler.
func RegisterProviderHealthTask(sched *scheduler.Scheduler, checker ProviderChecker, cfg config.SchedulerConfig, logger zerolog.Logger) error {
	task := NewProviderHealthTask(checker, logger)

	interval := cfg.HealthCheckInterval
	if interval == 0 {
		interval = 15 * time.Minute
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "provider-health-check",
		Name:        "Provider Health Check",
		Description: "Verifies connectivity to the metadata providers",
		Cron:        scheduler.Every(interval),
		Func:        task.Run,
	})
}
