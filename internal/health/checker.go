package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnknownProbe is returned when no probe is registered under an id.
var ErrUnknownProbe = errors.New("unknown health probe")

// ProbeFunc checks one dependency. A nil error means healthy.
type ProbeFunc func(ctx context.Context) error

type probe struct {
	category HealthCategory
	name     string
	fn       ProbeFunc
}

// Checker runs active connectivity probes and records their outcome.
type Checker struct {
	health  *Service
	timeout time.Duration
	mu      sync.RWMutex
	probes  map[string]probe
	logger  zerolog.Logger
}

// NewChecker creates a probe runner. Each probe gets at most timeout.
func NewChecker(health *Service, timeout time.Duration, logger zerolog.Logger) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		health:  health,
		timeout: timeout,
		probes:  make(map[string]probe),
		logger:  logger.With().Str("component", "health-checker").Logger(),
	}
}

// Register adds a probe and the item it reports on.
func (c *Checker) Register(category HealthCategory, id, name string, fn ProbeFunc) {
	c.mu.Lock()
	c.probes[id] = probe{category: category, name: name, fn: fn}
	c.mu.Unlock()

	c.health.RegisterItem(category, id, name)
}

// ProbeResult is the outcome of one probe run.
type ProbeResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Check runs a single probe by id.
func (c *Checker) Check(ctx context.Context, id string) (ProbeResult, error) {
	c.mu.RLock()
	p, ok := c.probes[id]
	c.mu.RUnlock()
	if !ok {
		return ProbeResult{}, ErrUnknownProbe
	}
	return c.run(ctx, id, p), nil
}

// CheckCategory runs the probes of one category sequentially, ordered by id.
func (c *Checker) CheckCategory(ctx context.Context, category HealthCategory) []ProbeResult {
	var results []ProbeResult
	for _, id := range c.ids() {
		c.mu.RLock()
		p := c.probes[id]
		c.mu.RUnlock()
		if p.category != category {
			continue
		}
		results = append(results, c.run(ctx, id, p))
	}
	return results
}

// CheckAll runs every probe. It fails only when the context ends.
func (c *Checker) CheckAll(ctx context.Context) error {
	for _, cat := range AllCategories() {
		c.CheckCategory(ctx, cat)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) run(ctx context.Context, id string, p probe) ProbeResult {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := p.fn(probeCtx); err != nil {
		c.logger.Debug().Err(err).Str("id", id).Msg("Health probe failed")
		c.health.SetError(p.category, id, err.Error())
		return ProbeResult{ID: id, Message: err.Error()}
	}

	c.health.ClearStatus(p.category, id)
	return ProbeResult{ID: id, Success: true, Message: p.name + " connection verified"}
}

func (c *Checker) ids() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.probes))
	for id := range c.probes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
