package metadata

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tmdbcat/tmdbcat/internal/metrics"
)

// Tiers are the staleness windows of one cached value. Windows are
// cumulative: a value is fresh until MaxAge, may be served while revalidating
// until MaxAge+StaleRevalidate, and may be served after a failed refresh
// until MaxAge+StaleRevalidate+StaleIfError.
type Tiers struct {
	MaxAge          time.Duration
	StaleRevalidate time.Duration
	StaleIfError    time.Duration
}

// Total returns the age after which a value can no longer be served.
func (t Tiers) Total() time.Duration {
	return t.MaxAge + t.StaleRevalidate + t.StaleIfError
}

// State classifies a cache entry by age.
type State int

const (
	StateMiss State = iota
	StateFresh
	StateRevalidate
	StateStaleIfError
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateRevalidate:
		return "revalidate"
	case StateStaleIfError:
		return "stale_if_error"
	case StateExpired:
		return "expired"
	default:
		return "miss"
	}
}

// StateAt returns the state of a value fetched at fetchedAt, as seen at now.
func (t Tiers) StateAt(fetchedAt, now time.Time) State {
	age := now.Sub(fetchedAt)
	switch {
	case age < t.MaxAge:
		return StateFresh
	case age < t.MaxAge+t.StaleRevalidate:
		return StateRevalidate
	case age < t.Total():
		return StateStaleIfError
	default:
		return StateExpired
	}
}

// FetchFunc loads a value from upstream.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// TierFunc decides the tiers of a freshly fetched value.
type TierFunc[V any] func(V) Tiers

type tieredEntry[V any] struct {
	value     V
	fetchedAt time.Time
	tiers     Tiers
}

// TieredCacheConfig configures a TieredCache.
type TieredCacheConfig[V any] struct {
	MaxEntries   int
	FetchTimeout time.Duration
	TierOf       TierFunc[V]
}

// TieredCache is an in-memory cache with fresh, stale-while-revalidate and
// stale-if-error windows. At most one upstream fetch per key is in flight at
// any time; concurrent callers share its result.
type TieredCache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]*tieredEntry[V]
	refreshing map[string]struct{}
	group      singleflight.Group

	tierOf       TierFunc[V]
	maxEntries   int
	fetchTimeout time.Duration
	now          func() time.Time
	background   sync.WaitGroup
	logger       zerolog.Logger
}

// NewTieredCache creates a tiered cache.
func NewTieredCache[V any](cfg TieredCacheConfig[V], logger zerolog.Logger) *TieredCache[V] {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 20 * time.Second
	}
	if cfg.TierOf == nil {
		cfg.TierOf = func(V) Tiers { return Tiers{MaxAge: time.Hour} }
	}
	return &TieredCache[V]{
		entries:      make(map[string]*tieredEntry[V]),
		refreshing:   make(map[string]struct{}),
		tierOf:       cfg.TierOf,
		maxEntries:   cfg.MaxEntries,
		fetchTimeout: cfg.FetchTimeout,
		now:          time.Now,
		logger:       logger.With().Str("component", "detail-cache").Logger(),
	}
}

// Get returns the value for key, fetching it when needed. The returned tiers
// are those of the value served.
func (c *TieredCache[V]) Get(ctx context.Context, key string, fetch FetchFunc[V]) (V, Tiers, error) {
	e, state := c.lookup(key)
	metrics.RecordCacheLookup(state.String())

	switch state {
	case StateFresh:
		return e.value, e.tiers, nil

	case StateRevalidate:
		c.refreshInBackground(ctx, key, fetch)
		return e.value, e.tiers, nil

	case StateStaleIfError:
		fresh, err := c.load(ctx, key, fetch, false)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("refresh failed, serving stale value")
			metrics.DetailCacheStaleServed.Inc()
			return e.value, e.tiers, nil
		}
		return fresh.value, fresh.tiers, nil

	default:
		fresh, err := c.load(ctx, key, fetch, false)
		if err != nil {
			var zero V
			return zero, Tiers{}, err
		}
		return fresh.value, fresh.tiers, nil
	}
}

// Peek returns the cached value for key and its state without fetching.
func (c *TieredCache[V]) Peek(key string) (V, State) {
	e, state := c.lookup(key)
	if e == nil {
		var zero V
		return zero, state
	}
	return e.value, state
}

func (c *TieredCache[V]) lookup(key string) (*tieredEntry[V], State) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, StateMiss
	}
	return e, e.tiers.StateAt(e.fetchedAt, c.now())
}

// refreshInBackground schedules one refresh for key unless one is already
// pending.
func (c *TieredCache[V]) refreshInBackground(ctx context.Context, key string, fetch FetchFunc[V]) {
	c.mu.Lock()
	if _, busy := c.refreshing[key]; busy {
		c.mu.Unlock()
		return
	}
	c.refreshing[key] = struct{}{}
	c.mu.Unlock()

	bgCtx := context.WithoutCancel(ctx)
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		defer func() {
			c.mu.Lock()
			delete(c.refreshing, key)
			c.mu.Unlock()
		}()

		if _, err := c.load(bgCtx, key, fetch, true); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("background refresh failed")
		}
	}()
}

// load runs fetch for key under single-flight. Callers that arrive after a
// fetch has already stored a fresh value get that value without another
// upstream call. The fetch itself is detached from any single caller's
// cancellation; each caller stops waiting when its own context ends.
func (c *TieredCache[V]) load(ctx context.Context, key string, fetch FetchFunc[V], background bool) (*tieredEntry[V], error) {
	ch := c.group.DoChan(key, func() (any, error) {
		if e, state := c.lookup(key); state == StateFresh {
			return e, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		start := time.Now()
		value, err := fetch(fetchCtx)
		metrics.RecordCacheFetch(background, time.Since(start), err)
		if err != nil {
			return nil, err
		}

		e := &tieredEntry[V]{value: value, fetchedAt: c.now(), tiers: c.tierOf(value)}
		c.store(key, e)
		return e, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*tieredEntry[V]), nil
	}
}

func (c *TieredCache[V]) store(key string, e *tieredEntry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = e
	metrics.DetailCacheEntries.Set(float64(len(c.entries)))
}

func (c *TieredCache[V]) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, e := range c.entries {
		if oldestKey == "" || e.fetchedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.fetchedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		metrics.RecordCacheEviction("capacity", 1)
	}
}

// Sweep removes entries that can no longer be served and returns how many
// were removed.
func (c *TieredCache[V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if e.tiers.StateAt(e.fetchedAt, now) == StateExpired {
			delete(c.entries, k)
			removed++
		}
	}
	metrics.RecordCacheEviction("sweep", removed)
	metrics.DetailCacheEntries.Set(float64(len(c.entries)))
	return removed
}

// Delete removes one entry.
func (c *TieredCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		metrics.RecordCacheEviction("invalidate", 1)
	}
	metrics.DetailCacheEntries.Set(float64(len(c.entries)))
}

// Clear removes every entry.
func (c *TieredCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	metrics.RecordCacheEviction("invalidate", len(c.entries))
	c.entries = make(map[string]*tieredEntry[V])
	metrics.DetailCacheEntries.Set(0)
}

// Len returns the number of entries, servable or not.
func (c *TieredCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Wait blocks until pending background refreshes finish.
func (c *TieredCache[V]) Wait() {
	c.background.Wait()
}
