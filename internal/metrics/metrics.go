// Package metrics exposes Prometheus instrumentation for upstream calls,
// catalog resolution and the detail cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdbcat_http_request_duration_seconds",
			Help:    "Duration of inbound HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Catalog resolution
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdbcat_catalog_requests_total",
			Help: "Catalog page requests by dispatch route and outcome",
		},
		[]string{"route", "outcome"}, // route: search, list, trending, favorites, watchlist, discover
	)

	CatalogItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdbcat_catalog_items",
			Help:    "Number of items returned per catalog page",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"route"},
	)

	// Upstream providers
	UpstreamFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdbcat_upstream_failures_total",
			Help: "Upstream calls that were degraded to an empty result",
		},
		[]string{"provider", "operation"},
	)

	ListEnrichments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdbcat_list_enrichments_total",
			Help: "List items enriched from the general provider",
		},
		[]string{"result"}, // enriched, fallback, skipped
	)

	PosterProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdbcat_poster_probes_total",
			Help: "Poster override probes by result",
		},
		[]string{"result"}, // hit, miss
	)

	// Detail cache
	DetailCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdbcat_detail_cache_lookups_total",
			Help: "Detail cache lookups by entry state",
		},
		[]string{"state"}, // miss, fresh, revalidate, stale_if_error, expired
	)

	DetailCacheFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdbcat_detail_cache_fetches_total",
			Help: "Upstream fetches performed by the detail cache",
		},
		[]string{"mode", "result"}, // mode: sync, background
	)

	DetailCacheFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tmdbcat_detail_cache_fetch_duration_seconds",
			Help:    "Duration of detail cache upstream fetches",
			Buckets: prometheus.DefBuckets,
		},
	)

	DetailCacheStaleServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tmdbcat_detail_cache_stale_served_total",
			Help: "Stale values served because a refresh failed",
		},
	)

	DetailCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tmdbcat_detail_cache_entries",
			Help: "Current number of detail cache entries",
		},
	)

	DetailCacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdbcat_detail_cache_evictions_total",
			Help: "Detail cache evictions by reason",
		},
		[]string{"reason"}, // capacity, sweep, invalidate
	)

	// Circuit breakers
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tmdbcat_circuit_breaker_state",
			Help: "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)
)

// RecordCatalogRequest records one resolved catalog page.
func RecordCatalogRequest(route string, items int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else if items == 0 {
		outcome = "empty"
	}
	CatalogRequests.WithLabelValues(route, outcome).Inc()
	if err == nil {
		CatalogItems.WithLabelValues(route).Observe(float64(items))
	}
}

// RecordUpstreamFailure records an upstream call degraded to an empty result.
func RecordUpstreamFailure(provider, operation string) {
	UpstreamFailures.WithLabelValues(provider, operation).Inc()
}

// RecordEnrichment records the outcome of one list item.
func RecordEnrichment(result string) {
	ListEnrichments.WithLabelValues(result).Inc()
}

// RecordPosterProbe records one poster override probe.
func RecordPosterProbe(exists bool) {
	if exists {
		PosterProbes.WithLabelValues("hit").Inc()
		return
	}
	PosterProbes.WithLabelValues("miss").Inc()
}

// RecordCacheLookup records the state a detail cache lookup found.
func RecordCacheLookup(state string) {
	DetailCacheLookups.WithLabelValues(state).Inc()
}

// RecordCacheFetch records one upstream fetch made by the detail cache.
func RecordCacheFetch(background bool, duration time.Duration, err error) {
	mode := "sync"
	if background {
		mode = "background"
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	DetailCacheFetches.WithLabelValues(mode, result).Inc()
	DetailCacheFetchDuration.Observe(duration.Seconds())
}

// RecordCacheEviction records entries removed from the detail cache.
func RecordCacheEviction(reason string, n int) {
	if n > 0 {
		DetailCacheEvictions.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordAPIRequest records one inbound HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// SetBreakerState records a provider's breaker state.
func SetBreakerState(provider string, state int) {
	BreakerState.WithLabelValues(provider).Set(float64(state))
}
