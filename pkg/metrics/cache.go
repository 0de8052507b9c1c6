package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics counts read-cache outcomes per logical cache (locations, pricing, ...).
type CacheMetrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	errors        *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewCacheMetrics registers the cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Cache reads served from the cache backend.",
	}, []string{"cache"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Cache reads that fell through to the store.",
	}, []string{"cache"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_errors_total",
		Help: "Cache backend failures by operation.",
	}, []string{"cache", "op"})
	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_invalidations_total",
		Help: "Prefix invalidations issued against the cache.",
	}, []string{"cache"})
	reg.MustRegister(hits, misses, errs, invalidations)
	return &CacheMetrics{
		hits:          hits,
		misses:        misses,
		errors:        errs,
		invalidations: invalidations,
	}
}

func (m *CacheMetrics) IncHit(cache string) {
	if m == nil || m.hits == nil {
		return
	}
	m.hits.WithLabelValues(normalizeLabel(cache)).Inc()
}

func (m *CacheMetrics) IncMiss(cache string) {
	if m == nil || m.misses == nil {
		return
	}
	m.misses.WithLabelValues(normalizeLabel(cache)).Inc()
}

// IncError records a backend failure; op is one of get, set, invalidate.
func (m *CacheMetrics) IncError(cache, op string) {
	if m == nil || m.errors == nil {
		return
	}
	m.errors.WithLabelValues(normalizeLabel(cache), normalizeLabel(op)).Inc()
}

func (m *CacheMetrics) IncInvalidation(cache string) {
	if m == nil || m.invalidations == nil {
		return
	}
	m.invalidations.WithLabelValues(normalizeLabel(cache)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
