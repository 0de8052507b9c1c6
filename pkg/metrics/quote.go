package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QuoteMetrics records quote composition outcomes and latency.
type QuoteMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewQuoteMetrics registers the quote metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_duration_seconds",
		Help:    "Duration of quote composition in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_outcomes_total",
		Help: "Quote compositions by outcome (ok or error code).",
	}, []string{"outcome"})
	reg.MustRegister(duration, outcomes)
	return &QuoteMetrics{
		duration: duration,
		outcomes: outcomes,
	}
}

// Observe records one composition with its outcome label.
func (q *QuoteMetrics) Observe(outcome string, elapsed time.Duration) {
	if q == nil || q.outcomes == nil {
		return
	}
	label := normalizeLabel(outcome)
	q.outcomes.WithLabelValues(label).Inc()
	q.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}
