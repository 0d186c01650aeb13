package rc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for inference activity.
//
// Collectors are registered on the Registerer passed to NewMetrics, never on
// the global default registry, so importing this package has no side effects.
type Metrics struct {
	queries   *prometheus.CounterVec
	cacheHits prometheus.Counter
	branches  prometheus.Counter
	duration  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aigo",
			Subsystem: "rc",
			Name:      "queries_total",
			Help:      "Posterior queries by outcome (ok or the error code).",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aigo",
			Subsystem: "rc",
			Name:      "cache_hits_total",
			Help:      "Sub-sums served from the recursive conditioning cache.",
		}),
		branches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aigo",
			Subsystem: "rc",
			Name:      "cache_inserts_total",
			Help:      "Sub-sums computed by branching and inserted into the cache.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aigo",
			Subsystem: "rc",
			Name:      "query_duration_seconds",
			Help:      "Wall time per posterior query.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.queries, m.cacheHits, m.branches, m.duration)
	}
	return m
}

func (m *Metrics) observe(err error, d time.Duration, hits, branches int64) {
	outcome := "ok"
	if err != nil {
		outcome = string(ErrorCode(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	m.queries.WithLabelValues(outcome).Inc()
	m.cacheHits.Add(float64(hits))
	m.branches.Add(float64(branches))
	m.duration.Observe(d.Seconds())
}
