package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bündelt die Prometheus-Kennzahlen des Publikations-Feeds.
// Ein nil *Metrics ist gültig und zeichnet nichts auf.
type Metrics struct {
	extractionRuns *prometheus.CounterVec
	skippedEntries prometheus.Counter
	publications   prometheus.Gauge
	cacheLookups   *prometheus.CounterVec
	queryDuration  prometheus.Histogram
}

// NewMetrics erstellt die Kennzahlen und registriert sie bei reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		extractionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubfeed_extraction_runs_total",
			Help: "Total number of bibliography extraction passes by result.",
		}, []string{"result"}),
		skippedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubfeed_skipped_entries_total",
			Help: "Total number of bibliography entries skipped because they could not be parsed.",
		}),
		publications: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pubfeed_publications",
			Help: "Number of publications produced by the last successful extraction pass.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubfeed_cache_lookups_total",
			Help: "Total number of publication cache lookups by result.",
		}, []string{"result"}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pubfeed_query_duration_seconds",
			Help:    "Time spent filtering, sorting, paginating and grouping one query.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	reg.MustRegister(m.extractionRuns, m.skippedEntries, m.publications, m.cacheLookups, m.queryDuration)
	return m
}

func (m *Metrics) extractionResult(result string) {
	if m == nil {
		return
	}
	m.extractionRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) entrySkipped() {
	if m == nil {
		return
	}
	m.skippedEntries.Inc()
}

func (m *Metrics) publicationCount(n int) {
	if m == nil {
		return
	}
	m.publications.Set(float64(n))
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) observeQuery(start time.Time) {
	if m == nil {
		return
	}
	m.queryDuration.Observe(time.Since(start).Seconds())
}
