package metrics

import "github.com/prometheus/client_golang/prometheus"

// TriageMetrics exposes counters/histograms for the risk pipeline.
type TriageMetrics struct {
	oracleOutcomes *prometheus.CounterVec
	oracleLatency  prometheus.Histogram
	previewCache   *prometheus.CounterVec
	bookings       *prometheus.CounterVec
}

func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		oracleOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "triage",
			Name:      "oracle_outcomes_total",
			Help:      "Oracle assessment outcomes by kind",
		}, []string{"kind"}),
		oracleLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "triage",
			Name:      "oracle_latency_seconds",
			Help:      "Latency of oracle assessment calls",
			Buckets:   prometheus.DefBuckets,
		}),
		previewCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "triage",
			Name:      "preview_cache_total",
			Help:      "Risk preview cache lookups by result",
		}, []string{"result"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking attempts by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.oracleOutcomes, m.oracleLatency, m.previewCache, m.bookings)
	return m
}

func (m *TriageMetrics) ObserveOracleOutcome(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.oracleOutcomes.WithLabelValues(kind).Inc()
	m.oracleLatency.Observe(seconds)
}

func (m *TriageMetrics) ObservePreviewCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.previewCache.WithLabelValues(result).Inc()
}

func (m *TriageMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(result).Inc()
}
