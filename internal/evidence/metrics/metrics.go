package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the evidence module. All methods are
// nil-safe so wiring metrics stays optional in tests.
type Metrics struct {
	// Per-source resolution latencies during the build fan-out
	SourceLatency *prometheus.HistogramVec

	// Full pack build latency
	BuildLatency prometheus.Histogram

	// Build outcomes by status
	BuildOutcome *prometheus.CounterVec

	// Access gate decisions
	AccessDecision *prometheus.CounterVec

	// Audit emissions that could not be recorded
	AuditFailures prometheus.Counter
}

// New registers and returns the evidence module metrics.
func New() *Metrics {
	return &Metrics{
		SourceLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dossier_evidence_source_duration_seconds",
			Help:    "Duration of entity resolution by source during pack builds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // poster, media, reviews, timeline, viewings, viewing_count

		BuildLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dossier_evidence_build_duration_seconds",
			Help:    "Duration of full evidence pack builds including hashing",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		BuildOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_evidence_builds_total",
			Help: "Total pack builds by outcome",
		}, []string{"status"}), // ok, not_found, error

		AccessDecision: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_evidence_access_decisions_total",
			Help: "Access gate decisions by outcome",
		}, []string{"decision"}), // allowed, denied

		AuditFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dossier_evidence_audit_failures_total",
			Help: "Audit events that could not be recorded after a pack build",
		}),
	}
}

// ObserveSourceLatency records one resolution's duration.
func (m *Metrics) ObserveSourceLatency(source string, d time.Duration) {
	if m != nil {
		m.SourceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveBuildLatency records a full build's duration.
func (m *Metrics) ObserveBuildLatency(d time.Duration) {
	if m != nil {
		m.BuildLatency.Observe(d.Seconds())
	}
}

// IncrementBuild records a build outcome.
func (m *Metrics) IncrementBuild(status string) {
	if m != nil {
		m.BuildOutcome.WithLabelValues(status).Inc()
	}
}

// IncrementAccess records a gate decision.
func (m *Metrics) IncrementAccess(allowed bool) {
	if m == nil {
		return
	}
	if allowed {
		m.AccessDecision.WithLabelValues("allowed").Inc()
	} else {
		m.AccessDecision.WithLabelValues("denied").Inc()
	}
}

// IncrementAuditFailure records a failed audit emission.
func (m *Metrics) IncrementAuditFailure() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}
