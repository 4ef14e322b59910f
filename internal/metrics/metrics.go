// Package metrics provides Prometheus metrics for the scraping engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TaskTransitionsTotal counts lifecycle transitions by resulting status.
	TaskTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scholar",
			Name:      "task_transitions_total",
			Help:      "Total number of task lifecycle transitions",
		},
		[]string{"event", "status"},
	)

	// SubmissionsTotal counts submitted URLs by outcome.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scholar",
			Name:      "submissions_total",
			Help:      "Total number of submitted URLs by outcome",
		},
		[]string{"outcome"},
	)

	// ScholarshipsRecordedTotal counts recorded scholarships.
	ScholarshipsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scholar",
			Name:      "scholarships_recorded_total",
			Help:      "Total number of scholarships recorded",
		},
	)

	// SnapshotDuration measures status snapshot computation.
	SnapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "scholar",
			Name:      "snapshot_duration_seconds",
			Help:      "Duration of status snapshot computation in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// LeasesReclaimedTotal counts stale in-progress tasks returned to pending.
	LeasesReclaimedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scholar",
			Name:      "leases_reclaimed_total",
			Help:      "Total number of stale tasks returned to pending",
		},
	)

	// ErrorsTotal counts errors by operation and kind.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scholar",
			Name:      "errors_total",
			Help:      "Total number of errors",
		},
		[]string{"operation", "kind"},
	)
)

// RecordTransition records a task lifecycle transition.
func RecordTransition(event, status string) {
	TaskTransitionsTotal.WithLabelValues(event, status).Inc()
}

// RecordSubmissions records a batch of submission outcomes.
func RecordSubmissions(created, duplicate, invalid int) {
	SubmissionsTotal.WithLabelValues("created").Add(float64(created))
	SubmissionsTotal.WithLabelValues("duplicate").Add(float64(duplicate))
	SubmissionsTotal.WithLabelValues("invalid").Add(float64(invalid))
}

// RecordError records an error.
func RecordError(operation, kind string) {
	ErrorsTotal.WithLabelValues(operation, kind).Inc()
}
