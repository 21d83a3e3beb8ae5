package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search backend and indexing pipeline metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kickdex",
			Name:      "backend_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"op", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kickdex",
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	MisspellingRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kickdex",
			Name:      "misspelling_retries_total",
			Help:      "Searches re-run with fuzzy matching after too few hits",
		},
	)

	BulkItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kickdex",
			Name:      "bulk_items_total",
			Help:      "Bulk items sent to the backend",
		},
		[]string{"action", "status"},
	)

	QueueEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kickdex",
			Name:      "reindex_queue_entries_total",
			Help:      "Reindex queue entries pushed and reserved",
		},
		[]string{"queue", "op"}, // op: "push" / "reserve"
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kickdex",
			Name:      "jobs_total",
			Help:      "Background jobs run by the worker pool",
		},
		[]string{"kind", "status"},
	)
)
