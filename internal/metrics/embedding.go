package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query embedding metrics for kNN clauses.
var (
	QueryEmbeddingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kickdex",
			Subsystem: "query_embedding",
			Name:      "requests_total",
			Help:      "Search terms sent to the embedding provider, by outcome",
		},
		[]string{"model", "outcome"}, // ok / api_error / empty_response / dimension_mismatch
	)

	QueryEmbeddingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kickdex",
			Subsystem: "query_embedding",
			Name:      "duration_seconds",
			Help:      "Embedding provider latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	QueryEmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kickdex",
			Subsystem: "query_embedding",
			Name:      "tokens_total",
			Help:      "Tokens billed for query embeddings",
		},
		[]string{"model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kickdex",
			Subsystem: "query_embedding",
			Name:      "cache_total",
			Help:      "Query embedding cache lookups",
		},
		[]string{"result"}, // hit / local_hit / miss
	)
)
