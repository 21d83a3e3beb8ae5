// Package metrics holds the prometheus collectors of the server.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			httpInFlight,

			BackendRequestsTotal,
			BackendRequestDuration,
			MisspellingRetriesTotal,
			BulkItemsTotal,
			QueueEntriesTotal,
			JobsTotal,

			QueryEmbeddingsTotal,
			QueryEmbeddingDuration,
			QueryEmbeddingTokensTotal,
			EmbeddingCacheTotal,
		)
	})
}
