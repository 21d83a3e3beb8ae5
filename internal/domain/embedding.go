package domain

import (
	"context"
	"errors"
)

// KeyPrefix namespaces every key kickdex writes to the list store.
const KeyPrefix = "kickdex:"

// ErrEmbeddingProviderError signals a failure of the embedding provider.
var ErrEmbeddingProviderError = errors.New("embedding provider error")

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
