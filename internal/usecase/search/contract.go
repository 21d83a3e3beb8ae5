package search

import (
	"context"

	"github.com/kailas-cloud/kickdex/internal/backend"
	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/search/result"
)

// Backend executes compiled searches.
type Backend interface {
	Search(ctx context.Context, req backend.SearchRequest) (*result.Response, error)
	MultiSearch(ctx context.Context, reqs []backend.SearchRequest) ([]*result.Response, error)
}

// Indices resolves model names to index handles.
type Indices interface {
	Get(model string) (*index.Index, error)
}

// Embedder vectorizes the term of kNN searches.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
