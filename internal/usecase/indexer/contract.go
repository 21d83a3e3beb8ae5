package indexer

import (
	"context"

	"github.com/kailas-cloud/kickdex/internal/domain/batch"
)

// Bulker sends bulk requests to the search backend.
type Bulker interface {
	Bulk(ctx context.Context, items []batch.Item) (*batch.Response, error)
}
