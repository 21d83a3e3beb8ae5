package jobs

import (
	"context"

	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	"github.com/kailas-cloud/kickdex/internal/domain/record"
)

// Indices resolves a model to its index handle.
type Indices interface {
	Get(model string) (*index.Index, error)
}

// Loaders returns the record loader of a model.
type Loaders interface {
	Loader(model string) record.Loader
}

// Reindexer runs record reindex jobs.
type Reindexer interface {
	RunReindex(ctx context.Context, idx *index.Index, loader record.Loader, j job.Reindex) error
	RunBulkReindex(ctx context.Context, idx *index.Index, loader record.Loader, j job.BulkReindex) error
}

// Drainer runs queue jobs.
type Drainer interface {
	Drain(ctx context.Context, j job.ProcessQueue) (int, error)
	ProcessBatch(ctx context.Context, j job.ProcessBatch) error
}
