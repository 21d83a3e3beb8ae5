package drain

import (
	"context"

	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	domqueue "github.com/kailas-cloud/kickdex/internal/domain/queue"
	"github.com/kailas-cloud/kickdex/internal/domain/record"
)

// Indices resolves a model to its index handle.
type Indices interface {
	Get(model string) (*index.Index, error)
}

// Reserver pops raw entries off a reindex queue.
type Reserver interface {
	Reserve(ctx context.Context, name string, limit int) ([]string, error)
}

// Dispatcher hands jobs to the background scheduler.
type Dispatcher interface {
	Dispatch(ctx context.Context, j job.Job) error
}

// ItemsReindexer reindexes decoded queue entries.
type ItemsReindexer interface {
	ReindexItems(
		ctx context.Context, idx *index.Index, loader record.Loader, entries []domqueue.Entry, method string, single bool,
	) error
}

// Loaders returns the record loader of a model.
type Loaders interface {
	Loader(model string) record.Loader
}
