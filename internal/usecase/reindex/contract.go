package reindex

import (
	"context"

	"github.com/kailas-cloud/kickdex/internal/domain/batch"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	domqueue "github.com/kailas-cloud/kickdex/internal/domain/queue"
)

// Writer collects bulk items, usually the indexer aggregator.
type Writer interface {
	Scope(ctx context.Context, fn func(ctx context.Context) error) error
	Enqueue(ctx context.Context, items ...batch.Item) error
}

// Queue receives ids to reindex later.
type Queue interface {
	Push(ctx context.Context, name string, entries []domqueue.Entry) error
}

// Dispatcher hands jobs to the background scheduler.
type Dispatcher interface {
	Dispatch(ctx context.Context, j job.Job) error
}

// Tracker counts outstanding async reindex batches per index.
type Tracker interface {
	Add(ctx context.Context, indexName string, batchIDs ...string) error
	Complete(ctx context.Context, indexName, batchID string) error
	Remaining(ctx context.Context, indexName string) (int, error)
}
