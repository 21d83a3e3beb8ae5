package chi

import (
	"context"

	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	"github.com/kailas-cloud/kickdex/internal/domain/record"
	"github.com/kailas-cloud/kickdex/internal/domain/search/request"
	"github.com/kailas-cloud/kickdex/internal/domain/search/result"
	"github.com/kailas-cloud/kickdex/internal/query"
	"github.com/kailas-cloud/kickdex/internal/repository/source"
	"github.com/kailas-cloud/kickdex/internal/usecase/health"
	"github.com/kailas-cloud/kickdex/internal/usecase/reindex"
)

// Searcher compiles and runs searches.
type Searcher interface {
	Search(ctx context.Context, model, term string, opts request.Options) (*result.Results, error)
	Compile(ctx context.Context, idx *index.Index, term string, opts request.Options) (*query.Query, error)
	MultiSearch(ctx context.Context, queries []*query.Query) ([]*result.Results, error)
}

// Indices resolves model names.
type Indices interface {
	Get(model string) (*index.Index, error)
	Models() []string
}

// Reindexer writes record changes to the index.
type Reindexer interface {
	Reindex(ctx context.Context, idx *index.Index, records []record.Record, mode index.Callbacks, opts reindex.Options) error
	ReindexAsync(ctx context.Context, idx *index.Index, ids []string, method string) ([]string, error)
	ReindexStatus(ctx context.Context, indexName string) (reindex.Status, error)
}

// Records is the source-of-truth record store.
type Records interface {
	Put(ctx context.Context, model string, doc *source.Document) error
	Get(ctx context.Context, model, id string) (*source.Document, error)
	Delete(ctx context.Context, model, id string) error
	Loader(model string) record.Loader
}

// Queue inspects and clears reindex queues.
type Queue interface {
	Length(ctx context.Context, name string) (int64, error)
	Clear(ctx context.Context, name string) error
}

// Drainer processes a reindex queue.
type Drainer interface {
	Drain(ctx context.Context, j job.ProcessQueue) (int, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}
