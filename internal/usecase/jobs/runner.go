// Package jobs executes background job payloads.
package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	"github.com/kailas-cloud/kickdex/internal/logger"
	"github.com/kailas-cloud/kickdex/internal/metrics"
)

// Runner executes one job of any kind.
type Runner struct {
	indices   Indices
	loaders   Loaders
	reindexer Reindexer
	drainer   Drainer
	logger    *zap.Logger
}

// New creates a job runner.
func New(indices Indices, loaders Loaders, r Reindexer, d Drainer, logger *zap.Logger) *Runner {
	return &Runner{indices: indices, loaders: loaders, reindexer: r, drainer: d, logger: logger}
}

// Run executes j.
func (r *Runner) Run(ctx context.Context, j job.Job) error {
	log := r.logger.With(zap.String("job", string(j.Kind())))
	ctx = logger.ContextWithLogger(ctx, log)

	start := time.Now()
	err := r.run(ctx, j)
	status := "success"
	if err != nil {
		status = "error"
		log.Error("Job failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
	} else {
		log.Debug("Job done", zap.Duration("duration", time.Since(start)))
	}
	metrics.JobsTotal.WithLabelValues(string(j.Kind()), status).Inc()
	return err
}

func (r *Runner) run(ctx context.Context, j job.Job) error {
	switch j := j.(type) {
	case job.Reindex:
		idx, err := r.resolve(j.Class, j.IndexName)
		if err != nil {
			return err
		}
		return r.reindexer.RunReindex(ctx, idx, r.loaders.Loader(j.Class), j)
	case job.BulkReindex:
		idx, err := r.resolve(j.Class, j.IndexName)
		if err != nil {
			return err
		}
		return r.reindexer.RunBulkReindex(ctx, idx, r.loaders.Loader(j.Class), j)
	case job.ProcessBatch:
		return r.drainer.ProcessBatch(ctx, j)
	case job.ProcessQueue:
		// a drain on a pool worker must not wait on its own pool for batch slots
		j.Inline = true
		_, err := r.drainer.Drain(ctx, j)
		return err
	}
	return domain.NewConfigurationError("unknown job kind %q", j.Kind())
}

func (r *Runner) resolve(model, indexName string) (*index.Index, error) {
	idx, err := r.indices.Get(model)
	if err != nil {
		return nil, err
	}
	if indexName == "" || indexName == idx.Name() {
		return idx, nil
	}
	named, err := index.New(indexName, idx.Options())
	if err != nil {
		return nil, fmt.Errorf("index %q: %w", indexName, err)
	}
	return named, nil
}
