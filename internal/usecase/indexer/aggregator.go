// Package indexer batches index writes into bulk requests.
package indexer

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/batch"
	"github.com/kailas-cloud/kickdex/internal/logger"
	"github.com/kailas-cloud/kickdex/internal/metrics"
)

type scopeKey struct{}

// accumulator holds the items of one bulk scope. It belongs to a single call chain, so it has no lock.
type accumulator struct {
	items []batch.Item
}

// Aggregator collects bulk items per scope and flushes them in one request.
type Aggregator struct {
	backend Bulker
	logger  *zap.Logger
}

// New creates a bulk aggregator.
func New(b Bulker, log *zap.Logger) *Aggregator {
	return &Aggregator{backend: b, logger: log}
}

// Active reports whether ctx carries a bulk scope.
func Active(ctx context.Context) bool {
	_, ok := ctx.Value(scopeKey{}).(*accumulator)
	return ok
}

// Scope runs fn with a bulk scope on its context. Items enqueued inside are sent in one request when fn
// returns without error, and dropped otherwise. A nested scope joins the outer one.
func (a *Aggregator) Scope(ctx context.Context, fn func(ctx context.Context) error) error {
	if Active(ctx) {
		return fn(ctx)
	}

	acc := &accumulator{}
	if err := fn(context.WithValue(ctx, scopeKey{}, acc)); err != nil {
		if len(acc.items) > 0 {
			logger.FromContext(ctx, a.logger).Debug("Discarding bulk items after failure",
				zap.Int("items", len(acc.items)))
		}
		return err
	}
	return a.Flush(ctx, acc.items)
}

// Enqueue adds items to the active scope, or sends them at once without one.
func (a *Aggregator) Enqueue(ctx context.Context, items ...batch.Item) error {
	if acc, ok := ctx.Value(scopeKey{}).(*accumulator); ok {
		acc.items = append(acc.items, items...)
		return nil
	}
	return a.Flush(ctx, items)
}

// Flush sends items in one bulk request, retrying once on a transient transport failure, and returns
// an ImportError for the first failed item.
func (a *Aggregator) Flush(ctx context.Context, items []batch.Item) error {
	if len(items) == 0 {
		return nil
	}

	resp, err := a.backend.Bulk(ctx, items)
	if err != nil && domain.IsTransient(err) {
		logger.FromContext(ctx, a.logger).Warn("Bulk request failed, retrying once",
			zap.Int("items", len(items)), zap.Error(err))
		resp, err = a.backend.Bulk(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("bulk: %w", err)
	}

	for _, r := range resp.Results {
		status := string(r.Status())
		if r.Status() == batch.StatusError && !r.Failed() {
			status = strconv.Itoa(r.Code())
		}
		metrics.BulkItemsTotal.WithLabelValues(string(r.Action()), status).Inc()
	}

	failed, pos, ok := resp.FirstFailure()
	if !ok {
		return nil
	}
	reason := failed.Reason()
	if failed.ErrType() != "" {
		reason = failed.ErrType() + ": " + reason
	}
	ie := &domain.ImportError{ID: failed.ID(), Reason: reason}
	if pos < len(items) {
		ie.Method = items[pos].Method()
	}
	logger.FromContext(ctx, a.logger).Warn("Bulk item failed",
		zap.String("id", ie.ID),
		zap.String("action", string(failed.Action())),
		zap.String("method", ie.Method),
		zap.Int("status", failed.Code()),
		zap.String("reason", reason),
	)
	return ie
}
