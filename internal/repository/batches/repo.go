// Package batches tracks the outstanding batches of an asynchronous reindex.
package batches

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/kickdex/internal/domain"
)

// store is the consumer interface for the batch tracker (ISP).
type store interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SCard(ctx context.Context, key string) (int64, error)
}

// Repo keeps one set of pending batch ids per index.
type Repo struct {
	store store
}

// New creates a batch tracker.
func New(s store) *Repo {
	return &Repo{store: s}
}

func key(indexName string) string {
	return domain.KeyPrefix + "reindex:" + indexName + ":batches"
}

// Add registers pending batches.
func (r *Repo) Add(ctx context.Context, indexName string, batchIDs ...string) error {
	if err := r.store.SAdd(ctx, key(indexName), batchIDs...); err != nil {
		return fmt.Errorf("add batches: %w", err)
	}
	return nil
}

// Complete marks a batch done.
func (r *Repo) Complete(ctx context.Context, indexName, batchID string) error {
	if err := r.store.SRem(ctx, key(indexName), batchID); err != nil {
		return fmt.Errorf("complete batch: %w", err)
	}
	return nil
}

// Remaining counts the batches not yet completed.
func (r *Repo) Remaining(ctx context.Context, indexName string) (int, error) {
	n, err := r.store.SCard(ctx, key(indexName))
	if err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return int(n), nil
}
