// Package queue stores pending reindex entries in a Redis list.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/kailas-cloud/kickdex/internal/db"
	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
	domqueue "github.com/kailas-cloud/kickdex/internal/domain/queue"
	"github.com/kailas-cloud/kickdex/internal/metrics"
)

var keyPrefix = domain.KeyPrefix + "reindex_queue:"

// store is the consumer interface for the reindex queue (ISP).
type store interface {
	LPush(ctx context.Context, key string, values ...string) error
	RPopCount(ctx context.Context, key string, count int) ([]string, error)
	RPop(ctx context.Context, key string) (string, bool, error)
	LLen(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, key string) error
}

// Repo is a FIFO of encoded queue entries, one list per queue name. Reserve pops atomically, so
// concurrent drainers never see the same entry.
type Repo struct {
	store store
	// set once the server rejects RPOP with a count
	singlePop atomic.Bool
}

// New creates a queue repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Key returns the list key of a queue.
func Key(name string) string {
	return keyPrefix + name
}

// Push appends entries to the queue.
func (r *Repo) Push(ctx context.Context, name string, entries []domqueue.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := r.store.LPush(ctx, Key(name), domqueue.EncodeAll(entries)...); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	metrics.QueueEntriesTotal.WithLabelValues(name, "push").Add(float64(len(entries)))
	return nil
}

// Reserve removes and returns up to limit encoded entries, oldest first. limit <= 0 means
// index.DefaultBatchSize.
func (r *Repo) Reserve(ctx context.Context, name string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = index.DefaultBatchSize
	}

	var (
		values []string
		err    error
	)
	if !r.singlePop.Load() {
		values, err = r.store.RPopCount(ctx, Key(name), limit)
		if errors.Is(err, db.ErrUnsupportedCommand) {
			r.singlePop.Store(true)
		}
	}
	if r.singlePop.Load() {
		values, err = r.popEach(ctx, name, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("reserve: %w", err)
	}

	metrics.QueueEntriesTotal.WithLabelValues(name, "reserve").Add(float64(len(values)))
	return values, nil
}

func (r *Repo) popEach(ctx context.Context, name string, limit int) ([]string, error) {
	var values []string
	for len(values) < limit {
		v, ok, err := r.store.RPop(ctx, Key(name))
		if err != nil {
			return values, err //nolint:wrapcheck // wrapped by Reserve
		}
		if !ok {
			break
		}
		values = append(values, v)
	}
	return values, nil
}

// Length returns the number of pending entries.
func (r *Repo) Length(ctx context.Context, name string) (int64, error) {
	n, err := r.store.LLen(ctx, Key(name))
	if err != nil {
		return 0, fmt.Errorf("length: %w", err)
	}
	return n, nil
}

// Clear drops all pending entries.
func (r *Repo) Clear(ctx context.Context, name string) error {
	if err := r.store.Del(ctx, Key(name)); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}
