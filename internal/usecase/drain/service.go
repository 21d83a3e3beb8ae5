// Package drain empties reindex queues in batches.
package drain

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	domqueue "github.com/kailas-cloud/kickdex/internal/domain/queue"
)

// Service drains reindex queues.
type Service struct {
	indices    Indices
	queue      Reserver
	dispatcher Dispatcher
	reindexer  ItemsReindexer
	loaders    Loaders
	logger     *zap.Logger

	mu      sync.Mutex
	running map[string]struct{}
}

// New creates a drain service.
func New(
	indices Indices, q Reserver, d Dispatcher, r ItemsReindexer, loaders Loaders, logger *zap.Logger,
) *Service {
	return &Service{
		indices:    indices,
		queue:      q,
		dispatcher: d,
		reindexer:  r,
		loaders:    loaders,
		logger:     logger,
		running:    make(map[string]struct{}),
	}
}

// Drain reserves batches of the model's batch size until a reservation comes back short. Each
// non-empty batch is processed inline or dispatched as a ProcessBatch job. It returns the number of
// batches handled. A drain of a queue that is already being drained returns zero batches at once.
func (s *Service) Drain(ctx context.Context, j job.ProcessQueue) (int, error) {
	idx, err := s.resolve(j.Class, j.IndexName)
	if err != nil {
		return 0, err
	}
	if !s.acquire(idx.Name()) {
		s.logger.Info("Queue drain already running", zap.String("model", j.Class), zap.String("queue", idx.Name()))
		return 0, nil
	}
	defer s.release(idx.Name())

	limit := idx.BatchSize()

	batches := 0
	for {
		if err := ctx.Err(); err != nil {
			return batches, err
		}

		ids, err := s.queue.Reserve(ctx, idx.Name(), limit)
		if err != nil {
			return batches, fmt.Errorf("reserve: %w", err)
		}

		if len(ids) > 0 {
			b := job.ProcessBatch{Class: j.Class, RecordIDs: uniq(ids), IndexName: j.IndexName}
			if j.Inline {
				err = s.ProcessBatch(ctx, b)
			} else {
				err = s.dispatcher.Dispatch(ctx, b)
			}
			if err != nil {
				return batches, fmt.Errorf("batch of %d entries: %w", len(b.RecordIDs), err)
			}
			batches++
		}

		if len(ids) < limit {
			break
		}
	}

	if batches > 0 {
		s.logger.Info("Reindex queue drained",
			zap.String("model", j.Class),
			zap.String("queue", idx.Name()),
			zap.Int("batches", batches),
			zap.Bool("inline", j.Inline),
		)
	}
	return batches, nil
}

// ProcessBatch reindexes raw queue entries.
func (s *Service) ProcessBatch(ctx context.Context, j job.ProcessBatch) error {
	idx, err := s.resolve(j.Class, j.IndexName)
	if err != nil {
		return err
	}
	entries := domqueue.DecodeAll(j.RecordIDs)
	return s.reindexer.ReindexItems(ctx, idx, s.loaders.Loader(j.Class), entries, "", false)
}

func (s *Service) acquire(queue string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[queue]; busy {
		return false
	}
	s.running[queue] = struct{}{}
	return true
}

func (s *Service) release(queue string) {
	s.mu.Lock()
	delete(s.running, queue)
	s.mu.Unlock()
}

// resolve returns the model's index, renamed when indexName is given.
func (s *Service) resolve(model, indexName string) (*index.Index, error) {
	idx, err := s.indices.Get(model)
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

func uniq(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
