package reindex

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	"github.com/kailas-cloud/kickdex/internal/domain/record"
)

// Status reports the progress of an async reindex.
type Status struct {
	Completed   bool `json:"completed"`
	BatchesLeft int  `json:"batches_left"`
}

// ReindexAsync splits ids into batches of the model's batch size, registers each batch with the tracker
// and dispatches one bulk job per batch. It returns the batch ids.
func (t *Translator) ReindexAsync(ctx context.Context, idx *index.Index, ids []string, method string) ([]string, error) {
	var batchIDs []string
	for chunk := range slices.Chunk(ids, idx.BatchSize()) {
		batchID := uuid.NewString()
		if err := t.tracker.Add(ctx, idx.Name(), batchID); err != nil {
			return batchIDs, fmt.Errorf("track batch: %w", err)
		}
		err := t.dispatcher.Dispatch(ctx, job.BulkReindex{
			Class:     idx.Class(),
			IDs:       chunk,
			IndexName: idx.Name(),
			Method:    method,
			BatchID:   batchID,
		})
		if err != nil {
			return batchIDs, fmt.Errorf("dispatch batch %s: %w", batchID, err)
		}
		batchIDs = append(batchIDs, batchID)
	}

	t.logger.Info("Async reindex dispatched",
		zap.String("index", idx.Name()),
		zap.Int("records", len(ids)),
		zap.Int("batches", len(batchIDs)),
	)
	return batchIDs, nil
}

// ReindexStatus returns how many async batches of indexName are still running.
func (t *Translator) ReindexStatus(ctx context.Context, indexName string) (Status, error) {
	left, err := t.tracker.Remaining(ctx, indexName)
	if err != nil {
		return Status{}, fmt.Errorf("reindex status: %w", err)
	}
	return Status{Completed: left == 0, BatchesLeft: left}, nil
}

// RunReindex executes a single-record job. A record that no longer loads is deleted.
func (t *Translator) RunReindex(ctx context.Context, idx *index.Index, loader record.Loader, j job.Reindex) error {
	loaded, err := loader.Load(ctx, []string{j.ID})
	if err != nil {
		return fmt.Errorf("load record %s: %w", j.ID, err)
	}

	var r record.Record = record.Ref{ID: j.ID, Routing: j.Routing}
	if len(loaded) > 0 {
		r = loaded[0]
	}
	return t.Reindex(ctx, idx, []record.Record{r}, index.CallbacksInline, Options{Method: j.Method, Single: true})
}

// RunBulkReindex executes a bulk job and marks its batch complete.
func (t *Translator) RunBulkReindex(ctx context.Context, idx *index.Index, loader record.Loader, j job.BulkReindex) error {
	loaded, err := loader.Load(ctx, j.IDs)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if err := t.Reindex(ctx, idx, loaded, index.CallbacksInline, Options{Method: j.Method}); err != nil {
		return err
	}
	if j.BatchID != "" {
		if err := t.tracker.Complete(ctx, idx.Name(), j.BatchID); err != nil {
			return fmt.Errorf("complete batch %s: %w", j.BatchID, err)
		}
	}
	return nil
}
