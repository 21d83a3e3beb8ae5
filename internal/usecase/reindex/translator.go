// Package reindex turns record changes into index writes, queue entries or background jobs.
package reindex

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/batch"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	domqueue "github.com/kailas-cloud/kickdex/internal/domain/queue"
	"github.com/kailas-cloud/kickdex/internal/domain/record"
	"github.com/kailas-cloud/kickdex/internal/logger"
)

// Options tune one reindex call.
type Options struct {
	// Method names a partial update; the record must implement record.PartialSerializer.
	Method string
	// Full skips deletes: the caller is filling a fresh index.
	Full bool
	// Single marks a reindex of one record.
	Single bool
}

// Translator routes records to the index according to the callbacks mode.
type Translator struct {
	writer     Writer
	queue      Queue
	dispatcher Dispatcher
	tracker    Tracker
	logger     *zap.Logger
}

// New creates a translator.
func New(w Writer, q Queue, d Dispatcher, t Tracker, log *zap.Logger) *Translator {
	return &Translator{writer: w, queue: q, dispatcher: d, tracker: t, logger: log}
}

// Reindex writes records to idx. An empty mode uses the model's callbacks setting.
func (t *Translator) Reindex(
	ctx context.Context, idx *index.Index, records []record.Record, mode index.Callbacks, opts Options,
) error {
	if mode == "" {
		mode = idx.Options().Callbacks
	}

	switch mode {
	case index.CallbacksInline:
		var keep, remove []record.Record
		for _, r := range records {
			if record.ShouldIndex(r) {
				keep = append(keep, r)
			} else if !opts.Full {
				remove = append(remove, r)
			}
		}
		return t.importInline(ctx, idx, keep, remove, opts.Method, opts.Single)

	case index.CallbacksQueue:
		if opts.Method != "" {
			return domain.NewConfigurationError("Partial reindex not supported with queue option")
		}
		entries := make([]domqueue.Entry, len(records))
		for i, r := range records {
			entries[i] = domqueue.Entry{ID: r.SearchID(), Routing: record.Routing(r)}
		}
		return t.queue.Push(ctx, idx.Name(), entries)

	case index.CallbacksAsync:
		return t.dispatchAsync(ctx, idx, records, opts)

	case index.CallbacksDisabled:
		return nil
	}
	return domain.NewConfigurationError("unknown callbacks mode %q", mode)
}

func (t *Translator) dispatchAsync(ctx context.Context, idx *index.Index, records []record.Record, opts Options) error {
	if len(records) == 0 {
		return nil
	}
	if opts.Single {
		for _, r := range records {
			err := t.dispatcher.Dispatch(ctx, job.Reindex{
				Class:     idx.Class(),
				ID:        r.SearchID(),
				Method:    opts.Method,
				Routing:   record.Routing(r),
				IndexName: idx.Name(),
			})
			if err != nil {
				return fmt.Errorf("dispatch reindex %s: %w", r.SearchID(), err)
			}
		}
		return nil
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.SearchID()
	}
	err := t.dispatcher.Dispatch(ctx, job.BulkReindex{
		Class:     idx.Class(),
		IDs:       ids,
		IndexName: idx.Name(),
		Method:    opts.Method,
	})
	if err != nil {
		return fmt.Errorf("dispatch bulk reindex: %w", err)
	}
	return nil
}

// ReindexItems reindexes queue entries: ids that load and want indexing are written, all others are
// deleted with the routing they were queued with.
func (t *Translator) ReindexItems(
	ctx context.Context, idx *index.Index, loader record.Loader, entries []domqueue.Entry, method string, single bool,
) error {
	routing := make(map[string]string, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, seen := routing[e.ID]; !seen {
			ids = append(ids, e.ID)
		}
		if e.Routing != "" || routing[e.ID] == "" {
			routing[e.ID] = e.Routing
		}
	}
	if len(ids) == 0 {
		return nil
	}

	loaded, err := loader.Load(ctx, ids)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	kept := make(map[string]bool, len(loaded))
	keep := make([]record.Record, 0, len(loaded))
	for _, r := range loaded {
		if record.ShouldIndex(r) {
			keep = append(keep, r)
			kept[r.SearchID()] = true
		}
	}

	var remove []record.Record
	for _, id := range ids {
		if !kept[id] {
			remove = append(remove, record.Ref{ID: id, Routing: routing[id]})
		}
	}
	return t.importInline(ctx, idx, keep, remove, method, single)
}

func (t *Translator) importInline(
	ctx context.Context, idx *index.Index, keep, remove []record.Record, method string, single bool,
) error {
	if len(keep) == 0 && len(remove) == 0 {
		return nil
	}

	action := "import"
	switch {
	case single && len(keep) == 0:
		action = "remove"
	case method != "":
		action = "update"
	case single:
		action = "store"
	}
	logger.FromContext(ctx, t.logger).Debug("Reindexing records",
		zap.String("index", idx.Name()),
		zap.String("action", action),
		zap.Int("index_records", len(keep)),
		zap.Int("delete_records", len(remove)),
	)

	return t.writer.Scope(ctx, func(ctx context.Context) error {
		items := make([]batch.Item, 0, len(keep)+len(remove))
		for _, r := range keep {
			it, err := indexItem(idx.Name(), r, method)
			if err != nil {
				return err
			}
			items = append(items, it)
		}
		for _, r := range remove {
			items = append(items, batch.NewDelete(idx.Name(), r.SearchID(), record.Routing(r)))
		}
		return t.writer.Enqueue(ctx, items...)
	})
}

func indexItem(indexName string, r record.Record, method string) (batch.Item, error) {
	if method != "" {
		ps, ok := r.(record.PartialSerializer)
		if !ok {
			return batch.Item{}, domain.NewConfigurationError("record %s does not support partial reindex %q",
				r.SearchID(), method)
		}
		doc, err := ps.PartialData(method)
		if err != nil {
			return batch.Item{}, fmt.Errorf("partial data of %s: %w", r.SearchID(), err)
		}
		return batch.NewUpdate(indexName, r.SearchID(), record.Routing(r), method, doc), nil
	}

	doc, err := r.SearchData()
	if err != nil {
		return batch.Item{}, fmt.Errorf("search data of %s: %w", r.SearchID(), err)
	}
	return batch.NewIndex(indexName, r.SearchID(), record.Routing(r), doc), nil
}
