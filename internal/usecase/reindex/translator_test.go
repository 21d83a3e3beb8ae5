package reindex

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/batch"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	domqueue "github.com/kailas-cloud/kickdex/internal/domain/queue"
	"github.com/kailas-cloud/kickdex/internal/domain/record"
)

func TestReindex_InlinePartitions(t *testing.T) {
	h := newHarness(t, index.Options{})
	records := []record.Record{
		&product{id: "1", name: "milk", routing: "store-A"},
		&product{id: "2", name: "tea", skip: true},
		&product{id: "3", name: "gone", gone: true, routing: "store-B"},
		plain{id: "4"},
	}

	if err := h.tr.Reindex(context.Background(), h.idx, records, "", Options{}); err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if h.writer.scopes != 1 {
		t.Errorf("expected one bulk scope, got %d", h.writer.scopes)
	}

	items := h.writer.items()
	want := []struct {
		action  batch.Action
		id      string
		routing string
	}{
		{batch.ActionIndex, "1", "store-A"},
		{batch.ActionIndex, "4", ""},
		{batch.ActionDelete, "2", ""},
		{batch.ActionDelete, "3", "store-B"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		it := items[i]
		if it.Action() != w.action || it.ID() != w.id || it.Routing() != w.routing || it.Index() != "products" {
			t.Errorf("item %d = %s %s %q, want %s %s %q", i, it.Action(), it.ID(), it.Routing(), w.action, w.id, w.routing)
		}
	}
	if items[0].Doc()["name"] != "milk" {
		t.Errorf("doc = %v", items[0].Doc())
	}
}

func TestReindex_FullSkipsDeletes(t *testing.T) {
	h := newHarness(t, index.Options{})
	records := []record.Record{
		&product{id: "1", name: "milk"},
		&product{id: "2", skip: true},
	}

	if err := h.tr.Reindex(context.Background(), h.idx, records, index.CallbacksInline, Options{Full: true}); err != nil {
		t.Fatal(err)
	}
	items := h.writer.items()
	if len(items) != 1 || items[0].Action() != batch.ActionIndex {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestReindex_PartialUpdate(t *testing.T) {
	h := newHarness(t, index.Options{})

	err := h.tr.Reindex(context.Background(), h.idx,
		[]record.Record{&product{id: "1", name: "milk"}}, index.CallbacksInline, Options{Method: "price"})
	if err != nil {
		t.Fatal(err)
	}
	items := h.writer.items()
	if len(items) != 1 || items[0].Action() != batch.ActionUpdate || items[0].Doc()["price"] != "milk" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].Method() != "price" {
		t.Errorf("method = %q, want price", items[0].Method())
	}
}

func TestReindex_PartialWithoutSerializer(t *testing.T) {
	h := newHarness(t, index.Options{})

	err := h.tr.Reindex(context.Background(), h.idx,
		[]record.Record{plain{id: "1"}}, index.CallbacksInline, Options{Method: "price"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if len(h.writer.flushed) != 0 {
		t.Error("nothing must be flushed after a failure")
	}
}

func TestReindex_EmptyInlineMakesNoScope(t *testing.T) {
	h := newHarness(t, index.Options{})
	if err := h.tr.Reindex(context.Background(), h.idx, nil, index.CallbacksInline, Options{}); err != nil {
		t.Fatal(err)
	}
	if h.writer.scopes != 0 {
		t.Errorf("expected no scope")
	}
}

func TestReindex_Queue(t *testing.T) {
	h := newHarness(t, index.Options{Callbacks: index.CallbacksQueue})
	records := []record.Record{
		&product{id: "7"},
		&product{id: "9", routing: "store-A"},
	}

	if err := h.tr.Reindex(context.Background(), h.idx, records, "", Options{}); err != nil {
		t.Fatal(err)
	}
	if h.queue.name != "products" {
		t.Errorf("queue name = %q", h.queue.name)
	}
	want := []domqueue.Entry{{ID: "7"}, {ID: "9", Routing: "store-A"}}
	if len(h.queue.entries) != 2 || h.queue.entries[0] != want[0] || h.queue.entries[1] != want[1] {
		t.Errorf("entries = %v, want %v", h.queue.entries, want)
	}
	if len(h.writer.flushed) != 0 {
		t.Error("queue mode must not write to the index")
	}
}

func TestReindex_QueueRejectsPartial(t *testing.T) {
	h := newHarness(t, index.Options{})
	err := h.tr.Reindex(context.Background(), h.idx,
		[]record.Record{&product{id: "1"}}, index.CallbacksQueue, Options{Method: "price"})

	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) || ce.Msg != "Partial reindex not supported with queue option" {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.queue.entries) != 0 {
		t.Error("nothing must be pushed")
	}
}

func TestReindex_AsyncSingle(t *testing.T) {
	h := newHarness(t, index.Options{Callbacks: index.CallbacksAsync})

	err := h.tr.Reindex(context.Background(), h.idx,
		[]record.Record{&product{id: "5", routing: "r"}}, "", Options{Single: true, Method: "price"})
	if err != nil {
		t.Fatal(err)
	}
	if len(h.dispatcher.jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(h.dispatcher.jobs))
	}
	want := job.Reindex{Class: "Product", ID: "5", Method: "price", Routing: "r", IndexName: "products"}
	if got, ok := h.dispatcher.jobs[0].(job.Reindex); !ok || got != want {
		t.Errorf("job = %+v, want %+v", h.dispatcher.jobs[0], want)
	}
}

func TestReindex_AsyncBulk(t *testing.T) {
	h := newHarness(t, index.Options{Callbacks: index.CallbacksAsync})

	err := h.tr.Reindex(context.Background(), h.idx,
		[]record.Record{&product{id: "1"}, &product{id: "2"}}, "", Options{})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := h.dispatcher.jobs[0].(job.BulkReindex)
	if !ok || got.Class != "Product" || len(got.IDs) != 2 || got.IDs[1] != "2" || got.IndexName != "products" {
		t.Errorf("job = %+v", h.dispatcher.jobs[0])
	}
}

func TestReindex_AsyncDispatchError(t *testing.T) {
	h := newHarness(t, index.Options{})
	h.dispatcher.err = errors.New("pool closed")

	err := h.tr.Reindex(context.Background(), h.idx,
		[]record.Record{&product{id: "1"}}, index.CallbacksAsync, Options{})
	if !errors.Is(err, h.dispatcher.err) {
		t.Fatalf("expected dispatch error, got %v", err)
	}
}

func TestReindex_Disabled(t *testing.T) {
	h := newHarness(t, index.Options{Callbacks: index.CallbacksDisabled})
	if err := h.tr.Reindex(context.Background(), h.idx, []record.Record{&product{id: "1"}}, "", Options{}); err != nil {
		t.Fatal(err)
	}
	if len(h.writer.flushed)+len(h.queue.entries)+len(h.dispatcher.jobs) != 0 {
		t.Error("disabled mode must do nothing")
	}
}

func TestReindex_UnknownMode(t *testing.T) {
	h := newHarness(t, index.Options{})
	err := h.tr.Reindex(context.Background(), h.idx, nil, index.Callbacks("bulk"), Options{})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestReindexItems(t *testing.T) {
	h := newHarness(t, index.Options{})
	loader := &mockLoader{records: map[string]record.Record{
		"1": &product{id: "1", name: "milk"},
		"2": &product{id: "2", skip: true, routing: "own"},
	}}
	entries := []domqueue.Entry{
		{ID: "1"},
		{ID: "2", Routing: "store-A"},
		{ID: "3", Routing: "store-B"},
		{ID: "1"},
	}

	if err := h.tr.ReindexItems(context.Background(), h.idx, loader, entries, "", false); err != nil {
		t.Fatalf("ReindexItems: %v", err)
	}
	if len(loader.calls) != 1 || len(loader.calls[0]) != 3 {
		t.Fatalf("expected one load of 3 unique ids, got %v", loader.calls)
	}

	items := h.writer.items()
	if len(items) != 3 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Action() != batch.ActionIndex || items[0].ID() != "1" {
		t.Errorf("item 0 = %s %s", items[0].Action(), items[0].ID())
	}
	if items[1].Action() != batch.ActionDelete || items[1].ID() != "2" || items[1].Routing() != "store-A" {
		t.Errorf("item 1 = %s %s %q", items[1].Action(), items[1].ID(), items[1].Routing())
	}
	if items[2].Action() != batch.ActionDelete || items[2].ID() != "3" || items[2].Routing() != "store-B" {
		t.Errorf("item 2 = %s %s %q", items[2].Action(), items[2].ID(), items[2].Routing())
	}
}

func TestReindexItems_LoadError(t *testing.T) {
	h := newHarness(t, index.Options{})
	loader := &mockLoader{err: errors.New("redis down")}

	err := h.tr.ReindexItems(context.Background(), h.idx, loader, []domqueue.Entry{{ID: "1"}}, "", false)
	if !errors.Is(err, loader.err) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestReindexItems_Empty(t *testing.T) {
	h := newHarness(t, index.Options{})
	loader := &mockLoader{}
	if err := h.tr.ReindexItems(context.Background(), h.idx, loader, nil, "", false); err != nil {
		t.Fatal(err)
	}
	if len(loader.calls) != 0 {
		t.Error("empty entries must not load")
	}
}
