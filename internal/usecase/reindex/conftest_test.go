package reindex

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/domain/batch"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	domqueue "github.com/kailas-cloud/kickdex/internal/domain/queue"
	"github.com/kailas-cloud/kickdex/internal/domain/record"
)

// --- Mocks ---

type mockWriter struct {
	scopes  int
	flushed [][]batch.Item
}

func (m *mockWriter) Scope(ctx context.Context, fn func(ctx context.Context) error) error {
	m.scopes++
	var pending []batch.Item
	if err := fn(context.WithValue(ctx, pendingKey{}, &pending)); err != nil {
		return err
	}
	m.flushed = append(m.flushed, pending)
	return nil
}

type pendingKey struct{}

func (m *mockWriter) Enqueue(ctx context.Context, items ...batch.Item) error {
	if p, ok := ctx.Value(pendingKey{}).(*[]batch.Item); ok {
		*p = append(*p, items...)
		return nil
	}
	m.flushed = append(m.flushed, items)
	return nil
}

func (m *mockWriter) items() []batch.Item {
	var out []batch.Item
	for _, f := range m.flushed {
		out = append(out, f...)
	}
	return out
}

type mockQueue struct {
	name    string
	entries []domqueue.Entry
	err     error
}

func (m *mockQueue) Push(_ context.Context, name string, entries []domqueue.Entry) error {
	m.name = name
	m.entries = append(m.entries, entries...)
	return m.err
}

type mockDispatcher struct {
	jobs []job.Job
	err  error
}

func (m *mockDispatcher) Dispatch(_ context.Context, j job.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, j)
	return nil
}

type mockTracker struct {
	added     []string
	completed []string
	remaining int
	err       error
}

func (m *mockTracker) Add(_ context.Context, _ string, ids ...string) error {
	m.added = append(m.added, ids...)
	return m.err
}

func (m *mockTracker) Complete(_ context.Context, _ string, id string) error {
	m.completed = append(m.completed, id)
	return m.err
}

func (m *mockTracker) Remaining(_ context.Context, _ string) (int, error) {
	return m.remaining, m.err
}

type mockLoader struct {
	records map[string]record.Record
	calls   [][]string
	err     error
}

func (m *mockLoader) Load(_ context.Context, ids []string) ([]record.Record, error) {
	m.calls = append(m.calls, ids)
	if m.err != nil {
		return nil, m.err
	}
	var out []record.Record
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// product is a record with every optional capability.
type product struct {
	id      string
	routing string
	name    string
	skip    bool
	gone    bool
}

func (p *product) SearchID() string { return p.id }
func (p *product) SearchData() (map[string]any, error) {
	return map[string]any{"name": p.name}, nil
}
func (p *product) SearchRouting() string { return p.routing }
func (p *product) ShouldIndex() bool     { return !p.skip }
func (p *product) Persisted() bool       { return true }
func (p *product) Destroyed() bool       { return p.gone }
func (p *product) PartialData(method string) (map[string]any, error) {
	return map[string]any{method: p.name}, nil
}

// plain has no optional capabilities.
type plain struct{ id string }

func (p plain) SearchID() string                    { return p.id }
func (p plain) SearchData() (map[string]any, error) { return map[string]any{}, nil }

type harness struct {
	tr         *Translator
	writer     *mockWriter
	queue      *mockQueue
	dispatcher *mockDispatcher
	tracker    *mockTracker
	idx        *index.Index
}

func newHarness(t *testing.T, opts index.Options) *harness {
	t.Helper()
	if opts.Class == "" {
		opts.Class = "Product"
	}
	idx, err := index.New("products", opts)
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	h := &harness{
		writer:     &mockWriter{},
		queue:      &mockQueue{},
		dispatcher: &mockDispatcher{},
		tracker:    &mockTracker{},
		idx:        idx,
	}
	h.tr = New(h.writer, h.queue, h.dispatcher, h.tracker, zap.NewNop())
	return h
}
