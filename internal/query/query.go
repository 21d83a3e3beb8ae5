// Package query compiles a search term and typed options into a backend query document.
package query

import (
	"strings"
	"time"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
	"github.com/kailas-cloud/kickdex/internal/domain/search/field"
	"github.com/kailas-cloud/kickdex/internal/domain/search/request"
	"github.com/kailas-cloud/kickdex/internal/domain/search/result"
)

// State is the lifecycle position of a compiled query.
type State int

// Query states.
const (
	StateUnprepared State = iota
	StatePrepared
	StateExecuted
	StateRetryPrepared
	StateReExecuted
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateUnprepared:
		return "unprepared"
	case StatePrepared:
		return "prepared"
	case StateExecuted:
		return "executed"
	case StateRetryPrepared:
		return "retry_prepared"
	case StateReExecuted:
		return "re_executed"
	case StateFinalized:
		return "finalized"
	}
	return "unknown"
}

// DefaultSearchTimeout is used when Settings has no timeout.
const DefaultSearchTimeout = 10 * time.Second

// Settings are process-wide compiler settings.
type Settings struct {
	SearchTimeout time.Duration
}

// Params are the request parameters sent alongside the body.
type Params struct {
	Index          string
	Routing        string
	Scroll         string
	SearchPipeline string
	Extra          map[string]string
}

// Query is a compiled search. It is not safe for concurrent use.
type Query struct {
	idx      *index.Index
	term     string
	opts     request.Options
	settings Settings
	fields   []field.Descriptor

	state   State
	body    map[string]any
	params  Params
	meta    result.Meta
	below   int
	retried bool
}

// New validates opts and compiles the first attempt. idx may be nil for a search across all indices.
func New(idx *index.Index, term string, opts request.Options, settings Settings) (*Query, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if keys := opts.BodyConflicts(); len(keys) > 0 {
		return nil, domain.NewConfigurationError("Options incompatible with body option: %s", strings.Join(keys, ", "))
	}
	if settings.SearchTimeout <= 0 {
		settings.SearchTimeout = DefaultSearchTimeout
	}

	q := &Query{idx: idx, term: term, opts: opts, settings: settings}
	if opts.Body == nil {
		fields, err := field.Resolve(term, opts.Fields, opts.Match, q.model().FieldDefaults())
		if err != nil {
			return nil, err
		}
		q.fields = fields
	}
	if err := q.prepare(); err != nil {
		return nil, err
	}
	q.state = StatePrepared
	return q, nil
}

// Term returns the search term.
func (q *Query) Term() string { return q.term }

// Index returns the index handle, nil when searching all indices.
func (q *Query) Index() *index.Index { return q.idx }

// Body returns the compiled query document.
func (q *Query) Body() map[string]any { return q.body }

// Params returns the request parameters.
func (q *Query) Params() Params { return q.params }

// Meta returns what the results need to know about the compiled page.
func (q *Query) Meta() result.Meta { return q.meta }

// State returns the lifecycle state.
func (q *Query) State() State { return q.state }

// Fields returns the resolved field descriptors.
func (q *Query) Fields() []field.Descriptor { return q.fields }

// MarkExecuted records that the current attempt was sent.
func (q *Query) MarkExecuted() {
	switch q.state {
	case StatePrepared:
		q.state = StateExecuted
	case StateRetryPrepared:
		q.state = StateReExecuted
	}
}

// ShouldRetry reports whether resp warrants one more attempt with fuzzy matching on. It is true at most
// once per query.
func (q *Query) ShouldRetry(resp *result.Response) bool {
	if q.state != StateExecuted || q.below <= 0 || q.retried || resp == nil {
		return false
	}
	return resp.Error == nil && resp.Total() < q.below
}

// PrepareRetry recompiles the query with fuzzy matching forced on.
func (q *Query) PrepareRetry() error {
	q.retried = true
	if err := q.prepare(); err != nil {
		return err
	}
	q.state = StateRetryPrepared
	return nil
}

// Finalize wraps the last response into results.
func (q *Query) Finalize(resp *result.Response) *result.Results {
	q.state = StateFinalized
	return result.New(resp, q.meta)
}

// Fail finalizes the query with a per-query error.
func (q *Query) Fail(err error) *result.Results {
	q.state = StateFinalized
	return result.Failed(err, q.meta)
}

func (q *Query) model() index.Options {
	if q.idx == nil {
		return index.Options{}
	}
	return q.idx.Options()
}

func (q *Query) buildParams() Params {
	p := Params{Routing: q.opts.Routing, Scroll: q.opts.Scroll, Extra: q.opts.RequestParams}
	switch {
	case len(q.opts.IndexName) > 0:
		p.Index = strings.Join(q.opts.IndexName, ",")
	case q.idx != nil:
		p.Index = q.idx.Name()
	default:
		// skip system indices
		p.Index = "*,-.*"
	}
	if q.opts.Rerank != nil {
		p.SearchPipeline = q.opts.Rerank.SearchPipeline
	}
	return p
}
