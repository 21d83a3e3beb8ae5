// Package result decodes backend search responses into paged results.
package result

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/kickdex/internal/domain/search/field"
)

// Meta is what the compiled query knows about the page it asked for.
type Meta struct {
	Page         int
	PerPage      int
	Padding      int
	Misspellings bool
}

// Results is a decoded response, or the error the backend returned for it.
type Results struct {
	resp *Response
	meta Meta
	err  error
}

// New wraps a decoded response.
func New(resp *Response, meta Meta) *Results {
	if resp == nil {
		resp = &Response{}
	}
	return &Results{resp: resp, meta: meta}
}

// Failed carries a per-query error (used by multi-search).
func Failed(err error, meta Meta) *Results {
	return &Results{resp: &Response{}, meta: meta, err: err}
}

// Err returns the per-query error, if any.
func (r *Results) Err() error { return r.err }

// Response returns the raw decoded response.
func (r *Results) Response() *Response { return r.resp }

// Took returns the backend time in milliseconds.
func (r *Results) Took() int { return r.resp.Took }

// Total returns the total hit count.
func (r *Results) Total() int { return r.resp.Total() }

// Hits returns the hits of the page.
func (r *Results) Hits() []Hit { return r.resp.Hits.Hits }

// IDs returns the ids of the hits in order.
func (r *Results) IDs() []string {
	ids := make([]string, len(r.resp.Hits.Hits))
	for i, h := range r.resp.Hits.Hits {
		ids[i] = h.ID
	}
	return ids
}

// ScrollID returns the scroll cursor.
func (r *Results) ScrollID() string { return r.resp.ScrollID }

// Misspellings reports whether fuzzy matching was on for the final attempt.
func (r *Results) Misspellings() bool { return r.meta.Misspellings }

// CurrentPage returns the 1-based page.
func (r *Results) CurrentPage() int { return r.meta.Page }

// PerPage returns the page size.
func (r *Results) PerPage() int { return r.meta.PerPage }

// Padding returns the number of skipped leading hits.
func (r *Results) Padding() int { return r.meta.Padding }

// Offset returns the index of the first hit of the page.
func (r *Results) Offset() int {
	return (r.meta.Page-1)*r.meta.PerPage + r.meta.Padding
}

// TotalPages returns the page count.
func (r *Results) TotalPages() int {
	if r.meta.PerPage <= 0 {
		return 0
	}
	return (r.Total() + r.meta.PerPage - 1) / r.meta.PerPage
}

// FirstPage reports whether this is page 1.
func (r *Results) FirstPage() bool { return r.meta.Page <= 1 }

// LastPage reports whether no page follows.
func (r *Results) LastPage() bool { return r.meta.Page >= r.TotalPages() }

// OutOfRange reports whether the page is beyond the last one.
func (r *Results) OutOfRange() bool { return r.meta.Page > r.TotalPages() }

// Aggs returns aggregations, unwrapping the filter wrapper added around filtered aggregations.
func (r *Results) Aggs() map[string]any {
	out := make(map[string]any, len(r.resp.Aggregations))
	for name, raw := range r.resp.Aggregations {
		agg, ok := raw.(map[string]any)
		if !ok {
			out[name] = raw
			continue
		}
		inner, ok := agg[name].(map[string]any)
		if !ok {
			out[name] = agg
			continue
		}
		merged := make(map[string]any, len(agg)+len(inner))
		for k, v := range agg {
			if k != name {
				merged[k] = v
			}
		}
		for k, v := range inner {
			merged[k] = v
		}
		out[name] = merged
	}
	return out
}

// Suggestions returns unique suggestion texts, best score first.
func (r *Results) Suggestions() []string {
	names := make([]string, 0, len(r.resp.Suggest))
	for name := range r.resp.Suggest {
		names = append(names, name)
	}
	sort.Strings(names)

	var opts []SuggestOption
	for _, name := range names {
		entries := r.resp.Suggest[name]
		if len(entries) > 0 {
			opts = append(opts, entries[0].Options...)
		}
	}
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Score > opts[j].Score })

	seen := make(map[string]bool, len(opts))
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		if seen[o.Text] {
			continue
		}
		seen[o.Text] = true
		out = append(out, o.Text)
	}
	return out
}

// Highlights returns the highlighted fragments of a hit keyed by base field name.
func Highlights(h Hit) map[string]string {
	out := make(map[string]string, len(h.Highlight))
	for path, fragments := range h.Highlight {
		out[field.Base(path)] = strings.Join(fragments, " ")
	}
	return out
}
