package query

import (
	"fmt"
	"math"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/kickdex/internal/domain/search/result"
)

type obj = map[string]any

const (
	defaultPerPage    = 10_000
	deepPagingPerPage = 1_000_000_000
)

func (q *Query) prepare() error {
	o := &q.opts
	model := q.model()

	page := max(o.Page, 1)
	perPage := o.Limit
	if perPage == 0 {
		perPage = o.PerPage
	}
	if perPage == 0 {
		perPage = defaultPerPage
		if model.DeepPaging {
			perPage = deepPagingPerPage
		}
	}
	padding := max(o.Padding, 0)
	offset := o.Offset
	if offset == 0 {
		offset = (page-1)*perPage + padding
	}

	requestedPerPage := perPage
	if mrw := model.MaxResultWindow; mrw > 0 {
		if offset > mrw {
			offset = mrw
		}
		if offset+perPage > mrw {
			perPage = mrw - offset
		}
	}

	var (
		payload obj
		fuzzy   bool
	)
	if o.Body != nil {
		payload = cloneMap(o.Body)
	} else {
		var err error
		payload, fuzzy, err = q.compile()
		if err != nil {
			return err
		}
	}

	if o.Body == nil || o.HasPagination() {
		payload["size"] = perPage
		if offset > 0 {
			payload["from"] = offset
		}
	}

	if model.DeepPaging || cast.ToBool(o.BodyOptions["track_total_hits"]) {
		payload["track_total_hits"] = true
	}

	if o.BodyOptions != nil {
		payload = deepMerge(payload, cloneMap(o.BodyOptions))
	}

	if o.Scroll != "" && isMatchAll(payload["query"]) {
		if _, ok := payload["sort"]; !ok {
			payload["sort"] = []any{"_doc"}
		}
	}

	q.body = payload
	q.params = q.buildParams()
	q.meta = result.Meta{Page: page, PerPage: requestedPerPage, Padding: padding, Misspellings: fuzzy}
	return nil
}

// compile builds the payload of a search without a raw body. It reports whether fuzzy matching is on.
func (q *Query) compile() (obj, bool, error) {
	o := &q.opts
	all := q.term == "*"

	var (
		query   any
		mustNot []any
		should  []any
		fuzzy   bool
	)

	switch {
	case o.Similar:
		mlt, err := q.moreLikeThis()
		if err != nil {
			return nil, false, err
		}
		query = mlt
	case all && len(o.Exclude) == 0:
		query = matchAll()
	default:
		policy, err := q.misspellings()
		if err != nil {
			return nil, false, err
		}
		fuzzy = policy.enabled

		groups, excludes := q.fieldGroups(policy)
		groups = append(groups, q.vectorGroups()...)
		mustNot = excludes

		if all {
			query = matchAll()
		} else {
			should = q.conversions()
			query = obj{"bool": obj{"should": disMax(groups)}}
		}
	}

	payload := obj{}

	filters := compileWhere(o.Where)
	var post []any
	if len(o.Aggs) > 0 {
		payload["aggs"], filters, post = q.aggregations(filters)
	}
	if len(post) > 0 {
		payload["post_filter"] = obj{"bool": obj{"filter": post}}
	}

	custom, multiply := q.boosts()
	q.rerank(payload)

	payload["query"] = buildQuery(query, filters, should, mustNot, custom, multiply)

	if o.Explain {
		payload["explain"] = true
	}
	if o.Profile {
		payload["profile"] = true
	}
	if len(o.Order) > 0 {
		payload["sort"] = q.order()
	}
	if len(o.IndicesBoost) > 0 {
		boosts := make([]any, len(o.IndicesBoost))
		for i, b := range o.IndicesBoost {
			boosts[i] = obj{b.Index: b.Boost}
		}
		payload["indices_boost"] = boosts
	}
	if o.Suggest != nil {
		s, err := q.suggest()
		if err != nil {
			return nil, false, err
		}
		payload["suggest"] = s
	}
	if o.Highlight != nil {
		payload["highlight"] = q.highlight()
	}

	// the backend gives up shortly after the client does
	ms := math.Round((q.settings.SearchTimeout.Seconds() + 1) * 1000)
	payload["timeout"] = fmt.Sprintf("%dms", int64(ms))

	switch {
	case len(o.Select) > 0:
		payload["_source"] = o.Select
	case o.SelectNone, o.Load:
		payload["_source"] = false
	}

	return payload, fuzzy, nil
}

func buildQuery(query any, filters, should, mustNot, custom, multiply []any) any {
	if len(filters) > 0 || len(mustNot) > 0 || len(should) > 0 {
		b := obj{}
		if query != nil {
			b["must"] = query
		}
		if len(filters) > 0 {
			b["filter"] = filters
		}
		if len(mustNot) > 0 {
			b["must_not"] = mustNot
		}
		if len(should) > 0 {
			b["should"] = should
		}
		query = obj{"bool": b}
	}

	if len(custom) > 0 {
		query = obj{"function_score": obj{
			"functions":  custom,
			"query":      query,
			"score_mode": "sum",
		}}
	}
	if len(multiply) > 0 {
		query = obj{"function_score": obj{
			"functions":  multiply,
			"query":      query,
			"score_mode": "multiply",
		}}
	}
	return query
}

func matchAll() obj { return obj{"match_all": obj{}} }

func isMatchAll(v any) bool {
	m, ok := v.(obj)
	if !ok || len(m) != 1 {
		return false
	}
	inner, ok := m["match_all"].(obj)
	return ok && len(inner) == 0
}

func disMax(groups [][]any) []any {
	out := make([]any, len(groups))
	for i, g := range groups {
		out[i] = obj{"dis_max": obj{"queries": g}}
	}
	return out
}
