package query

import (
	"maps"
	"reflect"

	"github.com/kailas-cloud/kickdex/internal/domain/search/filter"
	"github.com/kailas-cloud/kickdex/internal/domain/search/request"
)

// aggregations compiles the requested aggregations. With smart aggs each aggregation is filtered by every
// where condition except the one on its own field; top-level filters an aggregation does not share move
// to the post filter so facet counts ignore them.
func (q *Query) aggregations(filters []any) (aggs obj, kept, post []any) {
	o := &q.opts
	aggs = obj{}
	kept = filters

	for _, a := range o.Aggs {
		body := aggBody(a)

		var where filter.Where
		if !o.DisableSmartAggs {
			where = o.Where.Without(a.Name)
		}
		aggFilters := compileWhere(where.Merge(a.Where))

		remaining := kept[:0:0]
		for _, f := range kept {
			if containsFilter(aggFilters, f) {
				remaining = append(remaining, f)
				continue
			}
			post = append(post, f)
		}
		kept = remaining

		if len(aggFilters) > 0 {
			body = obj{
				"filter": obj{"bool": obj{"must": aggFilters}},
				"aggs":   obj{a.Name: body},
			}
		}
		aggs[a.Name] = body
	}
	return aggs, kept, post
}

func aggBody(a request.Agg) obj {
	switch {
	case a.Ranges != nil:
		return obj{"range": merged(obj{"field": a.TargetField(), "ranges": a.Ranges}, a.Extra)}
	case a.DateRanges != nil:
		return obj{"date_range": merged(obj{"field": a.TargetField(), "ranges": a.DateRanges}, a.Extra)}
	case a.DateHistogram != nil:
		return merged(obj{"date_histogram": a.DateHistogram}, a.Extra)
	case a.Metric != "":
		return merged(obj{string(a.Metric): obj{"field": a.TargetField()}}, a.Extra)
	}
	size := a.Limit
	if size == 0 {
		size = request.DefaultAggLimit
	}
	return obj{"terms": merged(obj{"field": a.TargetField(), "size": size}, a.Extra)}
}

func merged(base, extra obj) obj {
	out := maps.Clone(base)
	maps.Copy(out, extra)
	return out
}

func containsFilter(list []any, f any) bool {
	for _, c := range list {
		if reflect.DeepEqual(c, f) {
			return true
		}
	}
	return false
}
