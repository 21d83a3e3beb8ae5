package query

import (
	"strings"

	"github.com/kailas-cloud/kickdex/internal/domain/search/filter"
)

// compileWhere compiles a where tree into a list of filters (a conjunction). Range bounds on the same
// field merge into one range node.
func compileWhere(w filter.Where) []any {
	var (
		filters []any
		ranges  = map[string]obj{}
	)

	for _, c := range w {
		f := c.Field()
		if f == "id" {
			f = "_id"
		}

		switch c.Op() {
		case filter.OpOr:
			filters = append(filters, obj{"bool": obj{"should": groupFilters(c.Groups())}})
		case filter.OpAnd:
			filters = append(filters, obj{"bool": obj{"must": groupFilters(c.Groups())}})
		case filter.OpNotAll:
			var inner []any
			for _, g := range c.Groups() {
				inner = append(inner, compileWhere(g)...)
			}
			filters = append(filters, obj{"bool": obj{"must_not": inner}})
		case filter.OpRaw:
			filters = append(filters, c.RawFilter())

		case filter.OpEq:
			filters = append(filters, termFilter(f, c.Value()))
		case filter.OpIn:
			filters = append(filters, termsFilter(f, c.Values()))
		case filter.OpNot:
			if c.HasValues() {
				filters = append(filters, obj{"bool": obj{"must_not": termsFilter(f, c.Values())}})
			} else {
				filters = append(filters, obj{"bool": obj{"must_not": termFilter(f, c.Value())}})
			}
		case filter.OpAll:
			for _, v := range c.Values() {
				filters = append(filters, termFilter(f, v))
			}

		case filter.OpGt, filter.OpGte, filter.OpLt, filter.OpLte:
			if r, ok := ranges[f]; ok {
				r[string(c.Op())] = c.Value()
				continue
			}
			r := obj{string(c.Op()): c.Value()}
			ranges[f] = r
			filters = append(filters, obj{"range": obj{f: r}})

		case filter.OpPrefix:
			filters = append(filters, obj{"prefix": obj{f: obj{"value": c.Value()}}})
		case filter.OpRegexp:
			filters = append(filters, obj{"regexp": obj{f: obj{"value": c.Value()}}})
		case filter.OpLike, filter.OpILike:
			spec := obj{"value": likeToRegexp(c.Value().(string)), "flags": "NONE"}
			if c.Op() == filter.OpILike {
				spec["case_insensitive"] = true
			}
			filters = append(filters, obj{"regexp": obj{f: spec}})
		case filter.OpExists:
			filters = append(filters, obj{"exists": obj{"field": f}})

		case filter.OpNear:
			filters = append(filters, obj{"geo_distance": obj{
				f:          location(c.Points()[0]),
				"distance": c.Within(),
			}})
		case filter.OpBoundingBox:
			pts := c.Points()
			box := obj{"top_left": location(pts[0]), "bottom_right": location(pts[1])}
			if c.Corners() == filter.CornersTopRight {
				box = obj{"top_right": location(pts[0]), "bottom_left": location(pts[1])}
			}
			filters = append(filters, obj{"geo_bounding_box": obj{f: box}})
		case filter.OpPolygon:
			points := make([]any, len(c.Points()))
			for i, p := range c.Points() {
				points[i] = location(p)
			}
			filters = append(filters, obj{"geo_polygon": obj{f: obj{"points": points}}})
		case filter.OpShape:
			s := c.Shape()
			shape := obj{}
			for k, v := range s.Extra {
				shape[k] = v
			}
			shape["type"] = s.Type
			if s.Coordinates != nil {
				shape["coordinates"] = coordinates(s.Coordinates)
			}
			relation := s.Relation
			if relation == "" {
				relation = "intersects"
			}
			filters = append(filters, obj{"geo_shape": obj{f: obj{"relation": relation, "shape": shape}}})
		}
	}
	return filters
}

func groupFilters(groups []filter.Where) []any {
	out := make([]any, len(groups))
	for i, g := range groups {
		out[i] = obj{"bool": obj{"filter": compileWhere(g)}}
	}
	return out
}

func termFilter(f string, v any) any {
	if v == nil {
		return obj{"bool": obj{"must_not": obj{"exists": obj{"field": f}}}}
	}
	return obj{"term": obj{f: obj{"value": v}}}
}

func termsFilter(f string, values []any) any {
	compact := make([]any, 0, len(values))
	for _, v := range values {
		if v != nil {
			compact = append(compact, v)
		}
	}
	if len(compact) < len(values) {
		return obj{"bool": obj{"should": []any{
			termFilter(f, nil),
			obj{"terms": obj{f: compact}},
		}}}
	}
	return obj{"terms": obj{f: values}}
}

var likeReserved = []string{`\`, ".", "?", "+", "*", "|", "{", "}", "[", "]", "(", ")", `"`}

// likeToRegexp translates a SQL LIKE pattern into a Lucene regexp: % is any sequence, _ any character,
// and a backslash escapes either.
func likeToRegexp(pattern string) string {
	s := pattern
	for _, r := range likeReserved {
		s = strings.ReplaceAll(s, r, `\`+r)
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		escaped := i > 0 && s[i-1] == '\\'
		switch {
		case c == '%' && !escaped:
			b.WriteString(".*")
		case c == '_' && !escaped:
			b.WriteByte('.')
		default:
			b.WriteByte(c)
		}
	}

	out := strings.ReplaceAll(b.String(), `\%`, "%")
	return strings.ReplaceAll(out, `\_`, "_")
}

func location(p filter.Point) obj {
	return obj{"lat": p.Lat, "lon": p.Lon}
}

// coordinates converts points at any nesting depth into [lon, lat] pairs.
func coordinates(v any) any {
	switch c := v.(type) {
	case filter.Point:
		return []float64{c.Lon, c.Lat}
	case []filter.Point:
		out := make([]any, len(c))
		for i, p := range c {
			out[i] = coordinates(p)
		}
		return out
	case [][]filter.Point:
		out := make([]any, len(c))
		for i, ring := range c {
			out[i] = coordinates(ring)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, e := range c {
			out[i] = coordinates(e)
		}
		return out
	}
	return v
}
