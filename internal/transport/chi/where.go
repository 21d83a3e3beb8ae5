package chi

import (
	"maps"
	"slices"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/search/filter"
)

// Logical keys of a JSON where object.
const (
	whereOr  = "_or"
	whereAnd = "_and"
	whereNot = "_not"
	whereRaw = "_raw"
)

// decodeWhere turns a JSON where object into a filter tree. Keys are visited in sorted order so the
// compiled query is stable.
//
//	{"price": {"gte": 10}, "brand": ["a", null], "_or": [{"in_stock": true}, {"backorder": true}]}
func decodeWhere(m map[string]any) (filter.Where, error) {
	w := make(filter.Where, 0, len(m))
	for _, key := range slices.Sorted(maps.Keys(m)) {
		v := m[key]
		switch key {
		case whereOr, whereAnd:
			groups, err := decodeGroups(key, v)
			if err != nil {
				return nil, err
			}
			if key == whereOr {
				w = append(w, filter.Or(groups...))
			} else {
				w = append(w, filter.And(groups...))
			}
		case whereNot:
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, domain.NewConfigurationError("%s expects an object", whereNot)
			}
			inner, err := decodeWhere(obj)
			if err != nil {
				return nil, err
			}
			w = append(w, filter.NotAll(inner))
		case whereRaw:
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, domain.NewConfigurationError("%s expects an object", whereRaw)
			}
			w = append(w, filter.Raw(obj))
		default:
			conds, err := decodeField(key, v)
			if err != nil {
				return nil, err
			}
			w = append(w, conds...)
		}
	}
	return w, nil
}

func decodeGroups(key string, v any) ([]filter.Where, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, domain.NewConfigurationError("%s expects an array of objects", key)
	}
	groups := make([]filter.Where, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, domain.NewConfigurationError("%s expects an array of objects", key)
		}
		g, err := decodeWhere(obj)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func decodeField(name string, v any) ([]filter.Condition, error) {
	switch v := v.(type) {
	case nil:
		return []filter.Condition{filter.Null(name)}, nil
	case []any:
		return []filter.Condition{filter.In(name, v...)}, nil
	case map[string]any:
		return decodeOperators(name, v)
	default:
		return []filter.Condition{filter.Eq(name, v)}, nil
	}
}

func decodeOperators(name string, ops map[string]any) ([]filter.Condition, error) {
	var out []filter.Condition
	for _, op := range slices.Sorted(maps.Keys(ops)) {
		v := ops[op]
		switch op {
		case "eq":
			out = append(out, filter.Eq(name, v))
		case "not":
			if list, ok := v.([]any); ok {
				out = append(out, filter.NotIn(name, list...))
			} else {
				out = append(out, filter.Not(name, v))
			}
		case "in":
			out = append(out, filter.In(name, toList(v)...))
		case "not_in":
			out = append(out, filter.NotIn(name, toList(v)...))
		case "all":
			out = append(out, filter.All(name, toList(v)...))
		case "gt":
			out = append(out, filter.Gt(name, v))
		case "gte":
			out = append(out, filter.Gte(name, v))
		case "lt":
			out = append(out, filter.Lt(name, v))
		case "lte":
			out = append(out, filter.Lte(name, v))
		case "prefix":
			out = append(out, filter.Prefix(name, cast.ToString(v)))
		case "regexp":
			out = append(out, filter.Regexp(name, cast.ToString(v)))
		case "like":
			out = append(out, filter.Like(name, cast.ToString(v)))
		case "ilike":
			out = append(out, filter.ILike(name, cast.ToString(v)))
		case "exists":
			if cast.ToBool(v) {
				out = append(out, filter.Exists(name))
			} else {
				out = append(out, filter.Null(name))
			}
		case "near":
			p, err := decodePoint(name, v)
			if err != nil {
				return nil, err
			}
			out = append(out, filter.Near(name, p, cast.ToString(ops["within"])))
		case "within":
			if _, ok := ops["near"]; !ok {
				return nil, domain.NewConfigurationError("within on %q requires near", name)
			}
		case "top_left", "top_right", "bottom_left", "bottom_right":
			// handled as a pair below
		case "geo_polygon":
			c, err := decodePolygon(name, v)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		case "geo_shape":
			c, err := decodeShape(name, v)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		default:
			return nil, domain.NewConfigurationError("Unknown where operator: %s", op)
		}
	}

	box, err := decodeBox(name, ops)
	if err != nil {
		return nil, err
	}
	if box != nil {
		out = append(out, *box)
	}
	return out, nil
}

func decodeBox(name string, ops map[string]any) (*filter.Condition, error) {
	pair := func(a, b string) (filter.Point, filter.Point, bool, error) {
		va, okA := ops[a]
		vb, okB := ops[b]
		if !okA && !okB {
			return filter.Point{}, filter.Point{}, false, nil
		}
		if !okA || !okB {
			return filter.Point{}, filter.Point{}, false,
				domain.NewConfigurationError("bounding box on %q needs %s and %s", name, a, b)
		}
		pa, err := decodePoint(name, va)
		if err != nil {
			return filter.Point{}, filter.Point{}, false, err
		}
		pb, err := decodePoint(name, vb)
		if err != nil {
			return filter.Point{}, filter.Point{}, false, err
		}
		return pa, pb, true, nil
	}

	tl, br, ok, err := pair("top_left", "bottom_right")
	if err != nil {
		return nil, err
	}
	if ok {
		c := filter.BoundingBox(name, tl, br)
		return &c, nil
	}
	tr, bl, ok, err := pair("top_right", "bottom_left")
	if err != nil {
		return nil, err
	}
	if ok {
		c := filter.BoundingBoxTopRight(name, tr, bl)
		return &c, nil
	}
	return nil, nil
}

func decodePolygon(name string, v any) (filter.Condition, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return filter.Condition{}, domain.NewConfigurationError("geo_polygon on %q expects {\"points\": [...]}", name)
	}
	raw, ok := obj["points"].([]any)
	if !ok {
		return filter.Condition{}, domain.NewConfigurationError("geo_polygon on %q expects {\"points\": [...]}", name)
	}
	points := make([]filter.Point, 0, len(raw))
	for _, r := range raw {
		p, err := decodePoint(name, r)
		if err != nil {
			return filter.Condition{}, err
		}
		points = append(points, p)
	}
	return filter.Polygon(name, points...), nil
}

func decodeShape(name string, v any) (filter.Condition, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return filter.Condition{}, domain.NewConfigurationError("geo_shape on %q expects an object", name)
	}
	s := filter.Shape{
		Type:        cast.ToString(obj["type"]),
		Coordinates: obj["coordinates"],
		Relation:    cast.ToString(obj["relation"]),
	}
	for k, val := range obj {
		switch k {
		case "type", "coordinates", "relation":
		default:
			if s.Extra == nil {
				s.Extra = make(map[string]any)
			}
			s.Extra[k] = val
		}
	}
	return filter.GeoShape(name, s), nil
}

// decodePoint accepts {"lat": .., "lon": ..} or [lat, lon].
func decodePoint(name string, v any) (filter.Point, error) {
	switch v := v.(type) {
	case map[string]any:
		lat, errLat := cast.ToFloat64E(v["lat"])
		lon, errLon := cast.ToFloat64E(v["lon"])
		if errLat != nil || errLon != nil {
			return filter.Point{}, domain.NewConfigurationError("invalid point for %q", name)
		}
		return filter.Point{Lat: lat, Lon: lon}, nil
	case []any:
		if len(v) != 2 {
			return filter.Point{}, domain.NewConfigurationError("invalid point for %q", name)
		}
		lat, errLat := cast.ToFloat64E(v[0])
		lon, errLon := cast.ToFloat64E(v[1])
		if errLat != nil || errLon != nil {
			return filter.Point{}, domain.NewConfigurationError("invalid point for %q", name)
		}
		return filter.Point{Lat: lat, Lon: lon}, nil
	}
	return filter.Point{}, domain.NewConfigurationError("invalid point for %q", name)
}

func toList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}
