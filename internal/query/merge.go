package query

import (
	"maps"
	"slices"

	"github.com/spf13/cast"
)

// deepMerge merges src into dst: lists concatenate, numbers add up, objects merge recursively and any
// other value replaces the existing one.
func deepMerge(dst, src obj) obj {
	if dst == nil {
		dst = obj{}
	}
	for k, v := range src {
		dst[k] = mergeValue(dst[k], v)
	}
	return dst
}

func mergeValue(cur, v any) any {
	switch val := v.(type) {
	case []any:
		return append(toList(cur), val...)
	case []string:
		out := toList(cur)
		for _, s := range val {
			out = append(out, s)
		}
		return out
	case int:
		return cast.ToInt(cur) + val
	case int64:
		return cast.ToInt64(cur) + val
	case float64:
		return cast.ToFloat64(cur) + val
	case obj:
		m, _ := cur.(obj)
		return deepMerge(m, val)
	}
	return v
}

func toList(v any) []any {
	switch l := v.(type) {
	case []any:
		return slices.Clone(l)
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	}
	return nil
}

// cloneMap deep-copies nested objects and lists so the caller's maps are never mutated.
func cloneMap(m obj) obj {
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case obj:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
