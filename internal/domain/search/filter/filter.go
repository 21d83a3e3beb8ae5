// Package filter models where-clauses as a typed tree of conditions.
package filter

import (
	"reflect"

	"github.com/kailas-cloud/kickdex/internal/domain"
)

// Op is the operator of a condition.
type Op string

// Field operators.
const (
	OpEq          Op = "eq"
	OpIn          Op = "in"
	OpNot         Op = "not"
	OpAll         Op = "all"
	OpGt          Op = "gt"
	OpGte         Op = "gte"
	OpLt          Op = "lt"
	OpLte         Op = "lte"
	OpPrefix      Op = "prefix"
	OpRegexp      Op = "regexp"
	OpLike        Op = "like"
	OpILike       Op = "ilike"
	OpExists      Op = "exists"
	OpNear        Op = "near"
	OpBoundingBox Op = "bounding_box"
	OpPolygon     Op = "geo_polygon"
	OpShape       Op = "geo_shape"
)

// Logical operators.
const (
	OpOr     Op = "or"
	OpAnd    Op = "and"
	OpNotAll Op = "not_all"
	OpRaw    Op = "raw"
)

// DefaultWithin is the radius used by Near when none is given.
const DefaultWithin = "50mi"

// Point is a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Shape is a geo_shape predicate. Coordinates may hold Points (any nesting) or raw [lon, lat] arrays.
type Shape struct {
	Type        string
	Coordinates any
	Relation    string
	Extra       map[string]any
}

// Box corner pairs.
const (
	CornersTopLeft  = "top_left"
	CornersTopRight = "top_right"
)

// Condition is one where-clause entry.
type Condition struct {
	field   string
	op      Op
	value   any
	values  []any
	within  string
	corners string
	points  []Point
	shape   *Shape
	groups  []Where
	raw     map[string]any
}

// Where is an ordered conjunction of conditions.
type Where []Condition

// Eq matches a scalar value; a nil value matches documents without the field.
func Eq(field string, value any) Condition { return Condition{field: field, op: OpEq, value: value} }

// Null matches documents without the field.
func Null(field string) Condition { return Eq(field, nil) }

// In matches any of the values; a nil entry also matches documents without the field.
func In(field string, values ...any) Condition {
	return Condition{field: field, op: OpIn, values: values}
}

// Not negates an equality (scalar, nil or list).
func Not(field string, value any) Condition { return Condition{field: field, op: OpNot, value: value} }

// NotIn negates a list equality.
func NotIn(field string, values ...any) Condition {
	return Condition{field: field, op: OpNot, values: values}
}

// All requires every value to be present.
func All(field string, values ...any) Condition {
	return Condition{field: field, op: OpAll, values: values}
}

// Gt is a strict lower bound.
func Gt(field string, v any) Condition { return Condition{field: field, op: OpGt, value: v} }

// Gte is an inclusive lower bound.
func Gte(field string, v any) Condition { return Condition{field: field, op: OpGte, value: v} }

// Lt is a strict upper bound.
func Lt(field string, v any) Condition { return Condition{field: field, op: OpLt, value: v} }

// Lte is an inclusive upper bound.
func Lte(field string, v any) Condition { return Condition{field: field, op: OpLte, value: v} }

// Between expands to Gte and Lte on the same field.
func Between(field string, lo, hi any) []Condition {
	return []Condition{Gte(field, lo), Lte(field, hi)}
}

// Prefix matches values starting with p.
func Prefix(field, p string) Condition { return Condition{field: field, op: OpPrefix, value: p} }

// Regexp matches a backend regular expression.
func Regexp(field, expr string) Condition { return Condition{field: field, op: OpRegexp, value: expr} }

// Like matches an SQL LIKE pattern.
func Like(field, pattern string) Condition { return Condition{field: field, op: OpLike, value: pattern} }

// ILike matches an SQL LIKE pattern case-insensitively.
func ILike(field, pattern string) Condition { return Condition{field: field, op: OpILike, value: pattern} }

// Exists matches documents that have the field.
func Exists(field string) Condition { return Condition{field: field, op: OpExists, value: true} }

// Near matches points within a radius; an empty radius means DefaultWithin.
func Near(field string, origin Point, within string) Condition {
	return Condition{field: field, op: OpNear, points: []Point{origin}, within: within}
}

// BoundingBox matches points inside the box given by its top-left and bottom-right corners.
func BoundingBox(field string, topLeft, bottomRight Point) Condition {
	return Condition{field: field, op: OpBoundingBox, corners: CornersTopLeft, points: []Point{topLeft, bottomRight}}
}

// BoundingBoxTopRight matches points inside the box given by its top-right and bottom-left corners.
func BoundingBoxTopRight(field string, topRight, bottomLeft Point) Condition {
	return Condition{field: field, op: OpBoundingBox, corners: CornersTopRight, points: []Point{topRight, bottomLeft}}
}

// Polygon matches points inside the polygon.
func Polygon(field string, points ...Point) Condition {
	return Condition{field: field, op: OpPolygon, points: points}
}

// GeoShape matches indexed shapes against s.
func GeoShape(field string, s Shape) Condition {
	return Condition{field: field, op: OpShape, shape: &s}
}

// Or matches when any group matches.
func Or(groups ...Where) Condition { return Condition{op: OpOr, groups: groups} }

// And matches when every group matches.
func And(groups ...Where) Condition { return Condition{op: OpAnd, groups: groups} }

// NotAll matches when the group does not match.
func NotAll(w Where) Condition { return Condition{op: OpNotAll, groups: []Where{w}} }

// Raw passes a backend filter through untouched.
func Raw(filter map[string]any) Condition { return Condition{op: OpRaw, raw: filter} }

// Field returns the field name ("" for logical conditions).
func (c Condition) Field() string { return c.field }

// Op returns the operator.
func (c Condition) Op() Op { return c.op }

// Value returns the scalar operand.
func (c Condition) Value() any { return c.value }

// Values returns the list operand.
func (c Condition) Values() []any { return c.values }

// HasValues reports whether the condition carries a list operand.
func (c Condition) HasValues() bool { return c.values != nil }

// Within returns the Near radius.
func (c Condition) Within() string {
	if c.within == "" {
		return DefaultWithin
	}
	return c.within
}

// Corners returns which corner pair a bounding box uses.
func (c Condition) Corners() string { return c.corners }

// Points returns geo points (origin, box corners or polygon vertices).
func (c Condition) Points() []Point { return c.points }

// Shape returns the geo_shape operand.
func (c Condition) Shape() *Shape { return c.shape }

// Groups returns nested where groups of a logical condition.
func (c Condition) Groups() []Where { return c.groups }

// RawFilter returns the passthrough filter.
func (c Condition) RawFilter() map[string]any { return c.raw }

// IsLogical reports whether the condition combines nested groups.
func (c Condition) IsLogical() bool {
	return c.op == OpOr || c.op == OpAnd || c.op == OpNotAll || c.op == OpRaw
}

// IsRange reports whether the condition is a range bound.
func (c Condition) IsRange() bool {
	return c.op == OpGt || c.op == OpGte || c.op == OpLt || c.op == OpLte
}

// New builds a Where from conditions, flattening Between results.
func New(conds ...any) Where {
	w := make(Where, 0, len(conds))
	for _, c := range conds {
		switch v := c.(type) {
		case Condition:
			w = append(w, v)
		case []Condition:
			w = append(w, v...)
		case Where:
			w = append(w, v...)
		}
	}
	return w
}

// IsEmpty reports whether w has no conditions.
func (w Where) IsEmpty() bool { return len(w) == 0 }

// Without drops top-level conditions on field.
func (w Where) Without(field string) Where {
	out := make(Where, 0, len(w))
	for _, c := range w {
		if c.field == field && !c.IsLogical() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Merge returns the conditions of w followed by those of other.
func (w Where) Merge(other Where) Where {
	out := make(Where, 0, len(w)+len(other))
	out = append(out, w...)
	return append(out, other...)
}

// Validate checks operands recursively.
func (w Where) Validate() error {
	for _, c := range w {
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c Condition) validate() error {
	if c.IsLogical() {
		if c.op == OpRaw && c.raw == nil {
			return domain.NewConfigurationError("raw filter is empty")
		}
		for _, g := range c.groups {
			if err := g.Validate(); err != nil {
				return err
			}
		}
		return nil
	}

	if c.field == "" {
		return domain.NewConfigurationError("filter field is required for %s", c.op)
	}

	switch c.op {
	case OpEq, OpNot, OpGt, OpGte, OpLt, OpLte:
		if !c.HasValues() && isComposite(c.value) {
			return domain.NewConfigurationError("can't cast %T for field %q", c.value, c.field)
		}
	case OpIn, OpAll:
		for _, v := range c.values {
			if isComposite(v) {
				return domain.NewConfigurationError("can't cast %T for field %q", v, c.field)
			}
		}
	case OpNear:
		if len(c.points) != 1 {
			return domain.NewConfigurationError("near filter on %q needs an origin", c.field)
		}
	case OpBoundingBox:
		if len(c.points) != 2 {
			return domain.NewConfigurationError("bounding box on %q needs two corners", c.field)
		}
	case OpPolygon:
		if len(c.points) < 3 {
			return domain.NewConfigurationError("polygon on %q needs at least three points", c.field)
		}
	case OpShape:
		if c.shape == nil || c.shape.Type == "" {
			return domain.NewConfigurationError("geo_shape on %q needs a type", c.field)
		}
	case OpPrefix, OpRegexp, OpLike, OpILike, OpExists:
	default:
		return domain.NewConfigurationError("Unknown where operator: %s", c.op)
	}
	return nil
}

func isComposite(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		// time.Time is a struct but encodes as a scalar
		_, ok := v.(interface{ MarshalJSON() ([]byte, error) })
		return !ok
	}
	return false
}
