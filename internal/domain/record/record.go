// Package record defines what the indexing pipeline needs from source-of-truth records.
package record

import "context"

// Record is an indexable source record.
type Record interface {
	SearchID() string
	SearchData() (map[string]any, error)
}

// Router is implemented by records that are routed to a shard.
type Router interface {
	SearchRouting() string
}

// Persistence is implemented by records that know their persistence state.
type Persistence interface {
	Persisted() bool
	Destroyed() bool
}

// Indexable is implemented by records that can opt out of indexing.
type Indexable interface {
	ShouldIndex() bool
}

// PartialSerializer is implemented by records that support partial updates.
type PartialSerializer interface {
	PartialData(method string) (map[string]any, error)
}

// Loader loads records by id. Missing ids are omitted from the result.
type Loader interface {
	Load(ctx context.Context, ids []string) ([]Record, error)
}

// Routing returns the record's routing key, or "" when it has none.
func Routing(r Record) string {
	if rt, ok := r.(Router); ok {
		return rt.SearchRouting()
	}
	return ""
}

// ShouldIndex reports whether r belongs in the index. Missing capabilities count as true.
func ShouldIndex(r Record) bool {
	if p, ok := r.(Persistence); ok && (!p.Persisted() || p.Destroyed()) {
		return false
	}
	return Wanted(r)
}

// Wanted reports the record's own opt-out only.
func Wanted(r Record) bool {
	if ix, ok := r.(Indexable); ok {
		return ix.ShouldIndex()
	}
	return true
}

// Ref stands in for a record that no longer exists; only its identity is known.
type Ref struct {
	ID      string
	Routing string
}

// SearchID returns the id.
func (r Ref) SearchID() string { return r.ID }

// SearchData returns nil; a Ref is only ever deleted.
func (r Ref) SearchData() (map[string]any, error) { return nil, nil }

// SearchRouting returns the routing key.
func (r Ref) SearchRouting() string { return r.Routing }

// Persisted is false: a Ref has no stored record behind it.
func (r Ref) Persisted() bool { return false }

// Destroyed is true.
func (r Ref) Destroyed() bool { return true }
