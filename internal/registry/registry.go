// Package registry resolves model names to index handles.
package registry

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
)

// DefaultSize bounds the number of cached handles.
const DefaultSize = 256

// Definition declares one searchable model.
type Definition struct {
	Model   string
	Index   string
	Options index.Options
}

// Registry builds index handles on first use and keeps the most recent ones.
// Safe for concurrent use.
type Registry struct {
	defs  map[string]Definition
	cache *lru.Cache[string, *index.Index]
}

// New validates the definitions and creates a registry. size <= 0 means DefaultSize.
func New(defs []Definition, size int) (*Registry, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[string, *index.Index](size)
	if err != nil {
		return nil, fmt.Errorf("create index cache: %w", err)
	}

	r := &Registry{defs: make(map[string]Definition, len(defs)), cache: cache}
	for _, d := range defs {
		if d.Model == "" {
			return nil, fmt.Errorf("model name is required")
		}
		if _, dup := r.defs[d.Model]; dup {
			return nil, fmt.Errorf("duplicate model %q", d.Model)
		}
		if d.Options.Class == "" {
			d.Options.Class = d.Model
		}
		// fail at startup, not on the first search
		if _, err := index.New(d.Index, d.Options); err != nil {
			return nil, fmt.Errorf("model %q: %w", d.Model, err)
		}
		r.defs[d.Model] = d
	}
	return r, nil
}

// Get returns the index handle of a model.
func (r *Registry) Get(model string) (*index.Index, error) {
	if idx, ok := r.cache.Get(model); ok {
		return idx, nil
	}
	d, ok := r.defs[model]
	if !ok {
		return nil, fmt.Errorf("model %q: %w", model, domain.ErrNotFound)
	}
	idx, err := index.New(d.Index, d.Options)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", model, err)
	}
	r.cache.Add(model, idx)
	return idx, nil
}

// Models lists the registered model names, sorted.
func (r *Registry) Models() []string {
	out := make([]string, 0, len(r.defs))
	for m := range r.defs {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Evict drops a cached handle; the next Get rebuilds it.
func (r *Registry) Evict(model string) {
	r.cache.Remove(model)
}
