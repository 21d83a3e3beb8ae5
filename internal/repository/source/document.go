// Package source stores source-of-truth records as JSON documents and loads them for indexing.
package source

import (
	"maps"
	"strings"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/record"
)

// Compile-time checks: Document exposes every optional record capability.
var (
	_ record.Record            = (*Document)(nil)
	_ record.Router            = (*Document)(nil)
	_ record.Indexable         = (*Document)(nil)
	_ record.PartialSerializer = (*Document)(nil)
)

// Document is a stored record.
type Document struct {
	ID      string         `json:"id"`
	Routing string         `json:"routing,omitempty"`
	Data    map[string]any `json:"data"`
	// Skip keeps the record out of the index while it stays in the source.
	Skip bool `json:"skip,omitempty"`
}

// SearchID returns the record id.
func (d *Document) SearchID() string { return d.ID }

// SearchData returns a copy of the document data.
func (d *Document) SearchData() (map[string]any, error) { return maps.Clone(d.Data), nil }

// SearchRouting returns the routing key.
func (d *Document) SearchRouting() string { return d.Routing }

// ShouldIndex reports whether the record belongs in the index.
func (d *Document) ShouldIndex() bool { return !d.Skip }

// PartialData returns the subset of the data named by method, a comma-separated field list.
func (d *Document) PartialData(method string) (map[string]any, error) {
	out := map[string]any{}
	for _, f := range strings.Split(method, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if v, ok := d.Data[f]; ok {
			out[f] = v
		}
	}
	if len(out) == 0 {
		return nil, domain.NewConfigurationError("partial reindex %q selects no fields", method)
	}
	return out, nil
}
