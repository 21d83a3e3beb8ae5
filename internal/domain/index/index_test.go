package index

import (
	"testing"

	"github.com/kailas-cloud/kickdex/internal/domain/search/field"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		index   string
		opts    Options
		wantErr bool
	}{
		{"valid", "products_development", Options{Class: "Product"}, false},
		{"empty", "", Options{}, true},
		{"uppercase", "Products", Options{}, true},
		{"leading dash", "-products", Options{}, true},
		{"bad match", "products", Options{Match: "fuzzy"}, true},
		{"bad callbacks", "products", Options{Callbacks: "later"}, true},
		{"negative batch", "products", Options{BatchSize: -1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.index, tc.opts)
			if (err != nil) != tc.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	idx, err := New("products", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if idx.BatchSize() != DefaultBatchSize {
		t.Errorf("BatchSize() = %d", idx.BatchSize())
	}
	if idx.Options().Callbacks != CallbacksInline {
		t.Errorf("Callbacks = %q", idx.Options().Callbacks)
	}
	if idx.ReindexCommand() != "reindex" {
		t.Errorf("ReindexCommand() = %q", idx.ReindexCommand())
	}
}

func TestReindexCommand(t *testing.T) {
	idx, _ := New("products", Options{Class: "Product"})
	if got := idx.ReindexCommand(); got != "Product.reindex" {
		t.Errorf("ReindexCommand() = %q", got)
	}
}

func TestFieldDefaults(t *testing.T) {
	opts := Options{
		Searchable: []string{"name"},
		Match:      field.WordStart,
		CatchAll:   true,
	}
	d := opts.FieldDefaults()
	if d.Match != field.WordStart || !d.CatchAll || len(d.Searchable) != 1 {
		t.Errorf("FieldDefaults() = %+v", d)
	}
}
