// Package index holds the per-model search settings and the index handle built from them.
package index

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/kickdex/internal/domain/search/field"
)

var nameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// Callbacks is how record changes reach the index.
type Callbacks string

const (
	// CallbacksInline writes to the index in the caller's request.
	CallbacksInline Callbacks = "inline"
	// CallbacksAsync dispatches a background reindex job per change.
	CallbacksAsync Callbacks = "async"
	// CallbacksQueue pushes changed ids to the reindex queue.
	CallbacksQueue Callbacks = "queue"
	// CallbacksDisabled skips indexing on change.
	CallbacksDisabled Callbacks = "disabled"
)

// IsValid checks if the callbacks mode is supported.
func (c Callbacks) IsValid() bool {
	switch c {
	case CallbacksInline, CallbacksAsync, CallbacksQueue, CallbacksDisabled:
		return true
	}
	return false
}

// DefaultBatchSize is the import and queue drain chunk size.
const DefaultBatchSize = 1000

// Options are the search settings of a model.
type Options struct {
	// Class is the model name carried in job payloads and error hints.
	Class string

	DefaultFields []field.Spec
	Searchable    []string
	Match         field.Mode
	CatchAll      bool
	ModeFields    map[field.Mode][]string

	// Language selects the analyzer set; some languages have no secondary search analyzer.
	Language string
	// DisableWordBoost turns off the exact-word boost around word_* clauses.
	DisableWordBoost bool

	Suggest     []string
	Conversions []string

	MaxResultWindow int
	DeepPaging      bool

	BatchSize int
	Callbacks Callbacks
}

// FieldDefaults returns the settings the field resolver consults.
func (o Options) FieldDefaults() field.Defaults {
	return field.Defaults{
		DefaultFields: o.DefaultFields,
		Searchable:    o.Searchable,
		Match:         o.Match,
		CatchAll:      o.CatchAll,
		ModeFields:    o.ModeFields,
	}
}

// Index is a handle on one backend index (immutable value object).
type Index struct {
	name string
	opts Options
}

// New validates and creates an Index.
// Name: lowercase, starts with a letter or digit, then letters, digits, "_", "." or "-".
func New(name string, opts Options) (*Index, error) {
	if name == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(name) > 255 {
		return nil, fmt.Errorf("index name too long (max 255)")
	}
	if !nameRegex.MatchString(name) {
		return nil, fmt.Errorf("invalid index name %q", name)
	}
	if opts.Match != "" && !opts.Match.IsValid() {
		return nil, fmt.Errorf("invalid match mode %q", opts.Match)
	}
	if opts.Callbacks == "" {
		opts.Callbacks = CallbacksInline
	}
	if !opts.Callbacks.IsValid() {
		return nil, fmt.Errorf("invalid callbacks %q", opts.Callbacks)
	}
	if opts.BatchSize < 0 || opts.MaxResultWindow < 0 {
		return nil, fmt.Errorf("batch size and max result window must not be negative")
	}
	return &Index{name: name, opts: opts}, nil
}

// Name returns the backend index name.
func (i *Index) Name() string { return i.name }

// Options returns the model settings.
func (i *Index) Options() Options { return i.opts }

// Class returns the model name, "" for an index not bound to a model.
func (i *Index) Class() string { return i.opts.Class }

// BatchSize returns the configured batch size or DefaultBatchSize.
func (i *Index) BatchSize() int {
	if i.opts.BatchSize > 0 {
		return i.opts.BatchSize
	}
	return DefaultBatchSize
}

// ReindexCommand is the hint shown when the index is missing or has a stale mapping.
func (i *Index) ReindexCommand() string {
	if i.opts.Class == "" {
		return "reindex"
	}
	return i.opts.Class + ".reindex"
}
