// Package request holds the typed option set of a search.
package request

import (
	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/search/field"
	"github.com/kailas-cloud/kickdex/internal/domain/search/filter"
)

// Operators combining the words of a term.
const (
	OperatorAnd = "and"
	OperatorOr  = "or"
)

// Options is everything a caller can ask of a search besides the term.
type Options struct {
	Fields   []field.Spec
	Match    field.Mode
	Operator string

	Where        filter.Where
	Misspellings *Misspellings
	Exclude      []string

	// Similar turns the search into a more_like_this query on Like, or on the term when Like is empty.
	Similar bool
	Like    string

	Conversions        []string
	DisableConversions bool
	ConversionsTerm    string

	Boost             string
	BoostBy           []BoostBy
	BoostWhere        []BoostWhere
	BoostByDistance   []DecayBoost
	BoostByRecency    []DecayBoost
	BoostByFieldValue []FieldValueBoost

	Aggs             []Agg
	DisableSmartAggs bool

	Page    int
	PerPage int
	Limit   int
	Offset  int
	Padding int

	Order  []Sort
	Select []string
	// SelectNone returns hits without _source.
	SelectNone bool
	// Load means hits are hydrated by the caller from its own store, so _source is not fetched.
	Load bool

	Highlight *Highlight
	Suggest   *Suggest

	Body        map[string]any
	BodyOptions map[string]any

	IndexName     []string
	IndicesBoost  []IndexBoost
	Routing       string
	Scroll        string
	RequestParams map[string]string

	Explain bool
	Profile bool

	Neural       []Neural
	NeuralSparse []NeuralSparse
	KNN          *KNN
	Rerank       *Rerank
}

// HasPagination reports whether the caller supplied any pagination option.
func (o *Options) HasPagination() bool {
	return o.Page != 0 || o.PerPage != 0 || o.Limit != 0 || o.Offset != 0 || o.Padding != 0
}

// BodyConflicts lists the options that cannot be combined with a raw Body.
func (o *Options) BodyConflicts() []string {
	if o.Body == nil {
		return nil
	}
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	add(len(o.Aggs) > 0, "aggs")
	add(o.Boost != "", "boost")
	add(len(o.BoostBy) > 0, "boost_by")
	add(len(o.BoostByDistance) > 0, "boost_by_distance")
	add(len(o.BoostByRecency) > 0, "boost_by_recency")
	add(len(o.BoostWhere) > 0, "boost_where")
	add(len(o.Conversions) > 0 || o.DisableConversions, "conversions")
	add(o.ConversionsTerm != "", "conversions_term")
	add(len(o.Exclude) > 0, "exclude")
	add(o.Explain, "explain")
	add(len(o.Fields) > 0, "fields")
	add(o.Highlight != nil, "highlight")
	add(len(o.IndicesBoost) > 0, "indices_boost")
	add(o.Match != "", "match")
	add(o.Misspellings != nil, "misspellings")
	add(o.Operator != "", "operator")
	add(len(o.Order) > 0, "order")
	add(o.Profile, "profile")
	add(len(o.Select) > 0 || o.SelectNone, "select")
	add(o.DisableSmartAggs, "smart_aggs")
	add(o.Suggest != nil, "suggest")
	add(len(o.Where) > 0, "where")
	return keys
}

// Validate checks values that the type system cannot.
func (o *Options) Validate() error {
	switch o.Operator {
	case "", OperatorAnd, OperatorOr:
	default:
		return domain.NewConfigurationError("operator must be %q or %q, got %q", OperatorAnd, OperatorOr, o.Operator)
	}
	if o.Match != "" && !o.Match.IsValid() {
		return domain.NewConfigurationError("unknown match mode %q", o.Match)
	}
	if o.Page < 0 || o.PerPage < 0 || o.Limit < 0 || o.Offset < 0 {
		return domain.NewConfigurationError("pagination options must not be negative")
	}
	if err := o.Where.Validate(); err != nil {
		return err
	}
	for _, a := range o.Aggs {
		if err := a.validate(); err != nil {
			return err
		}
	}
	for _, b := range o.BoostByDistance {
		if b.Origin == nil {
			return domain.NewConfigurationError("boost_by_distance requires :origin")
		}
	}
	for _, b := range o.BoostWhere {
		if err := b.Filter.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Misspellings configures fuzzy matching. A nil *Misspellings means enabled with defaults.
type Misspellings struct {
	Disabled       bool
	EditDistance   int
	PrefixLength   int
	Transpositions *bool
	MaxExpansions  int
	// Fields limits fuzzy matching to these base field names.
	Fields []string
	// Below defers fuzzy matching until an exact search returns fewer than Below hits.
	Below int
}

// Sort is one entry of the sort spec.
type Sort struct {
	Field     string
	Direction string
	Options   map[string]any
}

// Highlight configures hit highlighting.
type Highlight struct {
	Fields       []HighlightField
	Tag          string
	FragmentSize *int
	Encoder      string
}

// HighlightField is a field highlighted with backend options.
type HighlightField struct {
	Name    string
	Options map[string]any
}

// Suggest asks for phrase suggestions on the given fields (model suggest fields when empty).
type Suggest struct {
	Fields []string
}

// IndexBoost boosts hits coming from an index.
type IndexBoost struct {
	Index string
	Boost float64
}

// Neural is an OpenSearch neural clause on a vector field.
type Neural struct {
	Field     string
	ModelID   string
	QueryText string
	K         int
}

// NeuralSparse is an OpenSearch neural_sparse clause.
type NeuralSparse struct {
	Field     string
	ModelID   string
	QueryText string
}

// KNN is a k-nearest-neighbour clause. An empty Vector is filled by embedding the term.
type KNN struct {
	Field  string
	K      int
	Vector []float32
}

// Rerank enables OpenSearch result reranking through a search pipeline.
type Rerank struct {
	SearchPipeline string
}
