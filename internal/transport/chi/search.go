package chi

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/search/field"
	"github.com/kailas-cloud/kickdex/internal/domain/search/request"
	"github.com/kailas-cloud/kickdex/internal/domain/search/result"
)

// SearchRequest is the JSON body of a search.
type SearchRequest struct {
	Term     string           `json:"term"`
	Fields   []any            `json:"fields,omitempty"`
	Match    string           `json:"match,omitempty"`
	Operator string           `json:"operator,omitempty"`
	Where    map[string]any   `json:"where,omitempty"`
	Exclude  []string         `json:"exclude,omitempty"`
	Similar  bool             `json:"similar,omitempty"`
	Like     string           `json:"like,omitempty"`
	Boost    string           `json:"boost,omitempty"`
	BoostBy  []BoostByBody    `json:"boost_by,omitempty"`
	Aggs     []AggBody        `json:"aggs,omitempty"`
	Order    []map[string]any `json:"order,omitempty"`
	Select   []string         `json:"select,omitempty"`
	Load     bool             `json:"load,omitempty"`

	// Misspellings is false or an object.
	Misspellings json.RawMessage `json:"misspellings,omitempty"`
	// Suggest is true or a list of fields.
	Suggest json.RawMessage `json:"suggest,omitempty"`

	Conversions        []string `json:"conversions,omitempty"`
	DisableConversions bool     `json:"disable_conversions,omitempty"`
	ConversionsTerm    string   `json:"conversions_term,omitempty"`
	DisableSmartAggs   bool     `json:"disable_smart_aggs,omitempty"`

	Page    int `json:"page,omitempty"`
	PerPage int `json:"per_page,omitempty"`
	Limit   int `json:"limit,omitempty"`
	Offset  int `json:"offset,omitempty"`
	Padding int `json:"padding,omitempty"`

	Highlight *HighlightBody `json:"highlight,omitempty"`
	KNN       *KNNBody       `json:"knn,omitempty"`

	Body          map[string]any    `json:"body,omitempty"`
	BodyOptions   map[string]any    `json:"body_options,omitempty"`
	IndexName     []string          `json:"index_name,omitempty"`
	Routing       string            `json:"routing,omitempty"`
	Scroll        string            `json:"scroll,omitempty"`
	RequestParams map[string]string `json:"request_params,omitempty"`
	Explain       bool              `json:"explain,omitempty"`
	Profile       bool              `json:"profile,omitempty"`
}

// BoostByBody is one boost_by entry.
type BoostByBody struct {
	Field    string   `json:"field"`
	Factor   float64  `json:"factor,omitempty"`
	Missing  *float64 `json:"missing,omitempty"`
	Multiply bool     `json:"multiply,omitempty"`
}

// AggBody is one aggregation.
type AggBody struct {
	Name          string           `json:"name"`
	Field         string           `json:"field,omitempty"`
	Limit         int              `json:"limit,omitempty"`
	Where         map[string]any   `json:"where,omitempty"`
	Ranges        []map[string]any `json:"ranges,omitempty"`
	DateRanges    []map[string]any `json:"date_ranges,omitempty"`
	DateHistogram map[string]any   `json:"date_histogram,omitempty"`
	Metric        string           `json:"metric,omitempty"`
	Extra         map[string]any   `json:"extra,omitempty"`
}

// HighlightBody configures highlighting.
type HighlightBody struct {
	Fields       []string `json:"fields,omitempty"`
	Tag          string   `json:"tag,omitempty"`
	FragmentSize *int     `json:"fragment_size,omitempty"`
	Encoder      string   `json:"encoder,omitempty"`
}

// KNNBody is a kNN clause; an empty vector means "embed the term".
type KNNBody struct {
	Field  string    `json:"field"`
	K      int       `json:"k,omitempty"`
	Vector []float32 `json:"vector,omitempty"`
}

type misspellingsBody struct {
	EditDistance   int      `json:"edit_distance,omitempty"`
	PrefixLength   int      `json:"prefix_length,omitempty"`
	Transpositions *bool    `json:"transpositions,omitempty"`
	MaxExpansions  int      `json:"max_expansions,omitempty"`
	Fields         []string `json:"fields,omitempty"`
	Below          int      `json:"below,omitempty"`
}

// Options converts the body into the typed option set.
func (b *SearchRequest) Options() (request.Options, error) {
	opts := request.Options{
		Match:              field.Mode(b.Match),
		Operator:           b.Operator,
		Exclude:            b.Exclude,
		Similar:            b.Similar,
		Like:               b.Like,
		Boost:              b.Boost,
		Conversions:        b.Conversions,
		DisableConversions: b.DisableConversions,
		ConversionsTerm:    b.ConversionsTerm,
		DisableSmartAggs:   b.DisableSmartAggs,
		Page:               b.Page,
		PerPage:            b.PerPage,
		Limit:              b.Limit,
		Offset:             b.Offset,
		Padding:            b.Padding,
		Select:             b.Select,
		Load:               b.Load,
		Body:               b.Body,
		BodyOptions:        b.BodyOptions,
		IndexName:          b.IndexName,
		Routing:            b.Routing,
		Scroll:             b.Scroll,
		RequestParams:      b.RequestParams,
		Explain:            b.Explain,
		Profile:            b.Profile,
	}

	fields, err := decodeFields(b.Fields)
	if err != nil {
		return request.Options{}, err
	}
	opts.Fields = fields

	if b.Where != nil {
		if opts.Where, err = decodeWhere(b.Where); err != nil {
			return request.Options{}, err
		}
	}
	if opts.Misspellings, err = decodeMisspellings(b.Misspellings); err != nil {
		return request.Options{}, err
	}
	if opts.Suggest, err = decodeSuggest(b.Suggest); err != nil {
		return request.Options{}, err
	}

	for _, bb := range b.BoostBy {
		opts.BoostBy = append(opts.BoostBy, request.BoostBy(bb))
	}
	for _, a := range b.Aggs {
		agg := request.Agg{
			Name:          a.Name,
			Field:         a.Field,
			Limit:         a.Limit,
			Ranges:        a.Ranges,
			DateRanges:    a.DateRanges,
			DateHistogram: a.DateHistogram,
			Metric:        request.Metric(a.Metric),
			Extra:         a.Extra,
		}
		if a.Where != nil {
			if agg.Where, err = decodeWhere(a.Where); err != nil {
				return request.Options{}, err
			}
		}
		opts.Aggs = append(opts.Aggs, agg)
	}
	for _, o := range b.Order {
		sorts, err := decodeOrder(o)
		if err != nil {
			return request.Options{}, err
		}
		opts.Order = append(opts.Order, sorts...)
	}
	if h := b.Highlight; h != nil {
		hl := &request.Highlight{Tag: h.Tag, FragmentSize: h.FragmentSize, Encoder: h.Encoder}
		for _, f := range h.Fields {
			hl.Fields = append(hl.Fields, request.HighlightField{Name: f})
		}
		opts.Highlight = hl
	}
	if b.KNN != nil {
		opts.KNN = &request.KNN{Field: b.KNN.Field, K: b.KNN.K, Vector: b.KNN.Vector}
	}
	return opts, nil
}

// decodeFields accepts "name", "name^2" or {"name": "word_start"}.
func decodeFields(raw []any) ([]field.Spec, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	specs := make([]field.Spec, 0, len(raw))
	for _, f := range raw {
		switch f := f.(type) {
		case string:
			specs = append(specs, field.Named(f))
		case map[string]any:
			for _, name := range slices.Sorted(maps.Keys(f)) {
				mode := field.Mode(cast.ToString(f[name]))
				if !mode.IsValid() {
					return nil, domain.NewConfigurationError("Unknown match mode %q for field %q", mode, name)
				}
				specs = append(specs, field.WithMode(name, mode))
			}
		default:
			return nil, domain.NewConfigurationError("invalid field %v", f)
		}
	}
	return specs, nil
}

func decodeMisspellings(raw json.RawMessage) (*request.Misspellings, error) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "true" {
		return nil, nil
	}
	if string(raw) == "false" {
		return &request.Misspellings{Disabled: true}, nil
	}
	var m misspellingsBody
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, domain.NewConfigurationError("misspellings must be false or an object")
	}
	return &request.Misspellings{
		EditDistance:   m.EditDistance,
		PrefixLength:   m.PrefixLength,
		Transpositions: m.Transpositions,
		MaxExpansions:  m.MaxExpansions,
		Fields:         m.Fields,
		Below:          m.Below,
	}, nil
}

func decodeSuggest(raw json.RawMessage) (*request.Suggest, error) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "false" {
		return nil, nil
	}
	if string(raw) == "true" {
		return &request.Suggest{}, nil
	}
	var fields []string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, domain.NewConfigurationError("suggest must be true or a list of fields")
	}
	return &request.Suggest{Fields: fields}, nil
}

// decodeOrder accepts {"price": "desc"} or {"price": {"order": "desc", "unmapped_type": "long"}}.
func decodeOrder(o map[string]any) ([]request.Sort, error) {
	sorts := make([]request.Sort, 0, len(o))
	for _, name := range slices.Sorted(maps.Keys(o)) {
		switch v := o[name].(type) {
		case string:
			sorts = append(sorts, request.Sort{Field: name, Direction: strings.ToLower(v)})
		case map[string]any:
			opts := maps.Clone(v)
			dir := cast.ToString(opts["order"])
			delete(opts, "order")
			if len(opts) == 0 {
				opts = nil
			}
			sorts = append(sorts, request.Sort{Field: name, Direction: strings.ToLower(dir), Options: opts})
		default:
			return nil, domain.NewConfigurationError("invalid order for %q", name)
		}
	}
	return sorts, nil
}

// SearchResponse is the JSON rendering of results.
type SearchResponse struct {
	Total        int            `json:"total"`
	Took         int            `json:"took"`
	Page         int            `json:"page"`
	PerPage      int            `json:"per_page"`
	TotalPages   int            `json:"total_pages"`
	Misspellings bool           `json:"misspellings"`
	Hits         []HitBody      `json:"hits"`
	Aggs         map[string]any `json:"aggs,omitempty"`
	Suggestions  []string       `json:"suggestions,omitempty"`
	ScrollID     string         `json:"scroll_id,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// HitBody is one rendered hit.
type HitBody struct {
	ID        string            `json:"id"`
	Index     string            `json:"index"`
	Score     *float64          `json:"score,omitempty"`
	Source    map[string]any    `json:"source,omitempty"`
	Highlight map[string]string `json:"highlight,omitempty"`
}

func searchResponse(r *result.Results) SearchResponse {
	resp := SearchResponse{
		Total:        r.Total(),
		Took:         r.Took(),
		Page:         r.CurrentPage(),
		PerPage:      r.PerPage(),
		TotalPages:   r.TotalPages(),
		Misspellings: r.Misspellings(),
		Aggs:         r.Aggs(),
		Suggestions:  r.Suggestions(),
		ScrollID:     r.ScrollID(),
		Hits:         make([]HitBody, 0, len(r.Hits())),
	}
	if err := r.Err(); err != nil {
		resp.Error = clientMessage(err)
	}
	for _, h := range r.Hits() {
		hb := HitBody{ID: h.ID, Index: h.Index, Score: h.Score, Source: h.Source}
		if len(h.Highlight) > 0 {
			hb.Highlight = result.Highlights(h)
		}
		resp.Hits = append(resp.Hits, hb)
	}
	return resp
}
