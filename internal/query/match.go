package query

import (
	"maps"
	"slices"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/search/field"
	"github.com/kailas-cloud/kickdex/internal/domain/search/request"
)

// Analyzers installed by the index settings.
const (
	analyzerSearch       = "kickdex_search"
	analyzerSearch2      = "kickdex_search2"
	analyzerWordSearch   = "kickdex_word_search"
	analyzerAutocomplete = "kickdex_autocomplete_search"
	analyzerKeyword      = "keyword"
)

// Languages whose two search analyzers are identical.
var singleAnalyzerLanguages = map[string]bool{
	"japanese":   true,
	"japanese2":  true,
	"korean":     true,
	"polish":     true,
	"ukrainian":  true,
	"vietnamese": true,
}

const (
	defaultEditDistance       = 1
	defaultMaxExpansions      = 3
	defaultBelowMaxExpansions = 20
	defaultVectorK            = 5
)

type misspellingPolicy struct {
	enabled        bool
	editDistance   int
	prefixLength   int
	maxExpansions  int
	transpositions bool
	fields         []string
}

func (p misspellingPolicy) covers(name string) bool {
	return p.enabled && (p.fields == nil || slices.Contains(p.fields, name))
}

// misspellings resolves the fuzzy policy of the current attempt. A Below threshold keeps fuzzy matching
// off until PrepareRetry.
func (q *Query) misspellings() (misspellingPolicy, error) {
	m := q.opts.Misspellings
	if m == nil {
		return misspellingPolicy{
			enabled:        true,
			editDistance:   defaultEditDistance,
			maxExpansions:  defaultMaxExpansions,
			transpositions: true,
		}, nil
	}
	if m.Disabled {
		return misspellingPolicy{}, nil
	}

	if m.Fields != nil {
		bases := make(map[string]bool, len(q.fields))
		for _, d := range q.fields {
			bases[d.Name()] = true
		}
		for _, f := range m.Fields {
			if !bases[f] {
				return misspellingPolicy{}, domain.NewConfigurationError(
					"All fields in per-field misspellings must also be specified in fields option")
			}
		}
	}

	if m.Below > 0 {
		q.below = m.Below
		if !q.retried {
			return misspellingPolicy{}, nil
		}
	}

	p := misspellingPolicy{
		enabled:        true,
		editDistance:   m.EditDistance,
		prefixLength:   m.PrefixLength,
		maxExpansions:  m.MaxExpansions,
		transpositions: true,
		fields:         m.Fields,
	}
	if p.editDistance == 0 {
		p.editDistance = defaultEditDistance
	}
	if p.maxExpansions == 0 {
		p.maxExpansions = defaultMaxExpansions
		if m.Below > 0 {
			p.maxExpansions = defaultBelowMaxExpansions
		}
	}
	if m.Transpositions != nil {
		p.transpositions = *m.Transpositions
	}
	return p, nil
}

// fieldGroups builds one clause group per field plus the exclusion clauses.
func (q *Query) fieldGroups(policy misspellingPolicy) (groups [][]any, mustNot []any) {
	o := &q.opts
	model := q.model()
	operator := o.Operator
	if operator == "" {
		operator = request.OperatorAnd
	}
	rerank := o.Rerank != nil

	for _, d := range q.fields {
		path := d.Path()
		shared := obj{"query": q.term}
		if !rerank {
			shared["boost"] = 10 * d.Weight()
		}

		matchType := "match"
		if d.Mode() == field.Phrase {
			matchType = "match_phrase"
			if d.IsCatchAll() {
				path = field.CatchAll
			} else {
				path = d.Name() + "." + field.Word.Suffix()
			}
		} else {
			shared["operator"] = operator
		}

		var (
			qs              []obj
			toAdd           []any
			excludeField    = path
			excludeAnalyzer string
		)

		switch {
		case d.IsCatchAll() || d.Mode() == field.Word || d.Mode() == field.Phrase:
			qs = append(qs, with(shared, "analyzer", analyzerSearch))
			if !singleAnalyzerLanguages[model.Language] {
				qs = append(qs, with(shared, "analyzer", analyzerSearch2))
			}
			excludeAnalyzer = analyzerSearch2
		case d.Mode() == field.Exact:
			toAdd = append(toAdd, obj{"match": obj{d.Name(): with(shared, "analyzer", analyzerKeyword)}})
			excludeField = d.Name()
			excludeAnalyzer = analyzerKeyword
		default:
			analyzer := analyzerAutocomplete
			if d.Mode().IsWordPart() {
				analyzer = analyzerWordSearch
			}
			qs = append(qs, with(shared, "analyzer", analyzer))
			excludeAnalyzer = analyzer
		}

		if policy.covers(d.Name()) && matchType == "match" {
			for _, exact := range slices.Clone(qs) {
				fq := maps.Clone(exact)
				fq["fuzziness"] = policy.editDistance
				fq["prefix_length"] = policy.prefixLength
				fq["max_expansions"] = policy.maxExpansions
				if !rerank {
					fq["boost"] = d.Weight()
				}
				fq["fuzzy_transpositions"] = policy.transpositions
				qs = append(qs, fq)
			}
		}

		clauses := make([]any, 0, len(qs))
		for _, c := range qs {
			if d.IsWildcard() {
				mm := maps.Clone(c)
				mm["fields"] = []string{path}
				mm["type"] = "best_fields"
				if matchType == "match_phrase" {
					mm["type"] = "phrase"
				}
				clauses = append(clauses, obj{"multi_match": mm})
				continue
			}
			clauses = append(clauses, obj{matchType: obj{path: c}})
		}

		if d.Mode().IsWordPart() && !model.DisableWordBoost {
			// exact words score higher than partial ones
			toAdd = append(toAdd, obj{"bool": obj{
				"must":   obj{"bool": obj{"should": clauses}},
				"should": obj{matchType: obj{d.Name() + "." + field.Word.Suffix(): qs[0]}},
			}})
		} else {
			toAdd = append(toAdd, clauses...)
		}
		groups = append(groups, toAdd)

		for _, phrase := range o.Exclude {
			mustNot = append(mustNot, obj{"multi_match": obj{
				"fields":   []string{excludeField},
				"query":    phrase,
				"analyzer": excludeAnalyzer,
				"type":     "phrase",
			}})
		}
	}
	return groups, mustNot
}

func (q *Query) moreLikeThis() (obj, error) {
	like := q.opts.Like
	if like == "" {
		like = q.term
	}
	mlt := obj{
		"like":          like,
		"min_doc_freq":  1,
		"min_term_freq": 1,
		"analyzer":      analyzerSearch2,
	}

	wildcardOnly := true
	for _, d := range q.fields {
		if !d.IsWildcard() {
			wildcardOnly = false
			break
		}
	}
	if wildcardOnly {
		return nil, domain.NewConfigurationError("Must specify fields to search")
	}
	if !(len(q.fields) == 1 && q.fields[0].IsCatchAll()) {
		paths := make([]string, len(q.fields))
		for i, d := range q.fields {
			paths[i] = d.Path()
		}
		mlt["fields"] = paths
	}
	return obj{"more_like_this": mlt}, nil
}

// vectorGroups returns the neural, neural_sparse and knn clauses, each as its own group.
func (q *Query) vectorGroups() [][]any {
	o := &q.opts
	var groups [][]any
	blank := q.term == "" || q.term == "*"

	if len(o.Neural) > 0 && !blank {
		fields := obj{}
		for _, n := range o.Neural {
			text := n.QueryText
			if text == "" {
				text = q.term
			}
			k := n.K
			if k == 0 {
				k = defaultVectorK
			}
			spec := obj{"query_text": text, "k": k}
			if n.ModelID != "" {
				spec["model_id"] = n.ModelID
			}
			fields[n.Field] = spec
		}
		groups = append(groups, []any{obj{"neural": fields}})
	}

	if len(o.NeuralSparse) > 0 && !blank {
		fields := obj{}
		for _, n := range o.NeuralSparse {
			text := n.QueryText
			if text == "" {
				text = q.term
			}
			spec := obj{"query_text": text}
			if n.ModelID != "" {
				spec["model_id"] = n.ModelID
			}
			fields[n.Field] = spec
		}
		groups = append(groups, []any{obj{"neural_sparse": fields}})
	}

	if o.KNN != nil && len(o.KNN.Vector) > 0 {
		k := o.KNN.K
		if k == 0 {
			k = defaultVectorK
		}
		groups = append(groups, []any{obj{"knn": obj{o.KNN.Field: obj{"vector": o.KNN.Vector, "k": k}}}})
	}
	return groups
}

func (q *Query) conversions() []any {
	o := &q.opts
	if o.DisableConversions {
		return nil
	}
	fields := o.Conversions
	if len(fields) == 0 {
		fields = q.model().Conversions
	}
	term := o.ConversionsTerm
	if term == "" {
		term = q.term
	}

	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, obj{"nested": obj{
			"path":       f,
			"score_mode": "sum",
			"query": obj{"function_score": obj{
				"boost_mode":         "replace",
				"query":              obj{"match": obj{f + ".query": term}},
				"field_value_factor": obj{"field": f + ".count"},
			}},
		}})
	}
	return out
}

func with(m obj, key string, value any) obj {
	out := maps.Clone(m)
	out[key] = value
	return out
}
