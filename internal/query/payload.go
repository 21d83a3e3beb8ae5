package query

import (
	"regexp"
	"slices"
	"strings"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/search/field"
)

func (q *Query) order() []any {
	out := make([]any, len(q.opts.Order))
	for i, s := range q.opts.Order {
		dir := s.Direction
		if dir == "" {
			dir = "asc"
		}
		if len(s.Options) == 0 {
			out[i] = obj{s.Field: dir}
			continue
		}
		out[i] = obj{s.Field: merged(s.Options, obj{"order": dir})}
	}
	return out
}

func (q *Query) suggest() (obj, error) {
	fields := q.opts.Suggest.Fields
	if len(fields) == 0 {
		fields = q.model().Suggest
		if len(q.opts.Fields) > 0 {
			var requested []string
			for _, s := range q.opts.Fields {
				name, _, _ := strings.Cut(s.Name, "^")
				requested = append(requested, name)
			}
			fields = slices.DeleteFunc(slices.Clone(fields), func(f string) bool {
				return !slices.Contains(requested, f)
			})
		}
	}
	if len(fields) == 0 {
		return nil, domain.NewConfigurationError("Must pass fields to suggest option")
	}

	out := obj{"text": q.term}
	for _, f := range fields {
		out[f] = obj{"phrase": obj{"field": f + ".suggest"}}
	}
	return out, nil
}

var openingTag = regexp.MustCompile(`^<(\w+).+`)

func (q *Query) highlight() obj {
	h := q.opts.Highlight

	fields := obj{}
	if len(h.Fields) > 0 {
		mode := q.opts.Match
		if mode == "" {
			mode = q.model().Match
		}
		if mode == "" {
			mode = field.Word
		}
		for _, f := range h.Fields {
			opts := f.Options
			if opts == nil {
				opts = obj{}
			}
			fields[f.Name+"."+mode.Suffix()] = opts
		}
	} else {
		for _, d := range q.fields {
			fields[d.Path()] = obj{}
		}
	}

	out := obj{"fields": fields, "fragment_size": 0}
	if h.Tag != "" {
		out["pre_tags"] = []string{h.Tag}
		out["post_tags"] = []string{openingTag.ReplaceAllString(h.Tag, "</$1>")}
	}
	if h.FragmentSize != nil {
		out["fragment_size"] = *h.FragmentSize
	}
	if h.Encoder != "" {
		out["encoder"] = h.Encoder
	}
	return out
}

// rerank adds the OpenSearch rerank context; the pipeline name travels as a request parameter.
func (q *Query) rerank(payload obj) {
	if q.opts.Rerank == nil {
		return
	}
	text := q.term
	if text == "*" {
		text = ""
	}
	payload["ext"] = obj{"rerank": obj{"query_context": obj{"query_text": text}}}
}
