package request

import (
	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/search/filter"
)

// Metric is a single-value metric aggregation.
type Metric string

// Metric aggregations.
const (
	MetricAvg         Metric = "avg"
	MetricCardinality Metric = "cardinality"
	MetricMax         Metric = "max"
	MetricMin         Metric = "min"
	MetricSum         Metric = "sum"
)

// DefaultAggLimit is the terms size of an aggregation without a limit.
const DefaultAggLimit = 1000

// Agg is one requested aggregation. Exactly one of Ranges, DateRanges, DateHistogram, Metric may be set;
// none means terms.
type Agg struct {
	Name  string
	Field string
	Limit int
	Where filter.Where

	Ranges        []map[string]any
	DateRanges    []map[string]any
	DateHistogram map[string]any
	Metric        Metric

	// Extra is merged into the aggregation body (order, min_doc_count, ...).
	Extra map[string]any
}

// Terms is shorthand for a terms aggregation on a field.
func Terms(name string) Agg { return Agg{Name: name} }

// TargetField returns Field, or Name when Field is empty.
func (a Agg) TargetField() string {
	if a.Field != "" {
		return a.Field
	}
	return a.Name
}

func (a Agg) validate() error {
	if a.Name == "" {
		return domain.NewConfigurationError("aggregation name is required")
	}
	kinds := 0
	for _, set := range []bool{a.Ranges != nil, a.DateRanges != nil, a.DateHistogram != nil, a.Metric != ""} {
		if set {
			kinds++
		}
	}
	if kinds > 1 {
		return domain.NewConfigurationError("aggregation %q mixes several kinds", a.Name)
	}
	switch a.Metric {
	case "", MetricAvg, MetricCardinality, MetricMax, MetricMin, MetricSum:
	default:
		return domain.NewConfigurationError("unknown metric %q for aggregation %q", a.Metric, a.Name)
	}
	return a.Where.Validate()
}
