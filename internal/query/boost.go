package query

import (
	"github.com/kailas-cloud/kickdex/internal/domain/search/filter"
	"github.com/kailas-cloud/kickdex/internal/domain/search/request"
)

const (
	defaultDecayFunction = "gauss"
	defaultDistanceScale = "5mi"
)

// boosts compiles the score functions combined by summation and by multiplication.
func (q *Query) boosts() (custom, multiply []any) {
	o := &q.opts

	for _, b := range o.BoostBy {
		factor := b.Factor
		if factor == 0 {
			factor = 1
		}
		if b.Multiply {
			multiply = append(multiply, boostFilter(b.Field, factor, "", b.Missing))
			continue
		}
		custom = append(custom, boostFilter(b.Field, factor, "ln2p", b.Missing))
	}
	if o.Boost != "" {
		custom = append(custom, boostFilter(o.Boost, 1, "ln2p", nil))
	}

	for _, b := range o.BoostWhere {
		factor := b.Factor
		if factor == 0 {
			factor = request.DefaultBoostWhereFactor
		}
		custom = append(custom, obj{"filter": compileWhere(b.Filter), "weight": factor})
	}

	for _, b := range o.BoostByDistance {
		params := decayParams(b)
		if p, ok := b.Origin.(filter.Point); ok {
			params["origin"] = location(p)
		}
		if b.Scale == "" {
			params["scale"] = defaultDistanceScale
		}
		custom = append(custom, decayFunction(b, params))
	}

	for _, b := range o.BoostByRecency {
		params := decayParams(b)
		if b.Origin == nil {
			params["origin"] = "now"
		}
		custom = append(custom, decayFunction(b, params))
	}

	for _, b := range o.BoostByFieldValue {
		weight := b.Weight
		if weight == 0 {
			weight = 1
		}
		factor := b.Factor
		if factor == 0 {
			factor = request.DefaultFieldValueFactor
		}
		fvf := obj{"factor": factor, "field": b.Field}
		if b.Modifier != "" {
			fvf["modifier"] = b.Modifier
		}
		if b.Missing != nil {
			fvf["missing"] = *b.Missing
		}
		custom = append(custom, obj{
			"weight":             weight,
			"field_value_factor": fvf,
			"_name":              b.Field + "_function",
		})
	}
	return custom, multiply
}

func boostFilter(field string, factor float64, modifier string, missing *float64) obj {
	fvf := obj{"field": field, "factor": factor}
	if modifier != "" {
		fvf["modifier"] = modifier
	}
	out := obj{"field_value_factor": fvf}
	if missing != nil {
		fvf["missing"] = *missing
	} else {
		out["filter"] = obj{"exists": obj{"field": field}}
	}
	return out
}

func decayParams(b request.DecayBoost) obj {
	params := obj{}
	if b.Origin != nil {
		params["origin"] = b.Origin
	}
	if b.Scale != "" {
		params["scale"] = b.Scale
	}
	if b.Offset != "" {
		params["offset"] = b.Offset
	}
	if b.Decay != 0 {
		params["decay"] = b.Decay
	}
	return params
}

func decayFunction(b request.DecayBoost, params obj) obj {
	fn := b.Function
	if fn == "" {
		fn = defaultDecayFunction
	}
	weight := b.Factor
	if weight == 0 {
		weight = 1
	}
	return obj{"weight": weight, fn: obj{b.Field: params}}
}
