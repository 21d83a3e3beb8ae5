package request

import "github.com/kailas-cloud/kickdex/internal/domain/search/filter"

// BoostBy scales scores by a numeric field.
type BoostBy struct {
	Field  string
	Factor float64
	// Missing replaces the field value when it is absent; otherwise documents without it are not boosted.
	Missing *float64
	// Multiply combines the boost by multiplication instead of summation.
	Multiply bool
}

// DefaultBoostWhereFactor is the weight of a BoostWhere without a factor.
const DefaultBoostWhereFactor = 1000

// BoostWhere adds Factor to documents matching Filter.
type BoostWhere struct {
	Filter filter.Where
	Factor float64
}

// DecayBoost is a decay function boost (distance or recency).
type DecayBoost struct {
	Field string
	// Function is gauss, linear or exp. Defaults to gauss.
	Function string
	// Origin is a filter.Point for distance boosts or a time/date string for recency boosts.
	Origin any
	Scale  string
	Offset string
	Decay  float64
	Factor float64
}

// DefaultFieldValueFactor is the factor of a FieldValueBoost without one.
const DefaultFieldValueFactor = 0.001

// FieldValueBoost is a named field_value_factor function.
type FieldValueBoost struct {
	Field    string
	Factor   float64
	Modifier string
	Missing  *float64
	Weight   float64
}
