package request

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/search/field"
	"github.com/kailas-cloud/kickdex/internal/domain/search/filter"
)

func TestHasPagination(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{"none", Options{}, false},
		{"page", Options{Page: 2}, true},
		{"per page", Options{PerPage: 5}, true},
		{"limit", Options{Limit: 5}, true},
		{"offset", Options{Offset: 5}, true},
		{"padding", Options{Padding: 1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.opts.HasPagination(); got != tc.want {
				t.Errorf("HasPagination() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBodyConflicts(t *testing.T) {
	opts := Options{
		Body:   map[string]any{"query": map[string]any{"match_all": map[string]any{}}},
		Aggs:   []Agg{Terms("brand")},
		Where:  filter.Where{filter.Eq("a", 1)},
		Fields: []field.Spec{field.Named("title")},
		Limit:  10,
	}

	got := opts.BodyConflicts()
	want := []string{"aggs", "fields", "where"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BodyConflicts() = %v, want %v", got, want)
	}

	opts.Body = nil
	if got := opts.BodyConflicts(); got != nil {
		t.Errorf("expected no conflicts without body, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"empty", Options{}, false},
		{"operator or", Options{Operator: OperatorOr}, false},
		{"bad operator", Options{Operator: "xor"}, true},
		{"bad match", Options{Match: "fuzzy"}, true},
		{"negative page", Options{Page: -1}, true},
		{"bad where", Options{Where: filter.Where{filter.Eq("", 1)}}, true},
		{"agg without name", Options{Aggs: []Agg{{}}}, true},
		{"agg mixed kinds", Options{Aggs: []Agg{{Name: "p", Metric: MetricAvg, Ranges: []map[string]any{}}}}, true},
		{"agg bad metric", Options{Aggs: []Agg{{Name: "p", Metric: "median"}}}, true},
		{"distance without origin", Options{BoostByDistance: []DecayBoost{{Field: "loc"}}}, true},
		{"distance with origin", Options{BoostByDistance: []DecayBoost{{Field: "loc", Origin: filter.Point{}}}}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.wantErr {
				if !errors.Is(err, domain.ErrConfiguration) {
					t.Errorf("expected configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAggTargetField(t *testing.T) {
	if got := Terms("brand").TargetField(); got != "brand" {
		t.Errorf("TargetField() = %q", got)
	}
	if got := (Agg{Name: "brands", Field: "brand_id"}).TargetField(); got != "brand_id" {
		t.Errorf("TargetField() = %q", got)
	}
}
