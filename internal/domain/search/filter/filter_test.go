package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/kickdex/internal/domain"
)

func TestNew_FlattensBetween(t *testing.T) {
	w := New(Eq("brand", "acme"), Between("price", 10, 20), Where{Exists("image")})

	if len(w) != 4 {
		t.Fatalf("expected 4 conditions, got %d", len(w))
	}
	ops := []Op{OpEq, OpGte, OpLte, OpExists}
	for i, op := range ops {
		if w[i].Op() != op {
			t.Errorf("w[%d].Op() = %s, want %s", i, w[i].Op(), op)
		}
	}
}

func TestWithout(t *testing.T) {
	w := New(Eq("brand", "acme"), Gte("price", 1), Or(Where{Eq("brand", "x")}), Eq("color", "red"))

	got := w.Without("brand")
	if len(got) != 3 {
		t.Fatalf("expected 3 conditions, got %d", len(got))
	}
	if got[0].Field() != "price" || got[1].Op() != OpOr || got[2].Field() != "color" {
		t.Errorf("unexpected conditions: %+v", got)
	}
	if len(w) != 4 {
		t.Error("Without must not mutate the receiver")
	}
}

func TestMerge(t *testing.T) {
	a := Where{Eq("a", 1)}
	b := Where{Eq("b", 2)}
	m := a.Merge(b)
	if len(m) != 2 || m[0].Field() != "a" || m[1].Field() != "b" {
		t.Errorf("unexpected merge result: %+v", m)
	}
}

func TestWithin_Default(t *testing.T) {
	c := Near("location", Point{Lat: 37.7, Lon: -122.4}, "")
	if c.Within() != DefaultWithin {
		t.Errorf("Within() = %q, want %q", c.Within(), DefaultWithin)
	}
	c = Near("location", Point{}, "10km")
	if c.Within() != "10km" {
		t.Errorf("Within() = %q", c.Within())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		where   Where
		wantErr bool
	}{
		{"scalar eq", Where{Eq("a", "x")}, false},
		{"time value", Where{Gte("created_at", time.Now())}, false},
		{"null", Where{Null("a")}, false},
		{"list in", Where{In("a", 1, nil, 3)}, false},
		{"composite eq", Where{Eq("a", map[string]any{"x": 1})}, true},
		{"composite in", Where{In("a", []int{1})}, true},
		{"missing field", Where{Eq("", 1)}, true},
		{"unknown op", Where{{field: "a", op: Op("between")}}, true},
		{"polygon too small", Where{Polygon("loc", Point{}, Point{})}, true},
		{"shape without type", Where{GeoShape("loc", Shape{})}, true},
		{"nested invalid", Where{Or(Where{Eq("", 1)})}, true},
		{"empty raw", Where{Raw(nil)}, true},
		{"raw", Where{Raw(map[string]any{"term": map[string]any{"a": 1}})}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.where.Validate()
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

func TestConditionKinds(t *testing.T) {
	if !Gt("a", 1).IsRange() || Eq("a", 1).IsRange() {
		t.Error("IsRange mismatch")
	}
	if !NotAll(Where{}).IsLogical() || Prefix("a", "b").IsLogical() {
		t.Error("IsLogical mismatch")
	}
	if !NotIn("a", 1, 2).HasValues() || Not("a", 1).HasValues() {
		t.Error("HasValues mismatch")
	}
}
