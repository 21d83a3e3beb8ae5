package field

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/kickdex/internal/domain"
)

func TestResolve_BoostAndMode(t *testing.T) {
	got, err := Resolve("laptop", []Spec{Named("title^3")}, WordStart, Defaults{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(got))
	}
	d := got[0]
	if d.Name() != "title" || d.Mode() != WordStart || d.Weight() != 3.0 {
		t.Errorf("got {%s %s %v}, want {title word_start 3}", d.Name(), d.Mode(), d.Weight())
	}
	if d.Path() != "title.word_start" {
		t.Errorf("Path() = %q", d.Path())
	}
}

func TestResolve_PlainNameUsesDefaultMode(t *testing.T) {
	got, err := Resolve("laptop", []Spec{Named("title")}, "", Defaults{Match: TextMiddle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Weight() != 1.0 || got[0].Mode() != TextMiddle {
		t.Errorf("got weight %v mode %s", got[0].Weight(), got[0].Mode())
	}
}

func TestResolve_ExplicitModeWinsOverDefault(t *testing.T) {
	got, err := Resolve("x", []Spec{WithMode("name", Exact), Named("brand")}, Word, Defaults{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paths := []string{got[0].Path(), got[1].Path()}
	want := []string{"name.exact", "brand.analyzed"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestResolve_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		match    Mode
		defaults Defaults
		want     string
		wantErr  bool
	}{
		{"match all word", "*", Word, Defaults{}, "_all", false},
		{"match all phrase", "*", Phrase, Defaults{}, "_all.phrase", false},
		{"catch-all enabled", "shoes", Word, Defaults{CatchAll: true}, "_all", false},
		{"wildcard analyzed", "shoes", Word, Defaults{}, "*.analyzed", false},
		{"wildcard word_start", "shoes", WordStart, Defaults{}, "*.word_start", false},
		{"exact needs fields", "shoes", Exact, Defaults{}, "", true},
		{"exact match all", "*", Exact, Defaults{}, "*.exact", false},
		{"searchable used", "shoes", Word, Defaults{Searchable: []string{"name"}}, "name.analyzed", false},
		{"default fields win", "shoes", Word,
			Defaults{DefaultFields: []Spec{Named("title")}, Searchable: []string{"name"}}, "title.analyzed", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.term, nil, tc.match, tc.defaults)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrConfiguration) {
					t.Fatalf("expected configuration error, got %v", err)
				}
				if err.Error() != "Must specify fields to search" {
					t.Errorf("error = %q", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != 1 || got[0].Path() != tc.want {
				t.Errorf("got %v, want %s", got, tc.want)
			}
		})
	}
}

func TestResolve_Dedup(t *testing.T) {
	got, err := Resolve("x", []Spec{Named("title^2"), Named("body"), Named("title^5")}, Word, Defaults{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(got))
	}
	if got[0].Weight() != 2 {
		t.Errorf("first occurrence should win, weight = %v", got[0].Weight())
	}
}

func TestResolve_UnindexedMode(t *testing.T) {
	d := Defaults{ModeFields: map[Mode][]string{WordStart: {"name"}}}

	if _, err := Resolve("x", []Spec{WithMode("name", WordStart)}, Word, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := Resolve("x", []Spec{WithMode("brand", WordStart)}, Word, d)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestResolve_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		specs []Spec
		match Mode
	}{
		{"unknown mode", []Spec{Named("title")}, Mode("fuzzy")},
		{"bad boost", []Spec{Named("title^high")}, Word},
		{"empty name", []Spec{Named("^2")}, Word},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Resolve("x", tc.specs, tc.match, Defaults{}); !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestBase(t *testing.T) {
	tests := map[string]string{
		"title.analyzed":   "title",
		"title.word_start": "title",
		"name.exact":       "name",
		"_all":             "_all",
		"meta.title":       "meta.title",
	}
	for in, want := range tests {
		if got := Base(in); got != want {
			t.Errorf("Base(%q) = %q, want %q", in, got, want)
		}
	}
}
