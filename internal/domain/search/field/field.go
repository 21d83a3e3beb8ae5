// Package field resolves user field specifications into concrete backend field names.
package field

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/kickdex/internal/domain"
)

// Mode is the match mode of a field; it selects the backend sub-field and analyzer.
type Mode string

// Match modes.
const (
	Word       Mode = "word"
	Exact      Mode = "exact"
	Phrase     Mode = "phrase"
	WordStart  Mode = "word_start"
	WordMiddle Mode = "word_middle"
	WordEnd    Mode = "word_end"
	TextStart  Mode = "text_start"
	TextMiddle Mode = "text_middle"
	TextEnd    Mode = "text_end"
)

// MatchAll is the term that matches every document.
const MatchAll = "*"

// CatchAll is the backend catch-all field.
const CatchAll = "_all"

// Wildcard is the base name of the "all analyzed fields" descriptor.
const Wildcard = "*"

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case Word, Exact, Phrase, WordStart, WordMiddle, WordEnd, TextStart, TextMiddle, TextEnd:
		return true
	}
	return false
}

// Suffix returns the backend sub-field suffix for the mode.
func (m Mode) Suffix() string {
	if m == Word {
		return "analyzed"
	}
	return string(m)
}

// IsWordPart reports whether the mode is one of word_start, word_middle, word_end.
func (m Mode) IsWordPart() bool {
	return m == WordStart || m == WordMiddle || m == WordEnd
}

// Spec is a caller-supplied field: "name", "name^boost", optionally with an explicit mode.
type Spec struct {
	Name string
	Mode Mode
}

// Named is shorthand for a Spec without an explicit mode.
func Named(name string) Spec { return Spec{Name: name} }

// WithMode is shorthand for a Spec with an explicit mode.
func WithMode(name string, m Mode) Spec { return Spec{Name: name, Mode: m} }

// Defaults are the model-level settings consulted when no explicit fields are given.
type Defaults struct {
	DefaultFields []Spec
	Searchable    []string
	Match         Mode
	CatchAll      bool
	// ModeFields restricts which fields are indexed for a mode. A mode absent from the map is unrestricted.
	ModeFields map[Mode][]string
}

// Descriptor is a resolved field: base name, mode and weight.
type Descriptor struct {
	name   string
	mode   Mode
	weight float64
}

// NewDescriptor creates a Descriptor. A non-positive weight becomes 1.
func NewDescriptor(name string, m Mode, weight float64) Descriptor {
	if weight <= 0 {
		weight = 1
	}
	return Descriptor{name: name, mode: m, weight: weight}
}

// Name returns the base field name ("title", "_all" or "*").
func (d Descriptor) Name() string { return d.name }

// Mode returns the match mode.
func (d Descriptor) Mode() Mode { return d.mode }

// Weight returns the boost factor.
func (d Descriptor) Weight() float64 { return d.weight }

// IsWildcard reports whether the descriptor targets every analyzed field.
func (d Descriptor) IsWildcard() bool { return d.name == Wildcard }

// IsCatchAll reports whether the descriptor targets the catch-all field.
func (d Descriptor) IsCatchAll() bool { return d.name == CatchAll }

// Path renders the backend field name.
func (d Descriptor) Path() string {
	if d.IsCatchAll() {
		if d.mode == Phrase {
			return CatchAll + ".phrase"
		}
		return CatchAll
	}
	return d.name + "." + d.mode.Suffix()
}

// Resolve expands field specs into descriptors.
//
// Priority: explicit specs, then model default fields, then searchable fields; the catch-all field when
// nothing is declared and the term matches everything (or the model enables it); an error for exact mode
// without declared fields; otherwise the wildcard descriptor.
func Resolve(term string, explicit []Spec, match Mode, d Defaults) ([]Descriptor, error) {
	if match == "" {
		match = d.Match
	}
	if match == "" {
		match = Word
	}
	if !match.IsValid() {
		return nil, domain.NewConfigurationError("unknown match mode %q", match)
	}

	specs := explicit
	if len(specs) == 0 {
		specs = d.DefaultFields
	}
	if len(specs) == 0 {
		for _, s := range d.Searchable {
			specs = append(specs, Named(s))
		}
	}

	if len(specs) > 0 {
		return resolveSpecs(specs, match, d.ModeFields, len(explicit) > 0)
	}

	if (term == MatchAll || d.CatchAll) && (match == Word || match == Phrase) {
		return []Descriptor{NewDescriptor(CatchAll, match, 1)}, nil
	}
	if term != MatchAll && match == Exact {
		return nil, domain.NewConfigurationError("Must specify fields to search")
	}
	return []Descriptor{NewDescriptor(Wildcard, match, 1)}, nil
}

func resolveSpecs(specs []Spec, match Mode, modeFields map[Mode][]string, explicit bool) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(specs))
	seen := make(map[string]bool, len(specs))

	for _, s := range specs {
		d, err := Parse(s, match)
		if err != nil {
			return nil, err
		}
		if explicit {
			if err := checkIndexed(d, modeFields); err != nil {
				return nil, err
			}
		}
		if seen[d.Path()] {
			continue
		}
		seen[d.Path()] = true
		out = append(out, d)
	}
	return out, nil
}

// Parse turns a single spec into a descriptor, falling back to match when the spec has no mode.
func Parse(s Spec, match Mode) (Descriptor, error) {
	name, boost, hasBoost := strings.Cut(s.Name, "^")
	if name == "" {
		return Descriptor{}, domain.NewConfigurationError("field name is required")
	}

	m := s.Mode
	if m == "" {
		m = match
	}
	if !m.IsValid() {
		return Descriptor{}, domain.NewConfigurationError("unknown match mode %q for field %q", m, name)
	}

	weight := 1.0
	if hasBoost {
		w, err := strconv.ParseFloat(boost, 64)
		if err != nil {
			return Descriptor{}, domain.NewConfigurationError("invalid boost %q for field %q", boost, name)
		}
		weight = w
	}
	return NewDescriptor(name, m, weight), nil
}

func checkIndexed(d Descriptor, modeFields map[Mode][]string) error {
	allowed, restricted := modeFields[d.mode]
	if !restricted {
		return nil
	}
	for _, f := range allowed {
		if f == d.name {
			return nil
		}
	}
	return domain.NewConfigurationError("field %q is not indexed for %s matching", d.name, d.mode)
}

var suffixes = []string{
	".analyzed", ".word_start", ".word_middle", ".word_end",
	".text_start", ".text_middle", ".text_end", ".exact",
}

// Base strips a known mode suffix from a backend field path.
func Base(path string) string {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return strings.TrimSuffix(path, s)
		}
	}
	return path
}
