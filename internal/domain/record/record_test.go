package record

import "testing"

type plain struct{ id string }

func (p plain) SearchID() string                    { return p.id }
func (p plain) SearchData() (map[string]any, error) { return map[string]any{"id": p.id}, nil }

type full struct {
	plain
	persisted, destroyed, index bool
	routing                     string
}

func (f full) Persisted() bool       { return f.persisted }
func (f full) Destroyed() bool       { return f.destroyed }
func (f full) ShouldIndex() bool     { return f.index }
func (f full) SearchRouting() string { return f.routing }

func TestShouldIndex(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"no capabilities", plain{"1"}, true},
		{"persisted and wanted", full{plain{"1"}, true, false, true, ""}, true},
		{"not persisted", full{plain{"1"}, false, false, true, ""}, false},
		{"destroyed", full{plain{"1"}, true, true, true, ""}, false},
		{"opted out", full{plain{"1"}, true, false, false, ""}, false},
		{"ref", Ref{ID: "1"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldIndex(tc.rec); got != tc.want {
				t.Errorf("ShouldIndex() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRouting(t *testing.T) {
	if got := Routing(plain{"1"}); got != "" {
		t.Errorf("Routing() = %q", got)
	}
	if got := Routing(full{routing: "store-A"}); got != "store-A" {
		t.Errorf("Routing() = %q", got)
	}
	if got := Routing(Ref{ID: "9", Routing: "r"}); got != "r" {
		t.Errorf("Routing(Ref) = %q", got)
	}
}
