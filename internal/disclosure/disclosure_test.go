package disclosure

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  []Item
	}{
		{
			name:  "nil input",
			items: nil,
			want:  nil,
		},
		{
			name: "drops repeated label and summary",
			items: []Item{
				{Label: "A", Summary: "x"},
				{Label: "B", Summary: "y"},
				{Label: "A", Summary: "x"},
			},
			want: []Item{
				{Label: "A", Summary: "x"},
				{Label: "B", Summary: "y"},
			},
		},
		{
			name: "first occurrence wins despite different payload",
			items: []Item{
				{Label: "search", Summary: "3 hits", Detail: "first", Payload: json.RawMessage(`{"n":1}`)},
				{Label: "search", Summary: "3 hits", Detail: "second", Payload: json.RawMessage(`{"n":2}`)},
			},
			want: []Item{
				{Label: "search", Summary: "3 hits", Detail: "first", Payload: json.RawMessage(`{"n":1}`)},
			},
		},
		{
			name: "same label different summary kept",
			items: []Item{
				{Label: "A", Summary: "x"},
				{Label: "A", Summary: "z"},
			},
			want: []Item{
				{Label: "A", Summary: "x"},
				{Label: "A", Summary: "z"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.items)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dedupe() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDedupeDoesNotMutateInput(t *testing.T) {
	in := []Item{{Label: "A", Summary: "x"}, {Label: "A", Summary: "x"}, {Label: "B", Summary: "y"}}
	snapshot := append([]Item(nil), in...)
	_ = Dedupe(in)
	if !reflect.DeepEqual(in, snapshot) {
		t.Errorf("Dedupe mutated its input: %#v", in)
	}
}

func TestToggle(t *testing.T) {
	var s Set
	s1 := Toggle(s, "search")
	if !IsExpanded(s1, "search") {
		t.Error("expected search expanded after first toggle")
	}
	if IsExpanded(s, "search") {
		t.Error("Toggle mutated its input")
	}

	s2 := Toggle(s1, "browse")
	if !IsExpanded(s2, "search") || !IsExpanded(s2, "browse") {
		t.Errorf("keys = %v, want browse and search", s2.Keys())
	}
	if IsExpanded(s1, "browse") {
		t.Error("Toggle mutated s1")
	}

	s3 := Toggle(s2, "search")
	if IsExpanded(s3, "search") || !IsExpanded(s3, "browse") {
		t.Errorf("keys = %v, want only browse", s3.Keys())
	}
}

func TestToggleInvolution(t *testing.T) {
	sets := []Set{
		nil,
		{},
		{"a": {}},
		{"a": {}, "b": {}, "c": {}},
	}
	for _, s := range sets {
		for _, k := range []string{"a", "b", "z"} {
			if got := Toggle(Toggle(s, k), k); !sameKeys(got, s) {
				t.Errorf("Toggle(Toggle(%v, %q)) = %v", s.Keys(), k, got.Keys())
			}
		}
	}
}

func TestKeys(t *testing.T) {
	s := Set{"c": {}, "a": {}, "b": {}}
	if got := s.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func sameKeys(a, b Set) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !IsExpanded(b, k) {
			return false
		}
	}
	return true
}
