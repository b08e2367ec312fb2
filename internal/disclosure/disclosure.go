// Package disclosure deduplicates agent result items and tracks which of
// them are expanded, keyed by stable identity rather than list position.
package disclosure

import (
	"encoding/json"
	"sort"
)

// Item is one agent-produced result. Payload is structured data handed to a
// viewer verbatim; it is never interpreted here.
type Item struct {
	Label   string          `json:"label" yaml:"label"`
	Icon    string          `json:"icon,omitempty" yaml:"icon,omitempty"`
	Detail  string          `json:"detail,omitempty" yaml:"detail,omitempty"`
	Summary string          `json:"summary" yaml:"summary"`
	Payload json.RawMessage `json:"payload,omitempty" yaml:"-"`
}

// Key is the identity of an Item: producer label plus one-line summary.
type Key struct {
	Label   string
	Summary string
}

// Key returns the item's identity.
func (it Item) Key() Key {
	return Key{Label: it.Label, Summary: it.Summary}
}

// Dedupe drops items whose key repeats an earlier one, keeping first-seen
// order. The input is not modified.
func Dedupe(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[Key]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		k := it.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// ─── Expanded set ───────────────────────────────────────────────────────────

// Set holds the producer labels currently expanded. A nil Set is empty.
// Sets are treated as values: Toggle returns a new one.
type Set map[string]struct{}

// Toggle returns a copy of s with key added if absent, removed if present.
func Toggle(s Set, key string) Set {
	out := make(Set, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	if _, ok := out[key]; ok {
		delete(out, key)
	} else {
		out[key] = struct{}{}
	}
	return out
}

// IsExpanded reports whether key is in s.
func IsExpanded(s Set, key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the expanded labels sorted, for display and tests.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
