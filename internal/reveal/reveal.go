// Package reveal progressively discloses a growing string to simulate live
// generation. The pure state transitions live here; model.go drives them
// from Bubble Tea ticks and run.go from a plain ticker.
package reveal

import (
	"time"
	"unicode/utf8"
)

const (
	// DefaultInterval is the tick cadence while a reveal is in progress.
	DefaultInterval = 16 * time.Millisecond

	// DefaultBatch is the number of characters disclosed per tick.
	DefaultBatch = 3
)

// State is the target string and the prefix of it currently shown.
// Displayed is always a prefix of Full.
type State struct {
	Full      string
	Displayed string
}

// Done reports whether the whole target is shown.
func (s State) Done() bool {
	return len(s.Displayed) == len(s.Full)
}

// Progress returns shown and total character counts.
func (s State) Progress() (shown, total int) {
	return utf8.RuneCountInString(s.Displayed), utf8.RuneCountInString(s.Full)
}

// Sync retargets s at full without growing it. When streaming is false the
// whole target is shown at once; otherwise the displayed prefix keeps its
// length, clamped to the new target.
func Sync(s State, full string, streaming bool) State {
	if !streaming {
		return State{Full: full, Displayed: full}
	}
	n := utf8.RuneCountInString(s.Displayed)
	return State{Full: full, Displayed: prefix(full, n)}
}

// Advance is one tick: Sync followed by growing the displayed prefix by
// batch characters, never past the target. A non-positive batch uses
// DefaultBatch.
func Advance(s State, full string, streaming bool, batch int) State {
	s = Sync(s, full, streaming)
	if s.Done() {
		return s
	}
	if batch <= 0 {
		batch = DefaultBatch
	}
	n := utf8.RuneCountInString(s.Displayed) + batch
	s.Displayed = prefix(s.Full, n)
	return s
}

// prefix returns the first n runes of s, or s when it is shorter.
func prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
