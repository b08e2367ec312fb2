// Package segment splits a markdown-like answer into prose and fenced code.
package segment

import "strings"

// PlainLanguage is the language reported for fences without a language tag.
const PlainLanguage = "plaintext"

const fence = "```"

// Kind identifies the type of a Segment.
type Kind int

const (
	KindText Kind = iota
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCode:
		return "code"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Segment is one unit of parsed content, in source order.
// Language and FileName are only meaningful for code segments; an empty
// FileName means the fence carried no annotation.
type Segment struct {
	Kind     Kind   `json:"kind" yaml:"kind"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	FileName string `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	Value    string `json:"value" yaml:"value"`
}

// Text returns a prose segment.
func Text(value string) Segment {
	return Segment{Kind: KindText, Value: value}
}

// Code returns a code segment. An empty language becomes PlainLanguage.
func Code(language, fileName, value string) Segment {
	if language == "" {
		language = PlainLanguage
	}
	return Segment{Kind: KindCode, Language: language, FileName: fileName, Value: value}
}

func (s Segment) IsText() bool { return s.Kind == KindText }
func (s Segment) IsCode() bool { return s.Kind == KindCode }

// ─── Parse ──────────────────────────────────────────────────────────────────

// Parse splits content into Text and Code segments. It never fails: input
// that does not form a complete fence is returned as prose. An unterminated
// trailing fence stays in the final Text segment until its closer arrives.
func Parse(content string) []Segment {
	var segs []Segment
	textStart := 0
	pos := 0

	for pos < len(content) {
		open := nextLineStart(content, pos)
		if open < 0 {
			break
		}
		lang, file, bodyStart, ok := parseHeader(content, open)
		if !ok {
			pos = open + len(fence)
			continue
		}
		closeAt := findCloser(content, bodyStart)
		if closeAt < 0 {
			// Unterminated: everything from here on is in-flight prose.
			break
		}
		if open > textStart {
			segs = append(segs, Text(content[textStart:open]))
		}
		segs = append(segs, Code(lang, file, strings.TrimSpace(content[bodyStart:closeAt])))
		pos = closeAt + len(fence)
		textStart = pos
	}

	if textStart < len(content) {
		segs = append(segs, Text(content[textStart:]))
	}
	return segs
}

// nextLineStart returns the offset of the next line-initial fence marker at
// or after pos, or -1.
func nextLineStart(content string, pos int) int {
	for pos < len(content) {
		idx := strings.Index(content[pos:], fence)
		if idx < 0 {
			return -1
		}
		at := pos + idx
		if at == 0 || content[at-1] == '\n' {
			return at
		}
		pos = at + 1
	}
	return -1
}

// parseHeader reads "```lang [file]\n" starting at open. It returns the
// offset of the first body byte.
func parseHeader(content string, open int) (lang, file string, bodyStart int, ok bool) {
	i := open + len(fence)

	start := i
	for i < len(content) && isWordByte(content[i]) {
		i++
	}
	lang = content[start:i]

	j := skipBlanks(content, i)
	if j < len(content) && content[j] == '[' {
		end := j + 1
		for end < len(content) && content[end] != ']' && content[end] != '\n' {
			end++
		}
		if end >= len(content) || content[end] != ']' || end == j+1 {
			return "", "", 0, false
		}
		file = content[j+1 : end]
		i = end + 1
	}

	i = skipBlanks(content, i)
	if i >= len(content) || content[i] != '\n' {
		return "", "", 0, false
	}
	return lang, file, i + 1, true
}

// findCloser returns the offset of the closing fence for a body starting at
// from: a line holding only the marker and optional blanks.
func findCloser(content string, from int) int {
	lineStart := from
	for lineStart <= len(content) {
		lineEnd := strings.IndexByte(content[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(content)
		} else {
			lineEnd += lineStart
		}
		if isCloserLine(content[lineStart:lineEnd]) {
			return lineStart
		}
		if lineEnd >= len(content) {
			return -1
		}
		lineStart = lineEnd + 1
	}
	return -1
}

func isCloserLine(line string) bool {
	return strings.HasPrefix(line, fence) && strings.TrimRight(line[len(fence):], " \t\r") == ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func skipBlanks(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r') {
		i++
	}
	return i
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// Join re-serialises segments, re-inserting fences and annotations.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.IsText() {
			b.WriteString(s.Value)
			continue
		}
		b.WriteString(fence)
		b.WriteString(s.Language)
		if s.FileName != "" {
			b.WriteString(" [")
			b.WriteString(s.FileName)
			b.WriteString("]")
		}
		b.WriteByte('\n')
		if s.Value != "" {
			// A body whose first line looks like a closer lost its indent
			// to trimming; restore one so it does not end the block.
			if isCloserLine(firstLine(s.Value)) {
				b.WriteByte(' ')
			}
			b.WriteString(s.Value)
			b.WriteByte('\n')
		}
		b.WriteString(fence)
	}
	return b.String()
}

// Last returns the final segment and whether there was one.
func Last(segs []Segment) (Segment, bool) {
	if len(segs) == 0 {
		return Segment{}, false
	}
	return segs[len(segs)-1], true
}

// CodeBlocks returns only the code segments, in order.
func CodeBlocks(segs []Segment) []Segment {
	var out []Segment
	for _, s := range segs {
		if s.IsCode() {
			out = append(out, s)
		}
	}
	return out
}

// Fence is an opening marker with no closer yet.
type Fence struct {
	Language string
	FileName string
	Start    int // offset of the marker
	Body     int // offset of the first body byte
}

// Open reports whether content ends inside an unterminated fence and, if
// so, where that fence starts. An unlabelled fence reports PlainLanguage.
func Open(content string) (Fence, bool) {
	pos := 0
	for pos < len(content) {
		at := nextLineStart(content, pos)
		if at < 0 {
			return Fence{}, false
		}
		lang, file, bodyStart, ok := parseHeader(content, at)
		if !ok {
			pos = at + len(fence)
			continue
		}
		closeAt := findCloser(content, bodyStart)
		if closeAt < 0 {
			if lang == "" {
				lang = PlainLanguage
			}
			return Fence{Language: lang, FileName: file, Start: at, Body: bodyStart}, true
		}
		pos = closeAt + len(fence)
	}
	return Fence{}, false
}
