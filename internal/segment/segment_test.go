package segment

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "no fences",
			input: "just some prose\n\nwith a blank line  ",
			want:  []Segment{Text("just some prose\n\nwith a blank line  ")},
		},
		{
			name:  "single fence with prose around",
			input: "before\n```python\nprint(1)\n```\nafter",
			want: []Segment{
				Text("before\n"),
				Code("python", "", "print(1)"),
				Text("\nafter"),
			},
		},
		{
			name:  "filename annotation",
			input: "```python [main.py]\nprint(1)\n```",
			want:  []Segment{Code("python", "main.py", "print(1)")},
		},
		{
			name:  "filename annotation without space",
			input: "```go[cmd/main.go]\npackage main\n```",
			want:  []Segment{Code("go", "cmd/main.go", "package main")},
		},
		{
			name:  "filename without language",
			input: "``` [notes.txt]\nhello\n```",
			want:  []Segment{Code(PlainLanguage, "notes.txt", "hello")},
		},
		{
			name:  "default language",
			input: "```\nls -la\n```",
			want:  []Segment{Code(PlainLanguage, "", "ls -la")},
		},
		{
			name:  "value is trimmed",
			input: "```sh\n\n   echo hi   \n\n```",
			want:  []Segment{Code("sh", "", "echo hi")},
		},
		{
			name:  "empty block",
			input: "```go\n```",
			want:  []Segment{Code("go", "", "")},
		},
		{
			name:  "two consecutive blocks",
			input: "```a\nx\n```\n```b\ny\n```",
			want: []Segment{
				Code("a", "", "x"),
				Text("\n"),
				Code("b", "", "y"),
			},
		},
		{
			name:  "unterminated fence stays text",
			input: "intro\n```go\nfunc main() {",
			want:  []Segment{Text("intro\n```go\nfunc main() {")},
		},
		{
			name:  "complete block then unterminated",
			input: "```go\na\n```\nmore\n```py\nb",
			want: []Segment{
				Code("go", "", "a"),
				Text("\nmore\n```py\nb"),
			},
		},
		{
			name:  "fence not at line start is prose",
			input: "inline ```go\nx\n``` here",
			want:  []Segment{Text("inline ```go\nx\n``` here")},
		},
		{
			name:  "non-word language is prose",
			input: "```c++\nint x;\n```",
			want:  []Segment{Text("```c++\nint x;\n```")},
		},
		{
			name:  "empty annotation is prose",
			input: "```go []\nx\n```",
			want:  []Segment{Text("```go []\nx\n```")},
		},
		{
			name:  "closer must be alone on its line",
			input: "```md\n```python inner\n```\ntail",
			want: []Segment{
				Code("md", "", "```python inner"),
				Text("\ntail"),
			},
		},
		{
			name:  "crlf header",
			input: "```js\r\nlet a = 1\r\n```\r\n",
			want: []Segment{
				Code("js", "", "let a = 1"),
				Text("\r\n"),
			},
		},
		{
			name:  "four backticks are prose",
			input: "````\nx\n````",
			want:  []Segment{Text("````\nx\n````")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q)\n  got:  %#v\n  want: %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseIdempotent(t *testing.T) {
	inputs := []string{
		"before\n```python\nprint(1)\n```\nafter",
		"```go [main.go]\npackage main\n\nfunc main() {}\n```",
		"a\n```\nplain\n```\nb\n```rust\nfn main() {}\n```\nc",
		"```go\n```",
		"text only",
		"x\n```py\nunterminated",
	}

	for _, in := range inputs {
		first := Parse(in)
		second := Parse(Join(first))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("re-parse of %q changed segments\n  first:  %#v\n  second: %#v", in, first, second)
		}
	}
}

func TestParseDeterministic(t *testing.T) {
	in := "p\n```go [a.go]\nx := 1\n```\nq"
	a := Parse(in)
	for i := 0; i < 5; i++ {
		if b := Parse(in); !reflect.DeepEqual(a, b) {
			t.Fatalf("Parse is not deterministic: %#v vs %#v", a, b)
		}
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"```", "```\n", "```[", "```go [", "```go [x", "\n```\n```\n```",
		"``````", "```go\n```go\n```go\n", "[]```", "\x00```\x00",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Parse(%q) panicked: %v", in, r)
				}
			}()
			_ = Parse(in)
		}()
	}
}

func TestJoin(t *testing.T) {
	segs := []Segment{
		Text("see:\n"),
		Code("go", "main.go", "package main"),
		Text("\ndone"),
	}
	want := "see:\n```go [main.go]\npackage main\n```\ndone"
	if got := Join(segs); got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		input    string
		wantOpen bool
		want     Fence
	}{
		{"", false, Fence{}},
		{"plain", false, Fence{}},
		{"```go\nx\n```", false, Fence{}},
		{"```go\nx", true, Fence{Language: "go", Start: 0, Body: 6}},
		{"```\nx", true, Fence{Language: PlainLanguage, Start: 0, Body: 4}},
		{"```go\nx\n```\n```py [a.py]\ny", true, Fence{Language: "py", FileName: "a.py", Start: 12, Body: 25}},
		{"```go", false, Fence{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, open := Open(tt.input)
			if open != tt.wantOpen || got != tt.want {
				t.Errorf("Open(%q) = (%+v, %v), want (%+v, %v)", tt.input, got, open, tt.want, tt.wantOpen)
			}
		})
	}
}

func TestJoinKeepsBareFenceBody(t *testing.T) {
	inputs := []string{
		"```\n ```\n ```\n```[``````\n\n```\n",
		"```\n\r```\n```",
		"```go\n\t```\nx := 1\n```\n",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first := Parse(in)
			second := Parse(Join(first))
			if !reflect.DeepEqual(first, second) {
				t.Errorf("Parse(Join(Parse(%q))) = %#v, want %#v", in, second, first)
			}
		})
	}
}

func TestLastAndCodeBlocks(t *testing.T) {
	if _, ok := Last(nil); ok {
		t.Error("Last(nil) reported a segment")
	}
	segs := Parse("a\n```go\nx\n```\nb\n```sh\ny\n```")
	last, ok := Last(segs)
	if !ok || !last.IsCode() || last.Language != "sh" {
		t.Errorf("Last() = %#v, %v", last, ok)
	}
	blocks := CodeBlocks(segs)
	if len(blocks) != 2 || blocks[0].Value != "x" || blocks[1].Value != "y" {
		t.Errorf("CodeBlocks() = %#v", blocks)
	}
}

func TestKindString(t *testing.T) {
	if KindText.String() != "text" || KindCode.String() != "code" || Kind(9).String() != "unknown" {
		t.Error("unexpected Kind.String() values")
	}
}
