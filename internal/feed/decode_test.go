package feed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDecodeJSONL(t *testing.T) {
	input := `{"type":"message","text":"show me"}

{"type":"chat_delta","text":"Here:\n"}
{"type":"result","label":"search","summary":"2 hits","payload":{"hits":2}}
{"type":"done","delay_ms":5}
`
	events, err := Decode(strings.NewReader(input), FormatJSONL)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("len(events) = %d, want 4", len(events))
	}
	if events[1].Text != "Here:\n" {
		t.Errorf("delta text = %q", events[1].Text)
	}
	if string(events[2].Payload) != `{"hits":2}` {
		t.Errorf("payload = %s", events[2].Payload)
	}
	if events[3].Delay() != 5*time.Millisecond {
		t.Errorf("Delay() = %v", events[3].Delay())
	}
}

func TestDecodeJSONLErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"malformed", "{\"type\":\"done\"}\n{nope", "line 2"},
		{"unknown type", `{"type":"shout"}`, `line 1: unknown event type "shout"`},
		{"missing type", `{"text":"x"}`, "line 1: event without type"},
		{"result without label", `{"type":"result"}`, "line 1: result event without label"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), FormatJSONL)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	input := `
- type: message
  text: list files
- type: chat_delta
  text: |
    ` + "```sh" + `
    ls -la
    ` + "```" + `
- type: result
  label: shell
  icon: "$"
  payload:
    exit: 0
    files: [a, b]
- type: done
`
	events, err := Decode(strings.NewReader(input), FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("len(events) = %d, want 4", len(events))
	}
	if !strings.HasPrefix(events[1].Text, "```sh\nls -la") {
		t.Errorf("delta text = %q", events[1].Text)
	}
	if events[2].Icon != "$" || events[2].Label != "shell" {
		t.Errorf("result = %+v", events[2])
	}
	if string(events[2].Payload) != `{"exit":0,"files":["a","b"]}` {
		t.Errorf("payload = %s", events[2].Payload)
	}
}

func TestDecodeYAMLEmpty(t *testing.T) {
	events, err := Decode(strings.NewReader(""), FormatYAML)
	if err != nil || len(events) != 0 {
		t.Errorf("Decode(empty) = %v, %v", events, err)
	}
}

func TestDecodeYAMLInvalidEvent(t *testing.T) {
	_, err := Decode(strings.NewReader("- type: done\n- type: bogus\n"), FormatYAML)
	if err == nil || !strings.Contains(err.Error(), "event 2") {
		t.Errorf("error = %v, want event 2 reported", err)
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, err := Decode(strings.NewReader(""), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"run.jsonl", FormatJSONL, false},
		{"run.NDJSON", FormatJSONL, false},
		{"run.yml", FormatYAML, false},
		{"answer.md", FormatMarkdown, false},
		{"answer.pdf", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestFromMarkdown(t *testing.T) {
	events := FromMarkdown("q", "héllo wörld", 4)
	if events[0].Type != EventMessage || events[0].Text != "q" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[len(events)-1].Type != EventDone {
		t.Errorf("last event = %+v", events[len(events)-1])
	}

	var b strings.Builder
	for _, ev := range events[1 : len(events)-1] {
		if ev.Type != EventChatDelta {
			t.Fatalf("middle event type = %q", ev.Type)
		}
		if n := len([]rune(ev.Text)); n > 4 {
			t.Errorf("chunk %q has %d runes", ev.Text, n)
		}
		b.WriteString(ev.Text)
	}
	if b.String() != "héllo wörld" {
		t.Errorf("chunks join to %q", b.String())
	}
}

func TestLoadMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.md")
	if err := os.WriteFile(path, []byte("# Hi\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	events, err := Load(path, 2)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if events[0].Text != "answer.md" {
		t.Errorf("prompt = %q, want file name", events[0].Text)
	}
}

func TestReplay(t *testing.T) {
	events := []Event{message("a"), delta("b"), {Type: EventDone, DelayMS: 2}}
	var got []Event
	for ev := range Replay(context.Background(), events, 4, time.Millisecond) {
		got = append(got, ev)
	}
	if len(got) != len(events) {
		t.Fatalf("replayed %d events, want %d", len(got), len(events))
	}
	for i := range events {
		if got[i].Type != events[i].Type {
			t.Errorf("event %d type = %q, want %q", i, got[i].Type, events[i].Type)
		}
	}
}

func TestReplayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events := []Event{message("a"), {Type: EventDone, DelayMS: 60_000}}
	ch := Replay(ctx, events, 1, 0)

	if ev := <-ch; ev.Type != EventMessage {
		t.Fatalf("first event = %+v", ev)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("no event expected after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
