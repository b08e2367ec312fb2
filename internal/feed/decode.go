package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Input formats.
const (
	FormatJSONL    = "jsonl"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 4 * 1024 * 1024

// Delay returns the pause before this event during replay.
func (e Event) Delay() time.Duration {
	return time.Duration(e.DelayMS) * time.Millisecond
}

// FormatFromPath guesses the input format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".md", ".markdown", ".txt":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unrecognised input extension %q (use .jsonl, .yaml or .md)", filepath.Ext(path))
	}
}

// Decode reads events in the given format. Markdown is not an event format;
// use FromMarkdown for it.
func Decode(r io.Reader, format string) ([]Event, error) {
	switch format {
	case FormatJSONL:
		return decodeJSONL(r)
	case FormatYAML:
		return decodeYAML(r)
	default:
		return nil, fmt.Errorf("unsupported event format %q", format)
	}
}

// Load reads a file of events or a markdown answer.
func Load(path string, chunk int) ([]Event, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	if format == FormatMarkdown {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		return FromMarkdown(filepath.Base(path), string(data), chunk), nil
	}

	events, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return events, nil
}

func decodeJSONL(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var events []Event
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := validate(ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}
	return events, nil
}

// yamlEvent carries the payload as a generic tree so it can be re-encoded
// as JSON.
type yamlEvent struct {
	Event   `yaml:",inline"`
	Payload any `yaml:"payload"`
}

func decodeYAML(r io.Reader) ([]Event, error) {
	var raw []yamlEvent
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	events := make([]Event, 0, len(raw))
	for i, y := range raw {
		ev := y.Event
		if y.Payload != nil {
			data, err := json.Marshal(y.Payload)
			if err != nil {
				return nil, fmt.Errorf("event %d: encoding payload: %w", i+1, err)
			}
			ev.Payload = data
		}
		if err := validate(ev); err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// FromMarkdown turns a finished answer into a streamed turn: a message
// carrying prompt, chat deltas of chunk runes each, then done.
func FromMarkdown(prompt, text string, chunk int) []Event {
	if chunk <= 0 {
		chunk = 8
	}
	events := []Event{{Type: EventMessage, Text: prompt}}
	runes := []rune(text)
	for i := 0; i < len(runes); i += chunk {
		end := min(i+chunk, len(runes))
		events = append(events, Event{Type: EventChatDelta, Text: string(runes[i:end])})
	}
	return append(events, Event{Type: EventDone})
}
