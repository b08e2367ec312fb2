// Package feed turns recorded or live assistant output into per-turn state:
// the accumulated answer, whether it is still streaming, the agent results
// seen so far and the latest status line. It has no dependency on Bubble Tea.
package feed

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"streamview/internal/disclosure"
)

// ─── Event types ────────────────────────────────────────────────────────────

const (
	EventMessage   = "message"    // new turn; Text is the user prompt
	EventChatDelta = "chat_delta" // Text is appended to the answer
	EventChatFull  = "chat_full"  // Text replaces the whole answer
	EventProgress  = "progress"   // status line
	EventResult    = "result"     // agent result item
	EventError     = "error"      // producer failure; ends the turn
	EventDone      = "done"       // turn complete
)

// Event is one record of assistant output.
type Event struct {
	Type    string          `json:"type" yaml:"type"`
	Text    string          `json:"text,omitempty" yaml:"text,omitempty"`
	Label   string          `json:"label,omitempty" yaml:"label,omitempty"`
	Icon    string          `json:"icon,omitempty" yaml:"icon,omitempty"`
	Detail  string          `json:"detail,omitempty" yaml:"detail,omitempty"`
	Summary string          `json:"summary,omitempty" yaml:"summary,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty" yaml:"-"`
	DelayMS int             `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty"`
}

// Item converts a result event into a disclosure item.
func (e Event) Item() disclosure.Item {
	return disclosure.Item{
		Label:   e.Label,
		Icon:    e.Icon,
		Detail:  e.Detail,
		Summary: e.Summary,
		Payload: e.Payload,
	}
}

func validate(e Event) error {
	switch e.Type {
	case EventMessage, EventChatDelta, EventChatFull, EventProgress, EventError, EventDone:
		return nil
	case EventResult:
		if e.Label == "" {
			return fmt.Errorf("result event without label")
		}
		return nil
	case "":
		return fmt.Errorf("event without type")
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
}

// ─── Processor ──────────────────────────────────────────────────────────────

// Update is the state of the current turn after an event.
type Update struct {
	TurnID         string
	Prompt         string
	NewTurn        bool // a new turn began with this event
	Content        string
	ContentChanged bool
	Streaming      bool
	Results        []disclosure.Item
	ResultsChanged bool
	Status         string
	Err            string
}

// Processor accumulates events into turn state.
type Processor struct {
	turnID    string
	prompt    string
	content   string
	streaming bool

	results      []disclosure.Item
	seenProgress map[string]bool
	lastStatus   string
	lastErr      string
}

// NewProcessor creates a fresh processor.
func NewProcessor() *Processor {
	return &Processor{seenProgress: make(map[string]bool)}
}

// Process applies one event and returns the resulting turn state.
func (p *Processor) Process(ev Event) Update {
	var u Update

	switch ev.Type {
	case EventMessage:
		p.startTurn(ev.Text)
		u.NewTurn = true

	case EventChatDelta:
		u.NewTurn = p.ensureTurn()
		if ev.Text != "" {
			p.content += ev.Text
			u.ContentChanged = true
		}

	case EventChatFull:
		u.NewTurn = p.ensureTurn()
		if ev.Text != p.content {
			p.content = ev.Text
			u.ContentChanged = true
		}

	case EventProgress:
		u.NewTurn = p.ensureTurn()
		display := extractProgressDisplay(ev.Text)
		key := normalizeProgress(display)
		// Once per turn: a status that comes back later is not shown again.
		if !p.seenProgress[key] {
			p.seenProgress[key] = true
			p.lastStatus = display
		}

	case EventResult:
		u.NewTurn = p.ensureTurn()
		before := len(p.results)
		p.results = disclosure.Dedupe(append(p.results, ev.Item()))
		u.ResultsChanged = len(p.results) != before

	case EventError:
		p.lastErr = ev.Text
		p.streaming = false

	case EventDone:
		p.streaming = false
	}

	return p.snapshot(u)
}

// Flush ends the current turn, e.g. when the stream is cancelled.
func (p *Processor) Flush() Update {
	p.streaming = false
	return p.snapshot(Update{})
}

func (p *Processor) snapshot(u Update) Update {
	u.TurnID = p.turnID
	u.Prompt = p.prompt
	u.Content = p.content
	u.Streaming = p.streaming
	u.Results = p.results
	u.Status = p.lastStatus
	u.Err = p.lastErr
	return u
}

func (p *Processor) startTurn(prompt string) {
	p.turnID = uuid.NewString()
	p.prompt = prompt
	p.content = ""
	p.streaming = true
	p.results = nil
	p.seenProgress = make(map[string]bool)
	p.lastStatus = ""
	p.lastErr = ""
}

// ensureTurn starts an anonymous turn when output arrives without one.
func (p *Processor) ensureTurn() bool {
	if p.turnID != "" {
		return false
	}
	p.startTurn("")
	return true
}

// ─── Helpers ────────────────────────────────────────────────────────────────

var digitsRe = regexp.MustCompile(`\d+`)

// normalizeProgress deduplicates progress messages that differ only in counts.
func normalizeProgress(display string) string {
	return strings.ToLower(digitsRe.ReplaceAllString(strings.TrimSpace(display), "N"))
}

// extractProgressDisplay pulls out just the parenthetical description
// from progress text like "Planner (Searching the web)".
func extractProgressDisplay(text string) string {
	if i := strings.Index(text, "("); i >= 0 {
		if j := strings.LastIndex(text, ")"); j > i {
			return text[i+1 : j]
		}
	}
	return strings.TrimSpace(text)
}
