package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"streamview/internal/disclosure"
	"streamview/internal/render"
	"streamview/internal/reveal"
	"streamview/internal/segment"
)

// turn is one prompt and the answer streamed for it. Code block k of the
// answer owns reveals[k].
type turn struct {
	id        string
	prompt    string
	content   string
	streaming bool
	cancelled bool

	segments []segment.Segment
	reveals  []reveal.Model
	results  []disclosure.Item
	status   string
	err      string
}

func newTurn(id, prompt string) *turn {
	return &turn{id: id, prompt: prompt, streaming: true}
}

// setContent re-segments the answer and retargets every code reveal. While
// the turn is in flight only a code block that ends the answer animates;
// every other block is shown whole.
func (t *turn) setContent(content string, streaming bool, opts []reveal.Option) tea.Cmd {
	prev := segment.CodeBlocks(t.segments)
	t.content = content
	t.streaming = streaming
	t.segments = segment.Parse(content)
	blocks := segment.CodeBlocks(t.segments)

	for k := len(blocks); k < len(t.reveals); k++ {
		t.reveals[k] = t.reveals[k].Stop()
	}
	if len(t.reveals) > len(blocks) {
		t.reveals = t.reveals[:len(blocks)]
	}
	for len(t.reveals) < len(blocks) {
		t.reveals = append(t.reveals, reveal.New(opts...))
	}

	last, _ := segment.Last(t.segments)
	var cmds []tea.Cmd
	for k, b := range blocks {
		live := streaming && last.IsCode() && k == len(blocks)-1
		if k < len(prev) && replaced(prev[k], b) {
			t.reveals[k] = t.reveals[k].Reset()
		}
		var cmd tea.Cmd
		t.reveals[k], cmd = t.reveals[k].SetContent(b.Value, live)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// replaced reports whether block k now holds a different block rather
// than a revision of the same one.
func replaced(old, cur segment.Segment) bool {
	return old.Language != cur.Language || old.FileName != cur.FileName
}

// finish shows everything and releases the reveal timers.
func (t *turn) finish(opts []reveal.Option) {
	t.setContent(t.content, false, opts)
	t.stop()
}

func (t *turn) stop() {
	for k := range t.reveals {
		t.reveals[k] = t.reveals[k].Stop()
	}
}

// updateReveal routes a tick to the reveal that scheduled it.
func (t *turn) updateReveal(msg reveal.TickMsg) (tea.Cmd, bool) {
	for k := range t.reveals {
		if t.reveals[k].ID() == msg.ID {
			var cmd tea.Cmd
			t.reveals[k], cmd = t.reveals[k].Update(msg)
			return cmd, true
		}
	}
	return nil, false
}

// activity describes what the in-flight answer is doing right now, or "".
func (t *turn) activity() string {
	if f, open := segment.Open(t.content); open {
		return "Writing " + f.Language + "…"
	}
	for _, rv := range t.reveals {
		if !rv.Done() && !rv.Stopped() {
			shown, total := rv.State().Progress()
			return fmt.Sprintf("Writing… %d/%d", shown, total)
		}
	}
	return ""
}

func (t *turn) view(r *render.Renderer) string {
	var parts []string
	if t.prompt != "" {
		parts = append(parts, userPromptStyle.Render("❯ ")+t.prompt)
	}

	k := 0
	for _, s := range t.segments {
		var out string
		if s.IsCode() {
			rv := t.reveals[k]
			k++
			if rv.Done() {
				out = r.Code(s)
			} else {
				out = r.CodePartial(s, rv.View())
			}
		} else {
			out = r.Text(s.Value)
		}
		if out != "" {
			parts = append(parts, out)
		}
	}

	switch {
	case t.err != "":
		parts = append(parts, errorMsgStyle.Render("✗ "+t.err))
	case t.cancelled:
		parts = append(parts, warnMsgStyle.Render("! Stream cancelled."))
	case !t.streaming:
		parts = append(parts, successMsgStyle.Render("✓ Done"))
	}
	return strings.Join(parts, "\n")
}
