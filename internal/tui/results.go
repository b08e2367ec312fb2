package tui

import (
	"fmt"
	"strings"

	"streamview/internal/disclosure"
	"streamview/internal/render"
)

// resultsPanel lists the current turn's results. Expansion is keyed by
// producer label, so it survives new items arriving and reordering.
type resultsPanel struct {
	items    []disclosure.Item
	expanded disclosure.Set
	cursor   int
}

func (p *resultsPanel) setItems(items []disclosure.Item) {
	p.items = items
	if p.cursor >= len(items) {
		p.cursor = max(len(items)-1, 0)
	}
}

func (p *resultsPanel) move(delta int) {
	if len(p.items) == 0 {
		return
	}
	p.cursor = min(max(p.cursor+delta, 0), len(p.items)-1)
}

func (p *resultsPanel) toggle() {
	if len(p.items) == 0 {
		return
	}
	p.expanded = disclosure.Toggle(p.expanded, p.items[p.cursor].Label)
}

func (p resultsPanel) view(r *render.Renderer, focused bool) string {
	if len(p.items) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(resultsHeaderStyle.Render(fmt.Sprintf("Results (%d)", len(p.items))))

	for i, it := range p.items {
		b.WriteByte('\n')
		open := disclosure.IsExpanded(p.expanded, it.Label)

		marker := "▸"
		if open {
			marker = "▾"
		}
		cursor := "  "
		if focused && i == p.cursor {
			cursor = resultCursorStyle.Render("❯ ")
		}
		icon := it.Icon
		if icon == "" {
			icon = "•"
		}

		line := cursor + marker + " " + icon + " " + resultLabelStyle.Render(it.Label)
		if it.Summary != "" {
			line += dimStyle.Render(" · " + it.Summary)
		}
		b.WriteString(line)

		if !open {
			continue
		}
		if it.Detail != "" {
			b.WriteByte('\n')
			b.WriteString(resultDetailStyle.Render(r.Text(it.Detail)))
		}
		if payload := r.Payload(it.Payload); payload != "" {
			b.WriteByte('\n')
			b.WriteString(resultDetailStyle.Render(payload))
		}
	}
	return b.String()
}
