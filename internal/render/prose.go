package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"streamview/internal/segment"
)

// ─── Markdown (lightweight in-house renderer) ──────────────────────────────
//
// Fast line-by-line rendering of prose segments. Supports headers, bold,
// italic, inline code, lists, blockquotes, links, horizontal rules and pipe
// tables. Fenced code normally arrives as its own segment; a fence seen
// here is one still being streamed.

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiDim       = "\033[2m"
	ansiItalic    = "\033[3m"
	ansiUnderline = "\033[4m"

	ansiHeading = "\033[1;97m"     // bold bright white, all header levels
	ansiInfo    = "\033[38;5;39m"  // cyan 39, links
	ansiWarning = "\033[38;5;220m" // yellow 220, inline code
	ansiAccent  = "\033[38;5;73m"  // teal 73, │ ── and numbered dots
	ansiBody    = "\033[38;5;252m" // light 252, body text
)

// renderProse renders a prose segment. Consecutive pipe-table lines are
// rendered as one table; other lines go through renderMarkdownLine and are
// wrapped to width when width > 0. A trailing fence that has not closed yet
// is drawn as an open frame.
func renderProse(text string, width int, plain bool) string {
	if text == "" {
		return ""
	}

	var out []string
	f, open := segment.Open(text)
	body := ""
	if open {
		body = text[f.Body:]
		text = strings.TrimSuffix(text[:f.Start], "\n")
	}
	if text != "" {
		out = append(out, renderLines(text, width))
	}
	if open {
		out = append(out, renderOpenFence(f, body))
	}

	result := strings.Join(out, "\n")
	if plain {
		return ansi.Strip(result)
	}
	return result
}

func renderLines(text string, width int) string {
	lines := strings.Split(text, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		if isTableLine(lines[i]) {
			j := i
			for j < len(lines) && isTableLine(lines[j]) {
				j++
			}
			if j-i >= 2 {
				out = append(out, renderTable(strings.Join(lines[i:j], "\n"), width))
				i = j - 1
				continue
			}
		}
		rendered := renderMarkdownLine(lines[i])
		if width > 0 {
			rendered = wordwrap.String(rendered, width)
		}
		out = append(out, rendered)
	}
	return strings.Join(out, "\n")
}

// renderOpenFence draws a fence still being streamed, dimmed until the
// closer arrives.
func renderOpenFence(f segment.Fence, body string) string {
	title := f.Language
	if f.FileName != "" {
		title += " · " + f.FileName
	}
	out := []string{fmt.Sprintf("%s┌─ %s ─%s", ansiDim, title, ansiReset)}
	if body != "" {
		for _, line := range strings.Split(strings.TrimSuffix(body, "\n"), "\n") {
			out = append(out, fmt.Sprintf("%s│%s %s%s%s", ansiDim, ansiReset, ansiDim, line, ansiReset))
		}
	}
	out = append(out, fmt.Sprintf("%s╵ …%s", ansiDim, ansiReset))
	return strings.Join(out, "\n")
}

func isTableLine(line string) bool {
	t := strings.TrimSpace(line)
	return len(t) > 1 && strings.HasPrefix(t, "|") && strings.HasSuffix(t, "|")
}

// renderMarkdownLine renders a single line of markdown to styled terminal output.
func renderMarkdownLine(line string) string {
	trimmed := strings.TrimSpace(line)

	// Headers: bold only, no color
	for level := 6; level >= 1; level-- {
		marker := strings.Repeat("#", level) + " "
		if strings.HasPrefix(trimmed, marker) {
			return fmt.Sprintf("%s%s%s", ansiHeading, trimmed[len(marker):], ansiReset)
		}
	}

	// Horizontal rules in teal
	if trimmed == "---" || trimmed == "***" || trimmed == "___" {
		return fmt.Sprintf("%s────────────────────────────────────────%s", ansiAccent, ansiReset)
	}

	// Blockquotes: teal pipe, body text
	if strings.HasPrefix(trimmed, "> ") {
		return fmt.Sprintf("%s│%s %s%s%s", ansiAccent, ansiReset, ansiBody, renderInlineMarkdown(trimmed[2:]), ansiReset)
	}

	// Preserve indentation for lists
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	pad := strings.Repeat(" ", indent)

	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return fmt.Sprintf("%s%s• %s%s", pad, ansiBody, renderInlineMarkdown(trimmed[2:]), ansiReset)
	}

	// Numbered lists: teal number
	if dotIdx := strings.Index(trimmed, ". "); dotIdx > 0 && dotIdx <= 3 {
		num := trimmed[:dotIdx]
		allDigit := true
		for _, c := range num {
			if c < '0' || c > '9' {
				allDigit = false
				break
			}
		}
		if allDigit {
			return fmt.Sprintf("%s%s%s.%s %s%s%s", pad, ansiAccent, num, ansiReset, ansiBody, renderInlineMarkdown(trimmed[dotIdx+2:]), ansiReset)
		}
	}

	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s%s%s", ansiBody, renderInlineMarkdown(line), ansiReset)
}

// renderInlineMarkdown handles inline formatting: **bold**, *italic*, `code`, [links](url)
func renderInlineMarkdown(text string) string {
	var out strings.Builder
	i := 0
	for i < len(text) {
		// Bold: **text**
		if i+3 < len(text) && text[i] == '*' && text[i+1] == '*' {
			end := strings.Index(text[i+2:], "**")
			if end > 0 {
				out.WriteString(ansiBold)
				out.WriteString(renderInlineMarkdown(text[i+2 : i+2+end]))
				out.WriteString(ansiReset)
				i += 4 + end
				continue
			}
		}

		// Italic: *text*
		if text[i] == '*' && (i == 0 || text[i-1] == ' ') {
			end := strings.IndexByte(text[i+1:], '*')
			if end > 0 {
				out.WriteString(ansiItalic)
				out.WriteString(text[i+1 : i+1+end])
				out.WriteString(ansiReset)
				i += 2 + end
				continue
			}
		}

		// Inline code in yellow
		if text[i] == '`' {
			end := strings.IndexByte(text[i+1:], '`')
			if end >= 0 {
				out.WriteString(ansiWarning)
				out.WriteString(text[i+1 : i+1+end])
				out.WriteString(ansiReset)
				i += 2 + end
				continue
			}
		}

		// Links: [text](url)
		if text[i] == '[' {
			cb := strings.IndexByte(text[i:], ']')
			if cb > 1 && i+cb+1 < len(text) && text[i+cb+1] == '(' {
				cp := strings.IndexByte(text[i+cb+1:], ')')
				if cp > 0 {
					linkText := text[i+1 : i+cb]
					url := text[i+cb+2 : i+cb+1+cp]
					out.WriteString(ansiUnderline)
					out.WriteString(ansiInfo)
					out.WriteString(linkText)
					out.WriteString(ansiReset)
					out.WriteString(ansiInfo)
					out.WriteString(" (")
					out.WriteString(url)
					out.WriteString(")")
					out.WriteString(ansiReset)
					i += cb + 1 + cp + 1
					continue
				}
			}
		}

		out.WriteByte(text[i])
		i++
	}
	return out.String()
}

// renderTable formats a markdown pipe table into a boxed terminal table,
// capping column widths so the table fits maxWidth.
func renderTable(raw string, maxWidth int) string {
	type row struct {
		cells []string
		isSep bool
	}
	var rows []row
	indent := ""

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indent == "" {
			indent = strings.Repeat(" ", len(line)-len(strings.TrimLeft(line, " \t")))
		}
		parts := strings.Split(strings.Trim(strings.TrimSpace(line), "|"), "|")
		cells := make([]string, len(parts))
		isSep := true
		for i, p := range parts {
			cells[i] = strings.TrimSpace(p)
			for _, c := range cells[i] {
				if c != '-' && c != ':' && c != ' ' {
					isSep = false
				}
			}
		}
		rows = append(rows, row{cells: cells, isSep: isSep})
	}
	if len(rows) == 0 {
		return ""
	}

	numCols := 0
	for _, r := range rows {
		if len(r.cells) > numCols {
			numCols = len(r.cells)
		}
	}
	widths := make([]int, numCols)
	for _, r := range rows {
		if r.isSep {
			continue
		}
		for i, cell := range r.cells {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const minColWidth = 8
	if maxWidth <= 0 {
		maxWidth = 100
	}
	available := maxWidth - (3*numCols + 1)
	if available < numCols*minColWidth {
		available = numCols * minColWidth
	}
	total, widest := 0, 0
	for _, w := range widths {
		total += w
		widest = max(widest, w)
	}
	if total > available {
		// Smallest column cap that keeps the total within available.
		lo, hi := minColWidth, widest
		colCap := widest
		for lo <= hi {
			mid := (lo + hi) / 2
			sum := 0
			for _, w := range widths {
				sum += min(w, mid)
			}
			if sum <= available {
				colCap = mid
				hi = mid - 1
			} else {
				lo = mid + 1
			}
		}
		for i := range widths {
			widths[i] = min(widths[i], colCap)
		}
	}

	sepLine := func(left, mid, right string) string {
		var sb strings.Builder
		sb.WriteString(ansiAccent + left)
		for i, w := range widths {
			sb.WriteString(strings.Repeat("─", w+2))
			if i < len(widths)-1 {
				sb.WriteString(mid)
			}
		}
		sb.WriteString(right + ansiReset)
		return sb.String()
	}

	var out strings.Builder
	out.WriteString(indent + sepLine("┌", "┬", "┐") + "\n")
	sawSep := false
	for rowIdx, r := range rows {
		if r.isSep {
			sawSep = true
			out.WriteString(indent + sepLine("├", "┼", "┤") + "\n")
			continue
		}
		if rowIdx == 1 && !sawSep {
			out.WriteString(indent + sepLine("├", "┼", "┤") + "\n")
		}

		cellLines := make([][]string, numCols)
		height := 1
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(r.cells) {
				cell = r.cells[i]
			}
			cellLines[i] = wrapCell(cell, widths[i])
			height = max(height, len(cellLines[i]))
		}

		for lineIdx := 0; lineIdx < height; lineIdx++ {
			out.WriteString(indent + ansiAccent + "│" + ansiReset)
			for i := 0; i < numCols; i++ {
				cell := ""
				if lineIdx < len(cellLines[i]) {
					cell = cellLines[i][lineIdx]
				}
				color := ansiBody
				if rowIdx == 0 {
					color = ansiBold
				}
				padding := strings.Repeat(" ", max(0, widths[i]-runewidth.StringWidth(cell)))
				out.WriteString(" " + color + cell + ansiReset + padding + " ")
				out.WriteString(ansiAccent + "│" + ansiReset)
			}
			out.WriteString("\n")
		}
	}
	out.WriteString(indent + sepLine("└", "┴", "┘"))
	return out.String()
}

// wrapCell splits text into lines of at most maxWidth columns, breaking at
// spaces in the second half of a line and hard-wrapping otherwise.
func wrapCell(text string, maxWidth int) []string {
	if maxWidth <= 0 || runewidth.StringWidth(text) <= maxWidth {
		return []string{text}
	}
	var lines []string
	runes := []rune(text)
	for runewidth.StringWidth(string(runes)) > maxWidth {
		split := 0
		w := 0
		for split < len(runes) && w+runewidth.RuneWidth(runes[split]) <= maxWidth {
			w += runewidth.RuneWidth(runes[split])
			split++
		}
		if split == 0 {
			split = 1
		}
		brk := split
		for brk > split/2 && runes[brk] != ' ' {
			brk--
		}
		if brk > split/2 {
			split = brk
		}
		lines = append(lines, string(runes[:split]))
		runes = []rune(strings.TrimLeft(string(runes[split:]), " "))
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return lines
}
