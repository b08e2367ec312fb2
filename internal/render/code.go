package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// ─── Code frame styles ──────────────────────────────────────────────────────

var (
	codeBorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	codeLangStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78")).
			Bold(true)

	codeFileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Italic(true)

	partialBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("242"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F28C28"))
)

// formatterFor maps a terminal colour profile to a chroma formatter name.
func formatterFor(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal16"
	default:
		return "noop"
	}
}

// highlight applies syntax highlighting, falling back to the raw code when
// no lexer or formatter cooperates.
func (r *Renderer) highlight(code, language string) string {
	if code == "" {
		return ""
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(r.opts.CodeStyle)
	formatter := formatters.Get(formatterFor(r.opts.Profile))

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// frame draws a code body inside a left rule with a language/file header.
func (r *Renderer) frame(language, fileName, body string, partial bool) string {
	border := codeBorderStyle
	if partial {
		border = partialBorderStyle
	}

	header := border.Render("┌─ ") + codeLangStyle.Render(language)
	if fileName != "" {
		header += border.Render(" · ") + codeFileStyle.Render(fileName)
	}

	lines := strings.Split(body, "\n")
	for len(lines) > 1 && strings.TrimSpace(ansi.Strip(lines[len(lines)-1])) == "" {
		lines = lines[:len(lines)-1]
	}
	if partial {
		lines[len(lines)-1] += cursorStyle.Render("▌")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, line := range lines {
		if r.opts.Width > 2 && ansi.StringWidth(line) > r.opts.Width-2 {
			line = ansi.Truncate(line, r.opts.Width-2, "…")
		}
		b.WriteString(border.Render("│ "))
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if partial {
		b.WriteString(border.Render("╵"))
	} else {
		b.WriteString(border.Render("└──"))
	}

	if r.plain() {
		return ansi.Strip(b.String())
	}
	return b.String()
}
