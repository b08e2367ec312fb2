// Package render paints segments for a terminal: prose through the in-house
// markdown renderer or glamour, code through chroma inside a framed block.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"streamview/internal/segment"
)

// Prose renderers.
const (
	ProseBuiltin = "builtin"
	ProseGlamour = "glamour"
)

// Options configures a Renderer.
type Options struct {
	Width        int             // wrap/truncate width; 0 disables
	Prose        string          // ProseBuiltin or ProseGlamour
	GlamourStyle string          // glamour standard style, or "auto"
	CodeStyle    string          // chroma style name
	Profile      termenv.Profile // colour profile used to pick the chroma formatter
	CacheSize    int
}

// DefaultOptions returns builtin prose, monokai code and the colour profile
// detected from the environment.
func DefaultOptions() Options {
	return Options{
		Prose:        ProseBuiltin,
		GlamourStyle: "dark",
		CodeStyle:    "monokai",
		Profile:      termenv.EnvColorProfile(),
	}
}

// Renderer turns segments into styled strings. It memoises completed
// blocks, so it is meant to live as long as the view that owns it.
type Renderer struct {
	opts  Options
	glam  *glamour.TermRenderer
	cache *lru
}

// New builds a Renderer.
func New(opts Options) (*Renderer, error) {
	if opts.Prose == "" {
		opts.Prose = ProseBuiltin
	}
	if opts.CodeStyle == "" {
		opts.CodeStyle = "monokai"
	}
	r := &Renderer{opts: opts, cache: newLRU(opts.CacheSize)}
	if err := r.initProse(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) initProse() error {
	switch r.opts.Prose {
	case ProseBuiltin:
		r.glam = nil
		return nil
	case ProseGlamour:
		style := glamour.WithStandardStyle(r.opts.GlamourStyle)
		if r.opts.GlamourStyle == "" || r.opts.GlamourStyle == "auto" {
			style = glamour.WithAutoStyle()
		}
		opts := []glamour.TermRendererOption{style}
		if r.opts.Width > 0 {
			opts = append(opts, glamour.WithWordWrap(r.opts.Width))
		}
		g, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return fmt.Errorf("creating glamour renderer: %w", err)
		}
		r.glam = g
		return nil
	default:
		return fmt.Errorf("unknown prose renderer %q (valid: %s, %s)", r.opts.Prose, ProseBuiltin, ProseGlamour)
	}
}

// Width returns the current width.
func (r *Renderer) Width() int { return r.opts.Width }

// SetWidth changes the wrap width. Cached output for other widths is kept
// but no longer matches.
func (r *Renderer) SetWidth(width int) error {
	if width == r.opts.Width {
		return nil
	}
	r.opts.Width = width
	return r.initProse()
}

// Stats returns cache hits and misses.
func (r *Renderer) Stats() (hits, misses int) {
	return r.cache.hits, r.cache.misses
}

func (r *Renderer) plain() bool {
	return r.opts.Profile == termenv.Ascii
}

// ─── Segments ───────────────────────────────────────────────────────────────

// Text renders a prose segment. Empty prose renders to "".
func (r *Renderer) Text(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	key := cacheKey{kind: "text", value: value, width: r.opts.Width}
	if out, ok := r.cache.get(key); ok {
		return out
	}

	var out string
	if r.glam != nil {
		rendered, err := r.glam.Render(value)
		if err == nil {
			out = strings.Trim(rendered, "\n")
		}
	}
	if out == "" {
		out = renderProse(value, r.opts.Width, r.plain())
	}

	r.cache.put(key, out)
	return out
}

// Code renders a completed code segment.
func (r *Renderer) Code(seg segment.Segment) string {
	key := cacheKey{kind: "code", language: seg.Language, fileName: seg.FileName, value: seg.Value, width: r.opts.Width}
	if out, ok := r.cache.get(key); ok {
		return out
	}
	out := r.frame(seg.Language, seg.FileName, r.highlight(seg.Value, seg.Language), false)
	r.cache.put(key, out)
	return out
}

// CodePartial renders a code segment of which only displayed is revealed so
// far. Partial output changes every tick and is not cached.
func (r *Renderer) CodePartial(seg segment.Segment, displayed string) string {
	return r.frame(seg.Language, seg.FileName, r.highlight(displayed, seg.Language), true)
}

// Payload renders structured result data verbatim: indented when it is
// valid JSON, as-is otherwise.
func (r *Renderer) Payload(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	key := cacheKey{kind: "payload", value: string(raw), width: r.opts.Width}
	if out, ok := r.cache.get(key); ok {
		return out
	}

	var buf bytes.Buffer
	text := string(raw)
	if err := json.Indent(&buf, raw, "", "  "); err == nil {
		text = buf.String()
	}
	out := r.frame("json", "payload", r.highlight(text, "json"), false)
	r.cache.put(key, out)
	return out
}

// Segments renders a whole parsed answer, skipping empty prose.
func (r *Renderer) Segments(segs []segment.Segment) string {
	var parts []string
	for _, s := range segs {
		var out string
		if s.IsCode() {
			out = r.Code(s)
		} else {
			out = r.Text(s.Value)
		}
		if out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, "\n")
}
