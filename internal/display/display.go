package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"streamview/internal/segment"
)

const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"
)

func Header(text string) {
	fmt.Printf("\n%s%s%s\n", Bold+Cyan, text, Reset)
	fmt.Println(strings.Repeat("─", min(len(text)+4, 80)))
}

func SubHeader(text string) {
	fmt.Printf("%s%s%s\n", Bold+White, text, Reset)
}

func Success(text string) {
	fmt.Printf("%s✓%s %s\n", Green, Reset, text)
}

func Error(text string) {
	fmt.Fprintf(os.Stderr, "%s✗%s %s\n", Red, Reset, text)
}

func Warn(text string) {
	fmt.Printf("%s!%s %s\n", Yellow, Reset, text)
}

func Info(label, value string) {
	fmt.Printf("  %s%-20s%s %s\n", Dim, label, Reset, value)
}

// KindLabel labels a segment kind for listings.
func KindLabel(k segment.Kind) string {
	switch k {
	case segment.KindCode:
		return Green + "▣ code" + Reset
	case segment.KindText:
		return Blue + "¶ text" + Reset
	default:
		return Gray + k.String() + Reset
	}
}

// EventLabel labels a feed event type.
func EventLabel(eventType string) string {
	labels := map[string]string{
		"message":    White + "📨 Message" + Reset,
		"chat_delta": Green + "💬 Delta" + Reset,
		"chat_full":  Green + "💬 Response" + Reset,
		"progress":   Yellow + "⟳ Progress" + Reset,
		"result":     Magenta + "📎 Result" + Reset,
		"error":      Red + "❌ Error" + Reset,
		"done":       Green + "✓ Done" + Reset,
	}
	if label, ok := labels[eventType]; ok {
		return label
	}
	return Gray + eventType + Reset
}

func FormatTime(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return ts
		}
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// ─── In-place redraw ────────────────────────────────────────────────────────

// Frame repaints a block of lines in place, for animated output outside the
// TUI.
type Frame struct {
	out   *termenv.Output
	lines int
}

func NewFrame(w io.Writer) *Frame {
	return &Frame{out: termenv.NewOutput(w)}
}

// Draw replaces the previously drawn block with s.
func (f *Frame) Draw(s string) {
	if f.lines > 0 {
		f.out.ClearLines(f.lines)
	}
	fmt.Fprintln(f.out, s)
	f.lines = strings.Count(s, "\n") + 1
}
