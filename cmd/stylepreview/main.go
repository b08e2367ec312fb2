// Command stylepreview prints one sample answer under several code and prose
// styles, for picking render.code_style and render.glamour_style values.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"

	"streamview/internal/display"
	"streamview/internal/render"
	"streamview/internal/segment"
)

const sample = "Retry with backoff and give up after five attempts:\n\n" +
	"```go retry.go\n" +
	"for attempt := 1; attempt <= 5; attempt++ {\n" +
	"\tif err := call(ctx); err == nil {\n" +
	"\t\treturn nil\n" +
	"\t}\n" +
	"\ttime.Sleep(time.Duration(attempt) * 100 * time.Millisecond)\n" +
	"}\n" +
	"```\n\n" +
	"- **bold** and `inline code`\n- a [link](https://example.com)\n"

func main() {
	codeStyles := flag.String("code", "monokai,dracula,github,nord", "Comma-separated chroma styles")
	proseStyles := flag.String("prose", "dark,light,notty", "Comma-separated glamour styles")
	width := flag.Int("width", 72, "Render width")
	flag.Parse()

	segs := segment.Parse(sample)

	for _, style := range split(*codeStyles) {
		opts := render.DefaultOptions()
		opts.Width = *width
		opts.CodeStyle = style
		opts.Profile = termenv.EnvColorProfile()
		preview("code: "+style, opts, segs)
	}

	for _, style := range split(*proseStyles) {
		opts := render.DefaultOptions()
		opts.Width = *width
		opts.Prose = render.ProseGlamour
		opts.GlamourStyle = style
		opts.Profile = termenv.EnvColorProfile()
		preview("prose: "+style, opts, segs)
	}
	fmt.Println()
}

func preview(title string, opts render.Options, segs []segment.Segment) {
	display.Header(title)
	r, err := render.New(opts)
	if err != nil {
		display.Error(err.Error())
		os.Exit(1)
	}
	fmt.Println(r.Segments(segs))
}

func split(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
