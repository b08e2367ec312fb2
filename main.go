package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"streamview/internal/config"
	"streamview/internal/disclosure"
	"streamview/internal/display"
	"streamview/internal/feed"
	"streamview/internal/logger"
	"streamview/internal/render"
	"streamview/internal/reveal"
	"streamview/internal/segment"
	"streamview/internal/tui"
)

// Set with -ldflags at release time.
var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

const longDesc = `Streamview replays assistant output in the terminal: prose is rendered as
markdown, fenced code blocks are highlighted and revealed as they stream, and
agent results can be expanded in place.

Inputs:
  *.jsonl, *.ndjson   one event per line ({"type":"chat_delta","text":"..."})
  *.yaml, *.yml       a list of events
  *.md, *.txt         a finished answer, streamed in chunks`

// globals holds the persistent flags shared by every command.
type globals struct {
	profile string
	debug   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		display.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:           "streamview",
		Short:         "Render streaming assistant output in the terminal",
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&g.profile, "profile", "", "Use a named config profile")
	cmd.PersistentFlags().BoolVarP(&g.debug, "debug", "d", false, "Enable debug logging")

	cmd.AddCommand(
		newViewCmd(g),
		newWatchCmd(g),
		newRenderCmd(g),
		newSegmentsCmd(g),
		newEventsCmd(g),
		newConfigCmd(g),
		newProfilesCmd(g),
		newVersionCmd(),
	)
	return cmd
}

// ─── view ───────────────────────────────────────────────────────────────────

func newViewCmd(g *globals) *cobra.Command {
	var speed float64
	var inline bool

	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Replay a recorded answer in the interactive viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("speed") {
				if speed <= 0 {
					return fmt.Errorf("--speed must be positive")
				}
				cfg.Replay.Speed = speed
			}

			events, err := feed.Load(args[0], cfg.Replay.Chunk)
			if err != nil {
				return err
			}

			log, closeLog, err := g.logger(cfg, true)
			if err != nil {
				return err
			}
			defer closeLog()

			src := func(ctx context.Context) (<-chan feed.Event, error) {
				return feed.Replay(ctx, events, cfg.Replay.Speed, cfg.Replay.Delay()), nil
			}
			return runTUI(contextOf(cmd), cfg, log, src, filepath.Base(args[0]), inline)
		},
	}

	cmd.Flags().Float64Var(&speed, "speed", 1, "Replay speed multiplier")
	cmd.Flags().BoolVar(&inline, "inline", false, "Stay in the normal screen buffer")
	return cmd
}

// ─── watch ──────────────────────────────────────────────────────────────────

func newWatchCmd(g *globals) *cobra.Command {
	var inline bool

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Follow a file another process is writing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			log, closeLog, err := g.logger(cfg, true)
			if err != nil {
				return err
			}
			defer closeLog()

			path := args[0]
			src := func(ctx context.Context) (<-chan feed.Event, error) {
				return feed.Watch(ctx, path, feed.WatchOptions{
					Idle:        cfg.Watch.Idle(),
					MinInterval: cfg.Watch.MinInterval(),
					Logger:      log,
				})
			}
			return runTUI(contextOf(cmd), cfg, log, src, filepath.Base(path), inline)
		},
	}

	cmd.Flags().BoolVar(&inline, "inline", false, "Stay in the normal screen buffer")
	return cmd
}

func runTUI(ctx context.Context, cfg *config.Config, log *slog.Logger, src tui.Source, title string, inline bool) error {
	r, err := newRenderer(cfg, termenv.EnvColorProfile())
	if err != nil {
		return err
	}

	log.Debug("starting viewer", "title", title, "profile", config.ProfileName(cfg.Profile))
	return tui.Run(ctx, tui.Options{
		Source:         src,
		Renderer:       r,
		RevealInterval: cfg.Reveal.Interval(),
		RevealBatch:    cfg.Reveal.Batch,
		Title:          title,
		Version:        "v" + version,
		Logger:         log,
		Inline:         inline,
	})
}

// ─── render ─────────────────────────────────────────────────────────────────

func newRenderCmd(g *globals) *cobra.Command {
	var animate, plain bool
	var width int

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Print the final answer once, rendered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("width") {
				cfg.Render.Width = width
			}
			profile := termenv.EnvColorProfile()
			if plain {
				profile = termenv.Ascii
			}
			r, err := newRenderer(cfg, profile)
			if err != nil {
				return err
			}

			content, results, err := loadAnswer(args[0], cfg.Replay.Chunk)
			if err != nil {
				return err
			}
			segs := segment.Parse(content)

			log, closeLog, err := g.logger(cfg, false)
			if err != nil {
				return err
			}
			defer closeLog()
			log.Debug("rendering", "file", args[0], "segments", len(segs), "results", len(results))

			out := cmd.OutOrStdout()
			if !animate {
				fmt.Fprintln(out, r.Segments(segs))
			} else {
				ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
				defer stop()
				if err := animateSegments(ctx, out, r, segs, cfg); err != nil {
					return err
				}
			}

			printResults(out, results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&animate, "animate", false, "Reveal code blocks progressively")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable colors")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "Wrap width (0 = no wrapping)")
	return cmd
}

func animateSegments(ctx context.Context, w io.Writer, r *render.Renderer, segs []segment.Segment, cfg *config.Config) error {
	for _, s := range segs {
		if s.IsText() {
			if out := r.Text(s.Value); out != "" {
				fmt.Fprintln(w, out)
			}
			continue
		}

		frame := display.NewFrame(w)
		err := reveal.Run(ctx, s.Value, cfg.Reveal.Interval(), cfg.Reveal.Batch, func(displayed string) {
			if displayed == s.Value {
				frame.Draw(r.Code(s))
				return
			}
			frame.Draw(r.CodePartial(s, displayed))
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				frame.Draw(r.Code(s))
				continue
			}
			return err
		}
	}
	return nil
}

func printResults(w io.Writer, results []disclosure.Item) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s%s%s\n", display.Bold+display.Magenta, fmt.Sprintf("Results (%d)", len(results)), display.Reset)
	for _, it := range results {
		icon := it.Icon
		if icon == "" {
			icon = "•"
		}
		line := fmt.Sprintf("  %s %s", icon, it.Label)
		if it.Summary != "" {
			line += display.Dim + " · " + it.Summary + display.Reset
		}
		fmt.Fprintln(w, line)
	}
}

// ─── segments ───────────────────────────────────────────────────────────────

func newSegmentsCmd(g *globals) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "segments <file>",
		Short: "Print the parsed segments of the final answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			content, _, err := loadAnswer(args[0], cfg.Replay.Chunk)
			if err != nil {
				return err
			}
			return writeSegments(cmd.OutOrStdout(), segment.Parse(content), format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "json", "Output format: json, yaml or list")
	return cmd
}

func writeSegments(w io.Writer, segs []segment.Segment, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(segs, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding segments: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(segs); err != nil {
			return fmt.Errorf("encoding segments: %w", err)
		}
		return enc.Close()
	case "list":
		for i, s := range segs {
			label := display.KindLabel(s.Kind)
			preview := truncate(strings.ReplaceAll(s.Value, "\n", "⏎"), 60)
			switch {
			case s.IsCode() && s.FileName != "":
				fmt.Fprintf(w, "%3d  %s  %s%s · %s%s  %s\n", i, label, display.Cyan, s.Language, s.FileName, display.Reset, preview)
			case s.IsCode():
				fmt.Fprintf(w, "%3d  %s  %s%s%s  %s\n", i, label, display.Cyan, s.Language, display.Reset, preview)
			default:
				fmt.Fprintf(w, "%3d  %s  %s\n", i, label, preview)
			}
		}
	default:
		return fmt.Errorf("unknown output format %q (valid: json, yaml, list)", format)
	}
	return nil
}

// ─── events ─────────────────────────────────────────────────────────────────

func newEventsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "events <file>",
		Short: "List the events of a recorded feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			events, err := feed.Load(args[0], cfg.Replay.Chunk)
			if err != nil {
				return err
			}
			writeEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}
}

func writeEvents(w io.Writer, events []feed.Event) {
	for i, ev := range events {
		var detail string
		switch ev.Type {
		case feed.EventResult:
			detail = ev.Label
			if ev.Summary != "" {
				detail += " · " + ev.Summary
			}
		default:
			detail = strings.ReplaceAll(ev.Text, "\n", "⏎")
		}
		line := fmt.Sprintf("%3d  %s", i, display.EventLabel(ev.Type))
		if detail != "" {
			line += "  " + truncate(detail, 60)
		}
		if d := ev.Delay(); d > 0 {
			line += display.Dim + " +" + d.String() + display.Reset
		}
		fmt.Fprintln(w, line)
	}
}

// ─── config ─────────────────────────────────────────────────────────────────

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the current configuration",
		Long: "Show the current configuration.\n\nKeys:\n  " + strings.Join(config.Keys(), "\n  ") +
			"\n\nEnvironment variables " + config.EnvPrefix + "_<KEY> override the file, e.g. " +
			config.EnvPrefix + "_REVEAL_BATCH=5.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.profile)
			if err != nil {
				return err
			}
			showConfig(cfg)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(g.profile)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			display.Success(fmt.Sprintf("%s set to %s", args[0], args[1]))
			return nil
		},
	})
	return cmd
}

func showConfig(cfg *config.Config) {
	display.Header("Streamview Configuration")

	display.Info("Profile:", config.ProfileName(cfg.Profile))
	display.Info("Reveal:", fmt.Sprintf("%d chars every %s", cfg.Reveal.Batch, cfg.Reveal.Interval()))
	display.Info("Prose renderer:", cfg.Render.Prose)
	if cfg.Render.Prose == render.ProseGlamour {
		display.Info("Glamour style:", cfg.Render.GlamourStyle)
	}
	display.Info("Code style:", cfg.Render.CodeStyle)

	width := "terminal"
	if cfg.Render.Width > 0 {
		width = fmt.Sprintf("%d", cfg.Render.Width)
	}
	display.Info("Width:", width)
	display.Info("Replay:", fmt.Sprintf("×%g, %s default delay, %d-char chunks", cfg.Replay.Speed, cfg.Replay.Delay(), cfg.Replay.Chunk))
	display.Info("Watch idle:", cfg.Watch.Idle().String())

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = display.Dim + "(not set)" + display.Reset
	}
	display.Info("Log file:", logFile)
	display.Info("Log level:", cfg.Log.Level+" / "+cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		fmt.Println()
		display.Warn(err.Error())
	}
	fmt.Println()
}

// ─── profiles ───────────────────────────────────────────────────────────────

func newProfilesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List all config profiles",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}

			display.Header(fmt.Sprintf("Profiles (%d)", len(profiles)))

			if len(profiles) == 0 {
				display.Warn("No profiles found.")
				return nil
			}

			for _, p := range profiles {
				marker := " "
				if p == config.ProfileName(g.profile) {
					marker = display.Green + "●" + display.Reset
				}
				fmt.Printf("  %s %s\n", marker, p)
			}
			fmt.Println()
			return nil
		},
	}
}

// ─── version ────────────────────────────────────────────────────────────────

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

func versionString() string {
	s := "streamview " + version
	if commit != "" {
		s += " (" + truncate(commit, 10) + ")"
	}
	if date != "" {
		s += " built " + display.FormatTime(date)
	}
	return s
}

// ─── helpers ────────────────────────────────────────────────────────────────

// load reads and validates the active profile's configuration.
func (g *globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.profile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logger builds the command logger. While the TUI owns the terminal, logs
// go to the configured file, or nowhere when none is set.
func (g *globals) logger(cfg *config.Config, tuiActive bool) (*slog.Logger, func(), error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	opts := []logger.Option{
		logger.WithLevel(level),
		logger.WithJSON(cfg.Log.Format == "json"),
		logger.WithPrefix("streamview"),
	}
	if g.debug {
		opts = append(opts, logger.WithDebug(true))
	}

	if !tuiActive {
		return logger.New(opts...), func() {}, nil
	}
	if cfg.Log.File == "" {
		return logger.Nop(), func() {}, nil
	}
	f, err := logger.OpenFile(cfg.Log.File)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, logger.WithWriter(f))
	return logger.New(opts...), func() { f.Close() }, nil
}

func newRenderer(cfg *config.Config, profile termenv.Profile) (*render.Renderer, error) {
	opts := render.DefaultOptions()
	opts.Width = cfg.Render.Width
	opts.Prose = cfg.Render.Prose
	opts.GlamourStyle = cfg.Render.GlamourStyle
	opts.CodeStyle = cfg.Render.CodeStyle
	opts.Profile = profile
	return render.New(opts)
}

// loadAnswer folds a recorded feed into the final answer of its last turn.
func loadAnswer(path string, chunk int) (string, []disclosure.Item, error) {
	events, err := feed.Load(path, chunk)
	if err != nil {
		return "", nil, err
	}
	proc := feed.NewProcessor()
	var u feed.Update
	for _, ev := range events {
		u = proc.Process(ev)
	}
	return u.Content, u.Results, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
