package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"streamview/internal/feed"
	"streamview/internal/render"
	"streamview/internal/reveal"
)

// ─── Focus ──────────────────────────────────────────────────────────────────

type focusArea int

const (
	focusTranscript focusArea = iota
	focusResults
)

// ─── Model ──────────────────────────────────────────────────────────────────

type model struct {
	width  int
	height int
	ready  bool

	// Bubble Tea components
	keys     keyMap
	spinner  spinner.Model
	viewport viewport.Model

	renderer   *render.Renderer
	revealOpts []reveal.Option
	log        *slog.Logger
	title      string
	version    string

	// Feed state
	ctx       context.Context
	cancel    context.CancelFunc
	source    Source
	proc      *feed.Processor
	stream    <-chan feed.Event
	streaming bool // the feed is open
	stopped   bool // cancelled by the user; later events are dropped

	// Transcript state
	turns   []*turn
	results resultsPanel
	focus   focusArea
	follow  bool // keep the viewport pinned to the bottom
}

func initialModel(ctx context.Context, opts Options) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorOrange)

	ctx, cancel := context.WithCancel(ctx)

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var revealOpts []reveal.Option
	if opts.RevealInterval > 0 {
		revealOpts = append(revealOpts, reveal.WithInterval(opts.RevealInterval))
	}
	if opts.RevealBatch > 0 {
		revealOpts = append(revealOpts, reveal.WithBatch(opts.RevealBatch))
	}

	return model{
		keys:       defaultKeyMap(),
		spinner:    sp,
		viewport:   viewport.New(0, 0),
		renderer:   opts.Renderer,
		revealOpts: revealOpts,
		log:        log,
		title:      opts.Title,
		version:    opts.Version,
		ctx:        ctx,
		cancel:     cancel,
		source:     opts.Source,
		proc:       feed.NewProcessor(),
		streaming:  true,
		follow:     true,
	}
}

// ─── Init ───────────────────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		beginStream(m.ctx, m.source),
	)
}

// ─── Update ─────────────────────────────────────────────────────────────────

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if err := m.renderer.SetWidth(max(m.width-2, 20)); err != nil {
			m.log.Warn("resizing renderer", "err", err)
		}
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.shutdown()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Cancel):
			if m.streaming {
				m.cancelStream()
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.Focus):
			if m.focus == focusTranscript && len(m.results.items) > 0 {
				m.focus = focusResults
			} else {
				m.focus = focusTranscript
			}
			m.refresh()
			return m, nil

		case m.focus == focusResults && key.Matches(msg, m.keys.Up):
			m.results.move(-1)
			m.refresh()
			return m, nil

		case m.focus == focusResults && key.Matches(msg, m.keys.Down):
			m.results.move(1)
			m.refresh()
			return m, nil

		case m.focus == focusResults && key.Matches(msg, m.keys.Toggle):
			m.results.toggle()
			m.refresh()
			return m, nil
		}

	// ── Stream messages ─────────────────────────────────────────────────
	case streamOpenedMsg:
		m.stream = msg.ch
		return m, waitForStream(m.stream)

	case feedEventMsg:
		if m.stopped {
			return m, waitForStream(m.stream)
		}
		u := m.proc.Process(msg.ev)
		cmds = append(cmds, m.apply(u), waitForStream(m.stream))
		m.refresh()
		return m, tea.Batch(cmds...)

	case feedClosedMsg:
		m.stream = nil
		if m.streaming {
			m.streaming = false
			cmds = append(cmds, m.apply(m.proc.Flush()))
			m.log.Debug("feed closed")
		}
		m.refresh()
		return m, tea.Batch(cmds...)

	case feedErrMsg:
		m.streaming = false
		m.log.Error("opening feed", "err", msg.err)
		t := m.current()
		if t == nil {
			t = newTurn("", "")
			m.turns = append(m.turns, t)
		}
		t.err = msg.err.Error()
		t.finish(m.revealOpts)
		m.refresh()
		return m, nil

	case reveal.TickMsg:
		for _, t := range m.turns {
			if cmd, ok := t.updateReveal(msg); ok {
				cmds = append(cmds, cmd)
				break
			}
		}
		m.refresh()
		return m, tea.Batch(cmds...)
	}

	// Update sub-components
	var cmd tea.Cmd

	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	if m.focus == focusTranscript {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		m.follow = m.viewport.AtBottom()
	}

	return m, tea.Batch(cmds...)
}

// apply folds a processor update into the transcript.
func (m *model) apply(u feed.Update) tea.Cmd {
	t := m.current()
	if u.NewTurn || t == nil {
		if t != nil && t.streaming {
			t.finish(m.revealOpts)
		}
		t = newTurn(u.TurnID, u.Prompt)
		m.turns = append(m.turns, t)
		m.results = resultsPanel{expanded: m.results.expanded}
		m.log.Debug("turn started", "turn", u.TurnID, "prompt", u.Prompt)
	}

	t.status = u.Status
	t.err = u.Err
	if u.ResultsChanged {
		t.results = u.Results
		m.results.setItems(u.Results)
	}

	if !u.Streaming {
		if u.ContentChanged || t.streaming {
			t.content = u.Content
			t.finish(m.revealOpts)
			m.log.Debug("turn finished", "turn", t.id, "bytes", len(t.content), "results", len(t.results))
		}
		return nil
	}
	if u.ContentChanged || len(t.segments) == 0 {
		return t.setContent(u.Content, true, m.revealOpts)
	}
	return nil
}

func (m *model) current() *turn {
	if len(m.turns) == 0 {
		return nil
	}
	return m.turns[len(m.turns)-1]
}

// cancelStream stops the feed and ends the in-flight turn with what has
// arrived so far.
func (m *model) cancelStream() {
	m.cancel()
	m.streaming = false
	m.stopped = true
	u := m.proc.Flush()
	if t := m.current(); t != nil && t.streaming {
		t.content = u.Content
		t.cancelled = true
		t.finish(m.revealOpts)
	}
	m.log.Info("stream cancelled")
}

func (m *model) shutdown() {
	m.cancel()
	for _, t := range m.turns {
		t.stop()
	}
}

// ─── View ───────────────────────────────────────────────────────────────────

func (m model) View() string {
	if !m.ready {
		return ""
	}

	var s strings.Builder
	s.WriteString(m.viewport.View())
	s.WriteString("\n")

	if panel := m.results.view(m.renderer, m.focus == focusResults); panel != "" {
		s.WriteString(panel)
		s.WriteString("\n")
	}

	s.WriteString(m.statusLine())
	s.WriteString("\n")
	s.WriteString(separatorStyle.Render(strings.Repeat("─", max(min(m.width, 80), 20))))
	s.WriteString("\n")
	s.WriteString(m.renderHints())

	return s.String()
}

// refresh re-renders the transcript into the viewport and sizes it to the
// space left by the panel, status line and hints.
func (m *model) refresh() {
	if !m.ready {
		return
	}

	chrome := 3 // status, separator, hints
	if panel := m.results.view(m.renderer, m.focus == focusResults); panel != "" {
		chrome += lipgloss.Height(panel)
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 3)
	m.viewport.SetContent(m.renderTranscript())
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m model) renderTranscript() string {
	var parts []string
	header := titleStyle.Render(m.title)
	if m.version != "" {
		header += " " + versionStyle.Render(m.version)
	}
	parts = append(parts, header)

	for _, t := range m.turns {
		parts = append(parts, "", t.view(m.renderer))
	}
	return strings.Join(parts, "\n")
}

func (m model) statusLine() string {
	t := m.current()
	switch {
	case m.streaming:
		status := "Waiting for output..."
		if t != nil {
			if a := t.activity(); a != "" {
				status = a
			} else if t.status != "" {
				status = t.status
			}
		}
		return m.spinner.View() + " " + statusStyle.Render(status)
	case t != nil && t.err != "":
		return errorMsgStyle.Render("✗ " + t.err)
	default:
		return dimStyle.Render(fmt.Sprintf("%d turn(s)", len(m.turns)))
	}
}

// ─── Hint bar ───────────────────────────────────────────────────────────────

func (m model) renderHints() string {
	bindings := []key.Binding{m.keys.Focus, m.keys.Up, m.keys.Down}
	if m.focus == focusResults {
		bindings = append(bindings, m.keys.Toggle)
	}
	if m.streaming {
		bindings = append(bindings, m.keys.Cancel)
	}
	bindings = append(bindings, m.keys.Quit)

	var hints []string
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, hintKeyStyle.Render(h.Key)+" "+hintBarStyle.Render(h.Desc))
	}
	return "  " + strings.Join(hints, "   ")
}
