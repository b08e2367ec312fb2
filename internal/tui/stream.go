package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"streamview/internal/feed"
)

// ─── Messages sent from the feed goroutine to Bubble Tea ────────────────────

type feedEventMsg struct {
	ev feed.Event
}

type feedClosedMsg struct{}

type feedErrMsg struct {
	err error
}

// Source opens the event feed. It must close the channel when ctx is
// cancelled.
type Source func(ctx context.Context) (<-chan feed.Event, error)

// ─── Stream command ─────────────────────────────────────────────────────────
//
// beginStream opens the source and hands its channel to the model; each
// waitForStream call reads one event and the model's Update dispatches
// another after handling it.

type streamOpenedMsg struct {
	ch <-chan feed.Event
}

func beginStream(ctx context.Context, src Source) tea.Cmd {
	return func() tea.Msg {
		ch, err := src(ctx)
		if err != nil {
			return feedErrMsg{err: err}
		}
		return streamOpenedMsg{ch: ch}
	}
}

// waitForStream reads the next event from the channel.
func waitForStream(ch <-chan feed.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return feedEventMsg{ev: ev}
	}
}
