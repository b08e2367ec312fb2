package tui

import (
	"context"
	"errors"
	"testing"

	"streamview/internal/feed"
)

func TestWaitForStream(t *testing.T) {
	ch := make(chan feed.Event, 1)
	ch <- feed.Event{Type: feed.EventDone}

	msg := waitForStream(ch)()
	got, ok := msg.(feedEventMsg)
	if !ok || got.ev.Type != feed.EventDone {
		t.Fatalf("waitForStream() = %#v", msg)
	}

	close(ch)
	if _, ok := waitForStream(ch)().(feedClosedMsg); !ok {
		t.Error("closed channel should yield feedClosedMsg")
	}

	if waitForStream(nil) != nil {
		t.Error("nil channel should yield no command")
	}
}

func TestBeginStream(t *testing.T) {
	ch := make(chan feed.Event)
	ok := func(context.Context) (<-chan feed.Event, error) { return ch, nil }
	if msg, isOpen := beginStream(context.Background(), ok)().(streamOpenedMsg); !isOpen || msg.ch == nil {
		t.Errorf("beginStream() = %#v", msg)
	}

	fail := func(context.Context) (<-chan feed.Event, error) { return nil, errors.New("no such file") }
	msg, isErr := beginStream(context.Background(), fail)().(feedErrMsg)
	if !isErr || msg.err.Error() != "no such file" {
		t.Errorf("beginStream() = %#v", msg)
	}
}

func TestFeedErrMsgOpensTurn(t *testing.T) {
	m := testModel(t)
	m, _ = send(m, feedErrMsg{err: errors.New("no such file")})
	if m.streaming {
		t.Error("feed error should end streaming")
	}
	if tr := m.current(); tr == nil || tr.err != "no such file" {
		t.Errorf("current turn = %+v", tr)
	}
}
