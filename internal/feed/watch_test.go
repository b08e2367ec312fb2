package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func next(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed early")
		}
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestWatchFollowsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.md")
	if err := os.WriteFile(path, []byte("Hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path, WatchOptions{MinInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if ev := next(t, ch); ev.Type != EventMessage || ev.Text != "answer.md" {
		t.Errorf("first event = %+v", ev)
	}
	if ev := next(t, ch); ev.Type != EventChatFull || ev.Text != "Hello" {
		t.Errorf("initial read = %+v", ev)
	}

	if err := os.WriteFile(path, []byte("Hello, world"), 0o600); err != nil {
		t.Fatal(err)
	}
	for {
		ev := next(t, ch)
		if ev.Type != EventChatFull {
			t.Fatalf("unexpected event %+v", ev)
		}
		if ev.Text == "Hello, world" {
			break
		}
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if ev := next(t, ch); ev.Type != EventDone {
		t.Errorf("after remove: %+v, want done", ev)
	}
}

func TestWatchIdle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.md")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	ch, err := Watch(context.Background(), path, WatchOptions{Idle: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	next(t, ch)
	next(t, ch)
	if ev := next(t, ch); ev.Type != EventDone {
		t.Errorf("after idle: %+v, want done", ev)
	}
}

func TestWatchMissingDir(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "a.md"), WatchOptions{})
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
