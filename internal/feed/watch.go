package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	// Idle ends the turn when the file has not changed for this long.
	// Zero waits until the file is removed or ctx is cancelled.
	Idle time.Duration
	// MinInterval is the shortest gap between two reads of the file.
	MinInterval time.Duration
	Logger      *slog.Logger
}

// DefaultWatchOptions returns a 50ms read interval and a 10s idle timeout.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Idle:        10 * time.Second,
		MinInterval: 50 * time.Millisecond,
	}
}

// Watch follows a file another process is writing. The first event is a
// message naming the file; every read that changes the content emits
// chat_full; removal, renaming or the idle timeout emits done and closes
// the channel.
func Watch(ctx context.Context, path string, opts WatchOptions) (<-chan Event, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultWatchOptions().MinInterval
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// Watch the directory so the file can be created or replaced atomically.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	fw := &fileWatch{
		path:    abs,
		watcher: w,
		limiter: rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		idle:    opts.Idle,
		log:     log.With("path", abs),
		out:     make(chan Event, 16),
	}
	go fw.run(ctx)
	return fw.out, nil
}

type fileWatch struct {
	path    string
	watcher *fsnotify.Watcher
	limiter *rate.Limiter
	idle    time.Duration
	log     *slog.Logger
	out     chan Event
	last    string
}

func (fw *fileWatch) run(ctx context.Context) {
	defer close(fw.out)
	defer fw.watcher.Close()

	if !fw.send(ctx, Event{Type: EventMessage, Text: filepath.Base(fw.path)}) {
		return
	}
	if !fw.reload(ctx) {
		return
	}

	var idleC <-chan time.Time
	var idleTimer *time.Timer
	if fw.idle > 0 {
		idleTimer = time.NewTimer(fw.idle)
		defer idleTimer.Stop()
		idleC = idleTimer.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				fw.log.Debug("watched file went away", "op", ev.Op.String())
				fw.send(ctx, Event{Type: EventDone})
				return
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
				if err := fw.limiter.Wait(ctx); err != nil {
					return
				}
				if !fw.reload(ctx) {
					return
				}
				if idleTimer != nil {
					idleTimer.Reset(fw.idle)
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("watch error", "err", err)

		case <-idleC:
			fw.log.Debug("watched file idle", "after", fw.idle)
			fw.send(ctx, Event{Type: EventDone})
			return
		}
	}
}

// reload reads the file and emits chat_full when it changed. A missing
// file is not an error: it may not have been created yet.
func (fw *fileWatch) reload(ctx context.Context) bool {
	data, err := os.ReadFile(fw.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fw.log.Warn("reading watched file", "err", err)
		}
		return true
	}
	content := string(data)
	if content == fw.last {
		return true
	}
	fw.last = content
	return fw.send(ctx, Event{Type: EventChatFull, Text: content})
}

func (fw *fileWatch) send(ctx context.Context, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case fw.out <- ev:
		return true
	}
}
