package feed

import (
	"context"
	"time"
)

// DefaultReplayDelay is the pause before events that carry no delay.
const DefaultReplayDelay = 30 * time.Millisecond

// Replay emits events on the returned channel, pausing before each one for
// its own delay (or def when it has none) divided by speed. A speed of zero
// or less means 1. The channel closes after the last event or when ctx is
// cancelled.
func Replay(ctx context.Context, events []Event, speed float64, def time.Duration) <-chan Event {
	if speed <= 0 {
		speed = 1
	}
	ch := make(chan Event)

	go func() {
		defer close(ch)

		timer := time.NewTimer(0)
		defer timer.Stop()
		<-timer.C

		for _, ev := range events {
			delay := ev.Delay()
			if delay <= 0 {
				delay = def
			}
			delay = time.Duration(float64(delay) / speed)

			if delay > 0 {
				timer.Reset(delay)
				select {
				case <-ctx.Done():
					return
				case <-timer.C:
				}
			}

			select {
			case <-ctx.Done():
				return
			case ch <- ev:
			}
		}
	}()

	return ch
}
