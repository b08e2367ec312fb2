package reveal

import (
	"context"
	"time"
)

// Run reveals full outside Bubble Tea, calling draw with every new prefix
// until the whole string is shown or ctx is done. The ticker is released on
// every return path, and draw is never called after Run returns.
func Run(ctx context.Context, full string, interval time.Duration, batch int, draw func(displayed string)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	var s State
	s = Sync(s, full, true)
	if s.Done() {
		draw(s.Displayed)
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s = Advance(s, full, true, batch)
			draw(s.Displayed)
			if s.Done() {
				return nil
			}
		}
	}
}
