package elapsed

import (
	"context"
	"time"
)

// Ticker drives all timers of one live view on a single shared cadence.
type Ticker struct {
	interval time.Duration
}

func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{interval: interval}
}

// Run invokes fn once immediately and then on every tick until ctx ends.
// Cancelling the owning view's context is the only way the loop stops, so a
// navigated-away view never leaves a timer behind.
func (t *Ticker) Run(ctx context.Context, fn func(now time.Time) error) error {
	if err := fn(time.Now()); err != nil {
		return err
	}
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := fn(now); err != nil {
				return err
			}
		}
	}
}
