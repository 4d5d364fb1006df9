package elapsed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunInvokesImmediatelyThenOnCadence(t *testing.T) {
	ticker := NewTicker(10 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	var calls int
	err := ticker.Run(ctx, func(time.Time) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// one immediate call plus roughly five ticks; generous bounds to keep the
	// test stable on a loaded machine
	assert.GreaterOrEqual(t, calls, 3)
}

func TestRunStopsOnCallbackError(t *testing.T) {
	ticker := NewTicker(time.Millisecond)
	boom := errors.New("boom")

	var calls int
	err := ticker.Run(context.Background(), func(time.Time) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	ticker := NewTicker(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	err := ticker.Run(ctx, func(time.Time) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	// the immediate invocation still happens; only the loop is skipped
	assert.Equal(t, 1, calls)
}

func TestNewTickerDefaultsInterval(t *testing.T) {
	assert.Equal(t, time.Second, NewTicker(0).interval)
	assert.Equal(t, time.Second, NewTicker(-time.Minute).interval)
	assert.Equal(t, 5*time.Second, NewTicker(5*time.Second).interval)
}
