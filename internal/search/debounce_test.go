package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRunsFetchAfterQuietPeriod(t *testing.T) {
	d := NewDebouncer[string](10 * time.Millisecond)

	out, err := d.Do(context.Background(), "box", func(context.Context) (string, error) {
		return "result", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "result", out)
}

// Typing "A", "AB", "ABC" in quick succession must produce exactly one
// upstream call, carrying the final query.
func TestRapidSubmissionsCollapseToOne(t *testing.T) {
	d := NewDebouncer[string](80 * time.Millisecond)

	var calls atomic.Int32
	type outcome struct {
		out string
		err error
	}
	results := make(chan outcome, 3)

	var wg sync.WaitGroup
	for _, query := range []string{"A", "AB", "ABC"} {
		query := query
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := d.Do(context.Background(), "box", func(context.Context) (string, error) {
				calls.Add(1)
				return query, nil
			})
			results <- outcome{out: out, err: err}
		}()
		time.Sleep(20 * time.Millisecond)
	}
	wg.Wait()
	close(results)

	var superseded int
	var winner string
	for r := range results {
		if r.err != nil {
			assert.ErrorIs(t, r.err, ErrSuperseded)
			superseded++
			continue
		}
		winner = r.out
	}

	assert.Equal(t, int32(1), calls.Load(), "only the final keystroke reaches upstream")
	assert.Equal(t, 2, superseded)
	assert.Equal(t, "ABC", winner)
}

// A fetch already in flight when a newer request arrives is discarded even if
// it completes: the stale result must never win.
func TestInFlightFetchSuperseded(t *testing.T) {
	d := NewDebouncer[string](5 * time.Millisecond)

	entered := make(chan struct{})
	release := make(chan struct{})

	type outcome struct {
		out string
		err error
	}
	first := make(chan outcome, 1)

	go func() {
		out, err := d.Do(context.Background(), "box", func(context.Context) (string, error) {
			close(entered)
			<-release
			return "stale", nil
		})
		first <- outcome{out: out, err: err}
	}()

	<-entered

	out, err := d.Do(context.Background(), "box", func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", out)

	close(release)
	got := <-first
	assert.ErrorIs(t, got.err, ErrSuperseded)
	assert.Empty(t, got.out)
}

func TestDoHonoursCallerCancellation(t *testing.T) {
	d := NewDebouncer[string](time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := d.Do(ctx, "box", func(context.Context) (string, error) {
			t.Error("fetch must not run after cancellation")
			return "", nil
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	d := NewDebouncer[string](10 * time.Millisecond)

	var wg sync.WaitGroup
	outs := make([]string, 2)
	errs := make([]error, 2)
	for i, key := range []string{"vehicle:tok", "device:tok"} {
		i, key := i, key
		wg.Add(1)
		go func() {
			defer wg.Done()
			outs[i], errs[i] = d.Do(context.Background(), key, func(context.Context) (string, error) {
				return key, nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, "vehicle:tok", outs[0])
	assert.Equal(t, "device:tok", outs[1])
}
