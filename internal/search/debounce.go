// Package search serializes autosuggest lookups so that rapid keystrokes
// collapse into a single upstream call and a stale response can never
// overwrite a fresher one: last request wins, not last response.
package search

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned to a caller whose request was replaced by a newer
// one for the same key before it could complete.
var ErrSuperseded = errors.New("search superseded by newer request")

// Debouncer coalesces lookups per key (one key per input box). A submission
// waits out a quiet period; if a newer submission for the same key arrives in
// the meantime, the older one is cancelled, in-flight upstream call included.
type Debouncer[T any] struct {
	quiet time.Duration

	mu     sync.Mutex
	seq    map[string]uint64
	cancel map[string]context.CancelCauseFunc
}

func NewDebouncer[T any](quiet time.Duration) *Debouncer[T] {
	if quiet <= 0 {
		quiet = 300 * time.Millisecond
	}
	return &Debouncer[T]{
		quiet:  quiet,
		seq:    make(map[string]uint64),
		cancel: make(map[string]context.CancelCauseFunc),
	}
}

// Do runs fetch after the quiet period unless superseded. The returned error
// is ErrSuperseded for replaced requests, the caller's context error when the
// caller went away, or whatever fetch returned.
func (d *Debouncer[T]) Do(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	d.mu.Lock()
	d.seq[key]++
	mine := d.seq[key]
	if prev := d.cancel[key]; prev != nil {
		prev(ErrSuperseded)
	}
	cctx, cancel := context.WithCancelCause(ctx)
	d.cancel[key] = cancel
	d.mu.Unlock()

	timer := time.NewTimer(d.quiet)
	defer timer.Stop()

	select {
	case <-cctx.Done():
		return zero, cause(cctx)
	case <-timer.C:
	}

	out, err := fetch(cctx)

	d.mu.Lock()
	latest := d.seq[key] == mine
	if latest {
		delete(d.cancel, key)
	}
	d.mu.Unlock()

	if !latest {
		// a newer request took over while fetch was in flight; its result
		// owns the UI now, this one is discarded
		return zero, ErrSuperseded
	}
	if err != nil {
		if errors.Is(cause(cctx), ErrSuperseded) {
			return zero, ErrSuperseded
		}
		return zero, err
	}
	return out, nil
}

func cause(ctx context.Context) error {
	if c := context.Cause(ctx); c != nil {
		return c
	}
	return ctx.Err()
}
