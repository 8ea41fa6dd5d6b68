package store

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
)

// ErrTooManyLoads is returned when every load slot stays busy for longer
// than the limiter's wait time.
var ErrTooManyLoads = errors.New("too many concurrent item loads")

// Limited bounds the number of concurrent ListItems calls on a Source.
// Every page load and refresh reads the whole collection, so a burst of
// requests would otherwise open one query per request.
type Limited struct {
	src     Source
	sem     *semaphore.Weighted
	max     int
	maxWait time.Duration
	active  atomic.Int64
}

// LoadStatus is a snapshot of a Limited source.
type LoadStatus struct {
	Active        int `json:"active"`
	MaxConcurrent int `json:"max_concurrent"`
}

// NewLimited wraps src. maxConcurrent and maxWait fall back to 1 and one
// second when not positive.
func NewLimited(src Source, maxConcurrent int, maxWait time.Duration) *Limited {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if maxWait <= 0 {
		maxWait = time.Second
	}
	return &Limited{
		src:     src,
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     maxConcurrent,
		maxWait: maxWait,
	}
}

// ListItems waits for a free slot, then lists items from the wrapped source.
func (l *Limited) ListItems(ctx context.Context) ([]itemlist.Item, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()

	return l.src.ListItems(ctx)
}

func (l *Limited) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		// The caller's own deadline or cancellation wins over ours.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyLoads
	}
	l.active.Add(1)
	return nil
}

func (l *Limited) release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// Close closes the wrapped source.
func (l *Limited) Close() error {
	return l.src.Close()
}

// Status reports the loads in flight.
func (l *Limited) Status() LoadStatus {
	return LoadStatus{Active: int(l.active.Load()), MaxConcurrent: l.max}
}

// WaitForDrain blocks until no load is in flight or ctx is done.
func (l *Limited) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.active.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
