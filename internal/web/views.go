package web

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
)

// ErrViewNotFound is returned for unknown or expired view IDs.
var ErrViewNotFound = errors.New("view not found")

// view is the server-side state of one open page: a table plus the last
// selection reported through it. Requests against a view hold mu for their
// whole duration, so events are applied one at a time.
type view struct {
	id string

	mu       sync.Mutex
	table    *itemlist.Table
	selected string

	lastUsed atomic.Int64 // unix nanos
}

func (v *view) touch(now time.Time) {
	v.lastUsed.Store(now.UnixNano())
}

func (v *view) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, v.lastUsed.Load()))
}

// viewRegistry holds live views keyed by ID.
type viewRegistry struct {
	mu    sync.RWMutex
	views map[string]*view
	ttl   time.Duration
	max   int
	now   func() time.Time
}

func newViewRegistry(ttl time.Duration, max int) *viewRegistry {
	return &viewRegistry{
		views: make(map[string]*view),
		ttl:   ttl,
		max:   max,
		now:   time.Now,
	}
}

// create registers a new view. build receives the view before it is
// published so the table's selection callback can refer to it. When the
// registry is full the least recently used view is evicted.
func (r *viewRegistry) create(build func(v *view) *itemlist.Table) (*view, int) {
	v := &view{id: uuid.NewString()}
	v.table = build(v)
	v.touch(r.now())

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for r.max > 0 && len(r.views) >= r.max {
		r.evictOldestLocked()
		evicted++
	}
	r.views[v.id] = v
	return v, evicted
}

func (r *viewRegistry) evictOldestLocked() {
	var (
		oldestID string
		oldest   int64
	)
	for id, v := range r.views {
		if used := v.lastUsed.Load(); oldestID == "" || used < oldest {
			oldestID, oldest = id, used
		}
	}
	delete(r.views, oldestID)
}

// get returns a live view and marks it used.
func (r *viewRegistry) get(id string) (*view, error) {
	r.mu.RLock()
	v, ok := r.views[id]
	r.mu.RUnlock()

	now := r.now()
	if !ok || (r.ttl > 0 && v.idleSince(now) > r.ttl) {
		return nil, ErrViewNotFound
	}
	v.touch(now)
	return v, nil
}

// sweep removes views idle longer than the TTL and returns how many it removed.
func (r *viewRegistry) sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, v := range r.views {
		if v.idleSince(now) > r.ttl {
			delete(r.views, id)
			removed++
		}
	}
	return removed
}

func (r *viewRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// run sweeps every interval until ctx is done.
func (r *viewRegistry) run(ctx context.Context, interval time.Duration, onSweep func(removed, live int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := r.sweep()
			if onSweep != nil {
				onSweep(removed, r.len())
			}
		}
	}
}
