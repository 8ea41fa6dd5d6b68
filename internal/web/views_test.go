package web

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTable(*view) *itemlist.Table {
	return itemlist.NewTable(itemlist.Columns(time.UTC), nil)
}

func TestViewRegistry_CreateAndGet(t *testing.T) {
	r := newViewRegistry(time.Minute, 10)

	v, evicted := r.create(newTable)
	require.NotNil(t, v.table)
	assert.Zero(t, evicted)

	got, err := r.get(v.id)
	require.NoError(t, err)
	assert.Same(t, v, got)

	_, err = r.get("missing")
	assert.ErrorIs(t, err, ErrViewNotFound)
}

func TestViewRegistry_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := newViewRegistry(time.Minute, 10)
	r.now = clock.now

	idle, _ := r.create(newTable)
	active, _ := r.create(newTable)

	clock.advance(40 * time.Second)
	_, err := r.get(active.id)
	require.NoError(t, err)

	clock.advance(40 * time.Second)
	_, err = r.get(idle.id)
	assert.ErrorIs(t, err, ErrViewNotFound, "idle view expired before the sweep")

	assert.Equal(t, 1, r.sweep())
	assert.Equal(t, 1, r.len())
	_, err = r.get(active.id)
	assert.NoError(t, err)
}

func TestViewRegistry_EvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := newViewRegistry(time.Hour, 2)
	r.now = clock.now

	first, _ := r.create(newTable)
	clock.advance(time.Second)
	second, _ := r.create(newTable)
	clock.advance(time.Second)
	_, err := r.get(first.id)
	require.NoError(t, err)
	clock.advance(time.Second)

	third, evicted := r.create(newTable)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 2, r.len())
	_, err = r.get(second.id)
	assert.ErrorIs(t, err, ErrViewNotFound)
	_, err = r.get(first.id)
	assert.NoError(t, err)
	_, err = r.get(third.id)
	assert.NoError(t, err)
}

func TestViewRegistry_RunStopsOnCancel(t *testing.T) {
	r := newViewRegistry(time.Nanosecond, 10)
	r.create(newTable)

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 16)
	done := make(chan struct{})
	go func() {
		r.run(ctx, time.Millisecond, func(removed, live int) {
			select {
			case swept <- removed:
			default:
			}
		})
		close(done)
	}()

	select {
	case n := <-swept:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("janitor did not sweep")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(2, time.Minute)
	rl.now = clock.now

	assert.True(t, rl.allow("a"))
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"), "limits are per client")

	clock.advance(31 * time.Second)
	assert.True(t, rl.allow("a"), "one token refills every 30s")
	assert.False(t, rl.allow("a"))

	clock.advance(3 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.clients)
}
