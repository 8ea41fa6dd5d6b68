package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
)

// gateSource blocks every ListItems call until release is closed.
type gateSource struct {
	release chan struct{}
	entered chan struct{}

	inFlight atomic.Int32
	peak     atomic.Int32
	closed   bool
}

func newGateSource() *gateSource {
	return &gateSource{release: make(chan struct{}), entered: make(chan struct{}, 64)}
}

func (g *gateSource) ListItems(ctx context.Context) ([]itemlist.Item, error) {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	g.entered <- struct{}{}

	select {
	case <-g.release:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gateSource) Close() error {
	g.closed = true
	return nil
}

func TestLimited_PassesThrough(t *testing.T) {
	src := &fakeListSource{items: []itemlist.Item{testItem(1, "BUG-1")}}
	l := NewLimited(src, 2, time.Second)

	items, err := l.ListItems(context.Background())

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, LoadStatus{Active: 0, MaxConcurrent: 2}, l.Status())
}

func TestLimited_RejectsWhenFull(t *testing.T) {
	src := newGateSource()
	l := NewLimited(src, 1, 50*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := l.ListItems(context.Background())
		done <- err
	}()
	<-src.entered
	assert.Equal(t, 1, l.Status().Active)

	start := time.Now()
	_, err := l.ListItems(context.Background())
	assert.ErrorIs(t, err, ErrTooManyLoads)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	close(src.release)
	require.NoError(t, <-done)
	assert.Equal(t, 0, l.Status().Active)
}

func TestLimited_CallerCancellationWins(t *testing.T) {
	src := newGateSource()
	l := NewLimited(src, 1, time.Minute)
	go func() { _, _ = l.ListItems(context.Background()) }()
	<-src.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.ListItems(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	close(src.release)
}

func TestLimited_BoundsConcurrency(t *testing.T) {
	src := newGateSource()
	l := NewLimited(src, 3, time.Second)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.ListItems(context.Background())
		}()
	}
	for range 3 {
		<-src.entered
	}
	close(src.release)
	wg.Wait()

	assert.LessOrEqual(t, src.peak.Load(), int32(3))
	assert.Equal(t, 0, l.Status().Active)
}

func TestLimited_WaitForDrain(t *testing.T) {
	src := newGateSource()
	l := NewLimited(src, 2, time.Second)
	go func() { _, _ = l.ListItems(context.Background()) }()
	<-src.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.WaitForDrain(ctx), context.DeadlineExceeded)

	close(src.release)
	assert.NoError(t, l.WaitForDrain(context.Background()))
}

func TestLimited_Close(t *testing.T) {
	src := newGateSource()

	require.NoError(t, NewLimited(src, 0, 0).Close())
	assert.True(t, src.closed)
}

type fakeListSource struct {
	items []itemlist.Item
}

func (f *fakeListSource) ListItems(context.Context) ([]itemlist.Item, error) { return f.items, nil }
func (f *fakeListSource) Close() error                                       { return nil }

func testItem(id int, number string) itemlist.Item {
	return itemlist.NewItem(itemlist.ItemData{
		ID:     id,
		Number: number,
		Status: &itemlist.Named{Name: "Open"},
		Author: &itemlist.Named{Name: "alex"},
	})
}
