package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/domain"
)

type collector struct {
	mu      sync.Mutex
	batches [][]domain.WatchEvent
}

func (c *collector) callback(events []domain.WatchEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, events)
}

func (c *collector) get() [][]domain.WatchEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches
}

func TestDebouncer_SingleEvent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.callback)

		d.Add(domain.WatchEvent{Path: "/p/scripts/main.js", Kind: domain.EventWrite})

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, c.get(), 1)
		assert.Equal(t, []domain.WatchEvent{{Path: "/p/scripts/main.js", Kind: domain.EventWrite}}, c.get()[0])
	})
}

func TestDebouncer_BurstIsCoalesced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.callback)

		d.Add(domain.WatchEvent{Path: "/p/b.js", Kind: domain.EventWrite})
		d.Add(domain.WatchEvent{Path: "/p/a.js", Kind: domain.EventCreate})
		d.Add(domain.WatchEvent{Path: "/p/b.js", Kind: domain.EventWrite})

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, c.get(), 1)
		assert.Equal(t, []domain.WatchEvent{
			{Path: "/p/a.js", Kind: domain.EventCreate},
			{Path: "/p/b.js", Kind: domain.EventWrite},
		}, c.get()[0])
	})
}

func TestDebouncer_LastKindWins(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.callback)

		d.Add(domain.WatchEvent{Path: "/p/static/a.png", Kind: domain.EventCreate})
		d.Add(domain.WatchEvent{Path: "/p/static/a.png", Kind: domain.EventWrite})
		d.Add(domain.WatchEvent{Path: "/p/static/a.png", Kind: domain.EventRemove})

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, c.get(), 1)
		assert.Equal(t, []domain.WatchEvent{{Path: "/p/static/a.png", Kind: domain.EventRemove}}, c.get()[0])
	})
}

func TestDebouncer_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.callback)

		d.Add(domain.WatchEvent{Path: "/p/a.js", Kind: domain.EventWrite})
		time.Sleep(80 * time.Millisecond)
		d.Add(domain.WatchEvent{Path: "/p/b.js", Kind: domain.EventWrite})
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, c.get())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()

		require.Len(t, c.get(), 1)
		assert.Len(t, c.get()[0], 2)
	})
}

func TestDebouncer_SeparateWindows(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.callback)

		d.Add(domain.WatchEvent{Path: "/p/a.js", Kind: domain.EventWrite})
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		d.Add(domain.WatchEvent{Path: "/p/a.js", Kind: domain.EventWrite})
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Len(t, c.get(), 2)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(time.Second, c.callback)

		d.Add(domain.WatchEvent{Path: "/p/a.js", Kind: domain.EventWrite})
		d.Flush()

		require.Len(t, c.get(), 1)

		// The stopped timer does not deliver again.
		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Len(t, c.get(), 1)
	})
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	var c collector
	d := watcher.NewDebouncer(time.Second, c.callback)

	d.Flush()
	assert.Empty(t, c.get())
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add(domain.WatchEvent{Path: "/p/a.js", Kind: domain.EventWrite})

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
	})
}
