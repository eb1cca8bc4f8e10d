package watcher

import (
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

// Debouncer coalesces bursts of filesystem events. Within one window the last
// event kind seen for a path wins.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]domain.EventKind
	timer    *time.Timer
	window   time.Duration
	callback func(events []domain.WatchEvent)
}

// NewDebouncer creates a new debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(events []domain.WatchEvent)) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]domain.EventKind),
		window:   window,
		callback: callback,
	}
}

// Add records an event and restarts the window.
func (d *Debouncer) Add(event domain.WatchEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[event.Path] = event.Kind

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// fire is called when the debounce window expires.
func (d *Debouncer) fire() {
	d.mu.Lock()
	events := d.drainLocked()
	d.timer = nil
	d.mu.Unlock()

	if len(events) > 0 && d.callback != nil {
		go d.callback(events)
	}
}

// Flush immediately delivers all pending events and blocks until the callback returns.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// Timer already fired, let it complete rather than processing twice.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	events := d.drainLocked()
	d.mu.Unlock()

	if len(events) > 0 && d.callback != nil {
		d.callback(events)
	}
}

// drainLocked empties the pending set, ordered by path.
func (d *Debouncer) drainLocked() []domain.WatchEvent {
	if len(d.pending) == 0 {
		return nil
	}
	events := make([]domain.WatchEvent, 0, len(d.pending))
	for path, kind := range d.pending {
		events = append(events, domain.WatchEvent{Path: path, Kind: kind})
	}
	clear(d.pending)
	slices.SortFunc(events, func(a, b domain.WatchEvent) int {
		return strings.Compare(a.Path, b.Path)
	})
	return events
}
