package store

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tableflip.dev/barswitch/pkg/logging"
)

// EventType describes the nature of a storage change notification.
type EventType int

const (
	// EventKeyChanged indicates the value stored under Key was written or
	// removed.
	EventKeyChanged EventType = iota

	// EventInvalidated signals that the change could not be attributed to a
	// key and callers should refresh everything they show.
	EventInvalidated
)

// Event is emitted by Watch when the synchronized tier changes.
type Event struct {
	Type EventType
	Key  string
}

// ThrottleDelay is how long a burst of writes is coalesced before the
// resulting events go out.
const ThrottleDelay = 100 * time.Millisecond

// Watch streams change events until ctx is cancelled. Callers should drain
// the returned channel; events are dropped rather than blocking the watcher.
// Writes made by this process are reported too.
func (s *Synced) Watch(ctx context.Context) (<-chan Event, error) {
	log := logging.NewLogger("store")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("store: watch %s: %w", s.dir, err)
	}

	last, err := s.Snapshot(ctx)
	if err != nil {
		log.WithError(err).Warn("initial sync snapshot failed")
		last = map[string][]byte{}
	}

	events := make(chan Event, 64)

	var (
		sendMu sync.Mutex
		closed bool
	)

	go func() {
		defer func() {
			sendMu.Lock()
			closed = true
			close(events)
			sendMu.Unlock()
		}()
		defer func() {
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("watcher close")
			}
		}()

		send := func(ev Event) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if closed {
				return
			}
			select {
			case events <- ev:
			default:
				// Consumer is behind; a later event or a refresh catches up.
			}
		}

		throttle := newEventThrottle(ThrottleDelay)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Debug("watcher error")
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(evt.Name) != syncedFile {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				next, err := s.Snapshot(ctx)
				if err != nil {
					throttle.Enqueue(Event{Type: EventInvalidated}, send)
					continue
				}
				for _, key := range changedKeys(last, next) {
					throttle.Enqueue(Event{Type: EventKeyChanged, Key: key}, send)
				}
				last = next
			}
		}
	}()

	return events, nil
}

func changedKeys(before, after map[string][]byte) []string {
	var keys []string
	for k, v := range after {
		if old, ok := before[k]; !ok || !bytes.Equal(old, v) {
			keys = append(keys, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// eventThrottle coalesces rapid change notifications so subscribers refresh
// once per burst of writes instead of on every single one.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	if t.pending[ev.Type] == nil {
		t.pending[ev.Type] = make(map[string]struct{})
	}
	t.pending[ev.Type][ev.Key] = struct{}{}

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	if _, ok := pending[EventInvalidated]; ok {
		send(Event{Type: EventInvalidated})
		return
	}
	for key := range pending[EventKeyChanged] {
		send(Event{Type: EventKeyChanged, Key: key})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
