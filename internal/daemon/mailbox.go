package daemon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/splittile/internal/platform"
)

// EventKind identifies what happened.
type EventKind int

const (
	EventWindowCreated EventKind = iota + 1
	EventWindowDestroyed
	EventFocusChanged
	EventOrientationToggle
)

func (k EventKind) String() string {
	switch k {
	case EventWindowCreated:
		return "window_created"
	case EventWindowDestroyed:
		return "window_destroyed"
	case EventFocusChanged:
		return "focus_changed"
	case EventOrientationToggle:
		return "orientation_toggle"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one notification for the orchestrator. Window is unused for
// EventOrientationToggle.
type Event struct {
	Kind   EventKind
	Window platform.WindowID
}

func WindowCreated(id platform.WindowID) Event   { return Event{Kind: EventWindowCreated, Window: id} }
func WindowDestroyed(id platform.WindowID) Event { return Event{Kind: EventWindowDestroyed, Window: id} }
func FocusChanged(id platform.WindowID) Event    { return Event{Kind: EventFocusChanged, Window: id} }
func OrientationToggle() Event                   { return Event{Kind: EventOrientationToggle} }

// EventSource is anything the orchestrator can pull events from.
type EventSource interface {
	Next(ctx context.Context) (Event, error)
}

// Mailbox holds at most one pending event. A Post while an event is still
// pending replaces it; the older event is lost.
type Mailbox struct {
	mu       sync.Mutex
	pending  Event
	has      bool
	notify   chan struct{}
	posted   atomic.Uint64
	replaced atomic.Uint64
}

func NewMailbox() *Mailbox {
	return &Mailbox{notify: make(chan struct{}, 1)}
}

// Post stores ev, overwriting any pending event, and wakes a waiting reader.
// It never blocks and is safe to call from any goroutine.
func (m *Mailbox) Post(ev Event) {
	m.mu.Lock()
	if m.has {
		m.replaced.Add(1)
	}
	m.pending = ev
	m.has = true
	m.mu.Unlock()
	m.posted.Add(1)

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Poll takes the pending event, if any.
func (m *Mailbox) Poll() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.has {
		return Event{}, false
	}
	ev := m.pending
	m.pending = Event{}
	m.has = false
	return ev, true
}

// Next blocks until an event is pending or ctx is done.
func (m *Mailbox) Next(ctx context.Context) (Event, error) {
	for {
		if ev, ok := m.Poll(); ok {
			return ev, nil
		}
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-m.notify:
		}
	}
}

// Stats returns how many events were posted and how many of those were
// overwritten before being read.
func (m *Mailbox) Stats() (posted, replaced uint64) {
	return m.posted.Load(), m.replaced.Load()
}
