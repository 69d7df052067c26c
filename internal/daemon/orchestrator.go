package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/1broseidon/splittile/internal/platform"
	"github.com/1broseidon/splittile/internal/tiling"
)

// Sink receives the result of a redraw.
type Sink interface {
	Show(id platform.WindowID) error
	MoveResize(id platform.WindowID, bounds platform.Rect) error
}

// EventCounts tallies handled events by kind.
type EventCounts struct {
	Created   uint64 `json:"created"`
	Destroyed uint64 `json:"destroyed"`
	Focus     uint64 `json:"focus"`
	Toggles   uint64 `json:"toggles"`
	Ignored   uint64 `json:"ignored"`
}

// Status is an immutable view of the orchestrator, published after every
// handled event.
type Status struct {
	Canvas      platform.Rect       `json:"canvas"`
	Orientation tiling.Orientation  `json:"orientation"`
	Focus       *platform.WindowID  `json:"focus,omitempty"`
	Windows     []platform.WindowID `json:"windows"`
	Tree        *tiling.NodeInfo    `json:"tree"`
	Events      EventCounts         `json:"events"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Orchestrator owns the layout tree. Seed, Handle and Run must be called from
// a single goroutine; Status may be called from anywhere.
type Orchestrator struct {
	root        *tiling.Node[platform.WindowID]
	focus       platform.WindowID
	hasFocus    bool
	orientation tiling.Orientation
	counts      EventCounts

	sink   Sink
	logger *slog.Logger
	status atomic.Pointer[Status]
}

// NewOrchestrator returns an orchestrator with an empty tree covering canvas.
func NewOrchestrator(canvas platform.Rect, sink Sink, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		root:        tiling.NewTree[platform.WindowID](canvas),
		orientation: tiling.Horizontal,
		sink:        sink,
		logger:      logger,
	}
	o.publish()
	return o
}

// FormatWindowID renders ids the way xprop and wmctrl print them.
func FormatWindowID(id platform.WindowID) string {
	return fmt.Sprintf("0x%08x", uint32(id))
}

// Seed inserts the initial windows, in order, always at the root and always
// with a horizontal split, then redraws once.
func (o *Orchestrator) Seed(ids []platform.WindowID) {
	for _, id := range ids {
		if o.root.Contains(id) {
			o.logger.Debug("seed skipped duplicate window", "window", FormatWindowID(id))
			continue
		}
		o.root.Insert(tiling.Horizontal, id)
	}
	o.logger.Info("layout seeded", "windows", len(o.root.Leaves()))
	o.redraw()
	o.publish()
}

// Handle applies one event.
func (o *Orchestrator) Handle(ev Event) {
	o.logger.Debug("event", "kind", ev.Kind.String(), "window", FormatWindowID(ev.Window))

	switch ev.Kind {
	case EventWindowCreated:
		if o.root.Contains(ev.Window) {
			o.counts.Ignored++
			o.logger.Debug("window already tiled", "window", FormatWindowID(ev.Window))
			break
		}
		anchor := o.root
		if o.hasFocus {
			if n := o.root.Find(o.focus); n != nil {
				anchor = n
			}
		}
		anchor.Insert(o.orientation, ev.Window)
		o.counts.Created++
		o.logger.Info("window tiled",
			"window", FormatWindowID(ev.Window),
			"orientation", o.orientation.String(),
			"rect", anchor.Rect.String())
		o.redraw()

	case EventWindowDestroyed:
		// The focus cursor is not cleared. A stale cursor misses in Find,
		// so the next insert anchors at the root.
		tracked := o.root.Contains(ev.Window)
		o.root.Remove(ev.Window)
		o.counts.Destroyed++
		if tracked {
			o.logger.Info("window untiled", "window", FormatWindowID(ev.Window))
		}
		o.redraw()

	case EventFocusChanged:
		if !o.root.Contains(ev.Window) {
			o.counts.Ignored++
			break
		}
		o.focus = ev.Window
		o.hasFocus = true
		o.counts.Focus++

	case EventOrientationToggle:
		o.orientation = o.orientation.Toggle()
		o.counts.Toggles++
		o.logger.Info("orientation toggled", "orientation", o.orientation.String())

	default:
		o.counts.Ignored++
		o.logger.Warn("unknown event", "kind", ev.Kind.String())
	}

	o.publish()
}

// Run handles events from src until ctx is done.
func (o *Orchestrator) Run(ctx context.Context, src EventSource) error {
	for {
		ev, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		o.Handle(ev)
	}
}

// Status returns the latest published snapshot.
func (o *Orchestrator) Status() *Status {
	return o.status.Load()
}

// Orientation reports the split used for the next insert.
func (o *Orchestrator) Orientation() tiling.Orientation {
	return o.orientation
}

// Focus returns the focus cursor. It may name a window that is no longer
// tiled.
func (o *Orchestrator) Focus() (platform.WindowID, bool) {
	return o.focus, o.hasFocus
}

// Root exposes the live tree for tests and in-goroutine callers.
func (o *Orchestrator) Root() *tiling.Node[platform.WindowID] {
	return o.root
}

// redraw pushes every leaf's rectangle to the sink. A failing window does not
// stop the others from being placed.
func (o *Orchestrator) redraw() {
	if o.sink == nil {
		return
	}
	o.root.Walk(func(leaf *tiling.Node[platform.WindowID]) {
		id := FormatWindowID(leaf.ID)
		if err := o.sink.Show(leaf.ID); err != nil {
			o.logger.Warn("show failed", "window", id, "error", err)
		}
		if err := o.sink.MoveResize(leaf.ID, leaf.Rect); err != nil {
			o.logger.Warn("move/resize failed", "window", id, "rect", leaf.Rect.String(), "error", err)
		}
	})
}

func (o *Orchestrator) publish() {
	st := &Status{
		Canvas:      o.root.Rect,
		Orientation: o.orientation,
		Windows:     o.root.Leaves(),
		Tree:        tiling.Snapshot(o.root, FormatWindowID),
		Events:      o.counts,
		UpdatedAt:   time.Now(),
	}
	if st.Windows == nil {
		st.Windows = []platform.WindowID{}
	}
	if o.hasFocus {
		focus := o.focus
		st.Focus = &focus
	}
	o.status.Store(st)
}
