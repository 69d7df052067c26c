package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/1broseidon/splittile/internal/platform"
	"github.com/1broseidon/splittile/internal/tiling"
)

var fullHD = platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

type sinkCall struct {
	Op   string
	ID   platform.WindowID
	Rect platform.Rect
}

type fakeSink struct {
	calls   []sinkCall
	failFor map[platform.WindowID]bool
}

func (s *fakeSink) Show(id platform.WindowID) error {
	s.calls = append(s.calls, sinkCall{Op: "show", ID: id})
	if s.failFor[id] {
		return errors.New("boom")
	}
	return nil
}

func (s *fakeSink) MoveResize(id platform.WindowID, r platform.Rect) error {
	s.calls = append(s.calls, sinkCall{Op: "move", ID: id, Rect: r})
	if s.failFor[id] {
		return errors.New("boom")
	}
	return nil
}

// placements returns the last rect sent for each window.
func (s *fakeSink) placements() map[platform.WindowID]platform.Rect {
	out := make(map[platform.WindowID]platform.Rect)
	for _, c := range s.calls {
		if c.Op == "move" {
			out[c.ID] = c.Rect
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *fakeSink) {
	t.Helper()
	sink := &fakeSink{}
	return NewOrchestrator(fullHD, sink, testLogger()), sink
}

func TestSeed_InsertsAtRootHorizontallyAndRedrawsOnce(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	o.Handle(OrientationToggle()) // seeding ignores the current orientation
	o.Seed([]platform.WindowID{1, 2})

	want := []sinkCall{
		{Op: "show", ID: 1},
		{Op: "move", ID: 1, Rect: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 540}},
		{Op: "show", ID: 2},
		{Op: "move", ID: 2, Rect: platform.Rect{X: 0, Y: 541, Width: 1920, Height: 540}},
	}
	if !reflect.DeepEqual(sink.calls, want) {
		t.Fatalf("calls = %+v\nwant %+v", sink.calls, want)
	}
	if err := o.Root().Validate(); err != nil {
		t.Fatalf("invariant: %v", err)
	}
}

func TestSeed_EmptyEnumerationDoesNothing(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	o.Seed(nil)

	if len(sink.calls) != 0 {
		t.Fatalf("expected no sink calls, got %+v", sink.calls)
	}
	if o.Root().Kind != tiling.KindEmpty {
		t.Fatalf("root = %v, want empty", o.Root().Kind)
	}
}

func TestCreated_AnchorsAtFocusedWindow(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	o.Seed([]platform.WindowID{1, 2})

	o.Handle(FocusChanged(1))
	o.Handle(OrientationToggle())
	sink.calls = nil
	o.Handle(WindowCreated(3))

	got := sink.placements()
	want := map[platform.WindowID]platform.Rect{
		1: {X: 0, Y: 0, Width: 960, Height: 540},
		3: {X: 961, Y: 0, Width: 960, Height: 540},
		2: {X: 0, Y: 541, Width: 1920, Height: 540},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("placements = %v, want %v", got, want)
	}
	// Redraw visits leaves left to right.
	if sink.calls[0].ID != 1 || sink.calls[2].ID != 3 || sink.calls[4].ID != 2 {
		t.Fatalf("unexpected redraw order %+v", sink.calls)
	}
}

func TestCreated_WithoutFocusAnchorsAtRoot(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.Handle(WindowCreated(1))
	o.Handle(OrientationToggle())
	o.Handle(WindowCreated(2))

	root := o.Root()
	if root.Kind != tiling.KindSeparator || root.Orientation != tiling.Vertical {
		t.Fatalf("root = %v %v, want vertical separator", root.Kind, root.Orientation)
	}
	if root.Right.ID != 2 || root.Right.Rect != (platform.Rect{X: 961, Y: 0, Width: 960, Height: 1080}) {
		t.Fatalf("window 2 = %s", root.Right.Rect)
	}
}

func TestCreated_DuplicateIsIgnored(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	o.Handle(WindowCreated(1))
	sink.calls = nil

	o.Handle(WindowCreated(1))

	if len(sink.calls) != 0 {
		t.Fatalf("expected no redraw for duplicate, got %+v", sink.calls)
	}
	if got := o.Root().Leaves(); !reflect.DeepEqual(got, []platform.WindowID{1}) {
		t.Fatalf("leaves = %v", got)
	}
	if o.Status().Events.Ignored != 1 {
		t.Fatalf("expected duplicate to be counted as ignored")
	}
}

func TestFocusChanged_UntrackedIsIgnored(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.Seed([]platform.WindowID{1})

	o.Handle(FocusChanged(99))
	if _, ok := o.Focus(); ok {
		t.Fatalf("focus set for untracked window")
	}

	o.Handle(FocusChanged(1))
	o.Handle(FocusChanged(99))
	if id, ok := o.Focus(); !ok || id != 1 {
		t.Fatalf("focus = %v %v, want 1", id, ok)
	}
}

func TestDestroyed_LeavesStaleFocusAndNextInsertUsesRoot(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	o.Seed([]platform.WindowID{1, 2})
	o.Handle(FocusChanged(2))

	sink.calls = nil
	o.Handle(WindowDestroyed(2))

	if id, ok := o.Focus(); !ok || id != 2 {
		t.Fatalf("focus = %v %v; expected the stale cursor to remain", id, ok)
	}
	if got := sink.placements(); !reflect.DeepEqual(got, map[platform.WindowID]platform.Rect{1: fullHD}) {
		t.Fatalf("placements after destroy = %v", got)
	}

	sink.calls = nil
	o.Handle(WindowCreated(3))
	want := map[platform.WindowID]platform.Rect{
		1: {X: 0, Y: 0, Width: 1920, Height: 540},
		3: {X: 0, Y: 541, Width: 1920, Height: 540},
	}
	if got := sink.placements(); !reflect.DeepEqual(got, want) {
		t.Fatalf("placements = %v, want %v", got, want)
	}
}

func TestDestroyed_SoleWindowStaysTiled(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	o.Seed([]platform.WindowID{1})
	sink.calls = nil

	o.Handle(WindowDestroyed(1))

	if !o.Root().Contains(1) {
		t.Fatalf("sole window removal is expected to be a no-op")
	}
	if len(sink.calls) != 2 {
		t.Fatalf("expected redraw of the remaining leaf, got %+v", sink.calls)
	}
}

func TestOrientationToggle_DoesNotTouchTree(t *testing.T) {
	o, sink := newTestOrchestrator(t)
	o.Seed([]platform.WindowID{1, 2})
	sink.calls = nil
	before := o.Root().Leaves()

	o.Handle(OrientationToggle())
	if o.Orientation() != tiling.Vertical {
		t.Fatalf("orientation = %v", o.Orientation())
	}
	o.Handle(OrientationToggle())
	if o.Orientation() != tiling.Horizontal {
		t.Fatalf("orientation = %v", o.Orientation())
	}

	if len(sink.calls) != 0 {
		t.Fatalf("toggle must not redraw, got %+v", sink.calls)
	}
	if !reflect.DeepEqual(o.Root().Leaves(), before) {
		t.Fatalf("toggle changed the tree")
	}
}

func TestRedraw_SinkErrorDoesNotStopWalk(t *testing.T) {
	sink := &fakeSink{failFor: map[platform.WindowID]bool{1: true}}
	o := NewOrchestrator(fullHD, sink, testLogger())
	o.Seed([]platform.WindowID{1, 2})

	if _, ok := sink.placements()[2]; !ok {
		t.Fatalf("window 2 was not placed after window 1 failed")
	}
}

func TestStatus_PublishedAfterEvents(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	first := o.Status()
	if first == nil || len(first.Windows) != 0 || first.Tree.Kind != "empty" {
		t.Fatalf("unexpected initial status %+v", first)
	}

	o.Handle(WindowCreated(0x2a00003))
	o.Handle(FocusChanged(0x2a00003))

	st := o.Status()
	if st == first {
		t.Fatalf("expected a new snapshot")
	}
	if st.Focus == nil || *st.Focus != 0x2a00003 {
		t.Fatalf("focus = %v", st.Focus)
	}
	if st.Tree.Window != "0x02a00003" {
		t.Fatalf("tree window = %q", st.Tree.Window)
	}
	if st.Events.Created != 1 || st.Events.Focus != 1 {
		t.Fatalf("events = %+v", st.Events)
	}
	if len(first.Windows) != 0 {
		t.Fatalf("earlier snapshot was mutated")
	}
}

func TestRun_HandlesMailboxUntilCancelled(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	mb := NewMailbox()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- o.Run(ctx, mb) }()

	mb.Post(WindowCreated(7))

	deadline := time.Now().Add(2 * time.Second)
	for {
		if st := o.Status(); len(st.Windows) == 1 && st.Windows[0] == 7 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("event was not handled")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop")
	}
}
