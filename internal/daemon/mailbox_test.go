package daemon

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMailbox_LatestWins(t *testing.T) {
	mb := NewMailbox()
	mb.Post(WindowCreated(1))
	mb.Post(WindowCreated(2))
	mb.Post(FocusChanged(2))

	ev, ok := mb.Poll()
	if !ok || ev != FocusChanged(2) {
		t.Fatalf("poll = %+v %v, want focus_changed(2)", ev, ok)
	}
	if _, ok := mb.Poll(); ok {
		t.Fatalf("expected mailbox to be empty after poll")
	}

	posted, replaced := mb.Stats()
	if posted != 3 || replaced != 2 {
		t.Fatalf("stats = %d/%d, want 3/2", posted, replaced)
	}
}

func TestMailbox_NextBlocksUntilPost(t *testing.T) {
	mb := NewMailbox()
	got := make(chan Event, 1)
	go func() {
		ev, err := mb.Next(context.Background())
		if err == nil {
			got <- ev
		}
	}()

	select {
	case ev := <-got:
		t.Fatalf("Next returned early with %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}

	mb.Post(OrientationToggle())
	select {
	case ev := <-got:
		if ev.Kind != EventOrientationToggle {
			t.Fatalf("kind = %v", ev.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Next did not wake up")
	}
}

func TestMailbox_NextReturnsPendingImmediately(t *testing.T) {
	mb := NewMailbox()
	mb.Post(WindowDestroyed(4))
	mb.Post(WindowDestroyed(5))

	ev, err := mb.Next(context.Background())
	if err != nil || ev != WindowDestroyed(5) {
		t.Fatalf("next = %+v %v", ev, err)
	}
}

func TestMailbox_NextHonoursContext(t *testing.T) {
	mb := NewMailbox()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mb.Next(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestEventKind_String(t *testing.T) {
	if EventWindowCreated.String() != "window_created" || EventKind(0).String() != "event(0)" {
		t.Fatalf("unexpected names %q %q", EventWindowCreated, EventKind(0))
	}
}
