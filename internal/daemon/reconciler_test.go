package daemon

import (
	"errors"
	"reflect"
	"testing"

	"github.com/1broseidon/splittile/internal/platform"
)

func ids(v ...platform.WindowID) WindowLister {
	return func() ([]platform.WindowID, error) { return v, nil }
}

func TestReconcile_PostsDestroyForVanishedWindows(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.Seed([]platform.WindowID{1, 2, 3})

	var got []Event
	r := NewReconciler(ReconcilerConfig{Logger: testLogger()}, o.Status,
		ids(2, 9), nil,
		func(ev Event) { got = append(got, ev) })

	posted := r.reconcile()
	want := []Event{WindowDestroyed(1), WindowDestroyed(3)}
	if !reflect.DeepEqual(posted, want) || !reflect.DeepEqual(got, want) {
		t.Fatalf("posted = %+v, got = %+v, want %+v", posted, got, want)
	}
}

func TestReconcile_AdoptsUntiledWindows(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.Seed([]platform.WindowID{1})

	var got []Event
	r := NewReconciler(ReconcilerConfig{Logger: testLogger()}, o.Status,
		ids(1, 4, 5), ids(1, 5),
		func(ev Event) { got = append(got, ev) })

	r.reconcile()
	if want := []Event{WindowCreated(5)}; !reflect.DeepEqual(got, want) {
		t.Fatalf("posted = %+v, want %+v", got, want)
	}
}

func TestReconcile_EmptyTreeStillAdopts(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	var got []Event
	r := NewReconciler(ReconcilerConfig{Logger: testLogger()}, o.Status,
		func() ([]platform.WindowID, error) { t.Fatalf("existence check not needed"); return nil, nil },
		ids(7),
		func(ev Event) { got = append(got, ev) })

	r.reconcile()
	if want := []Event{WindowCreated(7)}; !reflect.DeepEqual(got, want) {
		t.Fatalf("posted = %+v, want %+v", got, want)
	}
}

func TestReconcile_ListErrorPostsNothing(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.Seed([]platform.WindowID{1})

	r := NewReconciler(ReconcilerConfig{Logger: testLogger()}, o.Status,
		func() ([]platform.WindowID, error) { return nil, errors.New("no display") }, nil,
		func(ev Event) { t.Fatalf("unexpected post %+v", ev) })

	if posted := r.reconcile(); len(posted) != 0 {
		t.Fatalf("posted = %v", posted)
	}
}

func TestReconcile_RecoversFromPanic(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.Seed([]platform.WindowID{1})

	r := NewReconciler(ReconcilerConfig{Logger: testLogger()}, o.Status,
		func() ([]platform.WindowID, error) { panic("lister exploded") }, nil,
		func(Event) {})

	r.ReconcileNow()
}

func TestReconcile_VanishedSoleWindowIsNotReposted(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.Seed([]platform.WindowID{1})
	o.Handle(WindowDestroyed(1))

	r := NewReconciler(ReconcilerConfig{Logger: testLogger()}, o.Status,
		ids(), nil,
		func(ev Event) { t.Fatalf("unexpected post %+v", ev) })

	for pass := 0; pass < 3; pass++ {
		if posted := r.reconcile(); len(posted) != 0 {
			t.Fatalf("pass %d posted %v", pass, posted)
		}
	}
}
