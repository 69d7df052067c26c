package tiling

import (
	"testing"

	"github.com/1broseidon/splittile/internal/config"
)

func TestSplitHorizontal_FullHD(t *testing.T) {
	top, bottom := SplitHorizontal(Rect{X: 0, Y: 0, Width: 1920, Height: 1080})

	wantTop := Rect{X: 0, Y: 0, Width: 1920, Height: 540}
	wantBottom := Rect{X: 0, Y: 541, Width: 1920, Height: 540}
	if top != wantTop {
		t.Fatalf("top = %+v, want %+v", top, wantTop)
	}
	if bottom != wantBottom {
		t.Fatalf("bottom = %+v, want %+v", bottom, wantBottom)
	}
}

func TestSplitVertical_FullHD(t *testing.T) {
	left, right := SplitVertical(Rect{X: 0, Y: 0, Width: 1920, Height: 1080})

	wantLeft := Rect{X: 0, Y: 0, Width: 960, Height: 1080}
	wantRight := Rect{X: 961, Y: 0, Width: 960, Height: 1080}
	if left != wantLeft {
		t.Fatalf("left = %+v, want %+v", left, wantLeft)
	}
	if right != wantRight {
		t.Fatalf("right = %+v, want %+v", right, wantRight)
	}
}

func TestSplitVertical_OddWidthFloors(t *testing.T) {
	left, right := SplitVertical(Rect{X: 10, Y: 20, Width: 101, Height: 50})

	if left != (Rect{X: 10, Y: 20, Width: 50, Height: 50}) {
		t.Fatalf("left = %+v", left)
	}
	if right != (Rect{X: 61, Y: 20, Width: 50, Height: 50}) {
		t.Fatalf("right = %+v", right)
	}
}

func TestSplit_SpansSumWithinSeam(t *testing.T) {
	rects := []Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 5, Y: 7, Width: 1, Height: 1},
		{X: 0, Y: 0, Width: 0, Height: 0},
		{X: -100, Y: 30, Width: 333, Height: 777},
		{X: 2560, Y: 0, Width: 1279, Height: 1439},
	}

	for _, r := range rects {
		left, right := Split(r, Vertical)
		if sum := left.Width + right.Width; sum != r.Width && sum != r.Width-1 {
			t.Errorf("vertical %s: widths sum to %d", r, sum)
		}
		if left.Height != r.Height || right.Height != r.Height {
			t.Errorf("vertical %s: heights %d/%d, want %d", r, left.Height, right.Height, r.Height)
		}
		if right.X != r.X+r.Width/2+1 {
			t.Errorf("vertical %s: right.X = %d", r, right.X)
		}

		top, bottom := Split(r, Horizontal)
		if sum := top.Height + bottom.Height; sum != r.Height && sum != r.Height-1 {
			t.Errorf("horizontal %s: heights sum to %d", r, sum)
		}
		if top.Width != r.Width || bottom.Width != r.Width {
			t.Errorf("horizontal %s: widths %d/%d, want %d", r, top.Width, bottom.Width, r.Width)
		}
		if bottom.Y != r.Y+r.Height/2+1 {
			t.Errorf("horizontal %s: bottom.Y = %d", r, bottom.Y)
		}
	}
}

func TestOrientation_ToggleAndText(t *testing.T) {
	if Horizontal.Toggle() != Vertical || Vertical.Toggle() != Horizontal {
		t.Fatalf("toggle did not flip orientation")
	}

	var o Orientation
	if err := o.UnmarshalText([]byte("vertical")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if o != Vertical {
		t.Fatalf("got %v, want vertical", o)
	}
	if err := o.UnmarshalText([]byte("diagonal")); err == nil {
		t.Fatalf("expected error for unknown orientation")
	}
}

func TestApplyPadding(t *testing.T) {
	canvas := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	got, err := ApplyPadding(canvas, config.Margins{Top: 30, Left: 10, Right: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Rect{X: 10, Y: 30, Width: 1900, Height: 1050}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if _, err := ApplyPadding(canvas, config.Margins{Top: 600, Bottom: 600}); err == nil {
		t.Fatalf("expected error when padding consumes the canvas")
	}
}
