package tiling

import (
	"fmt"

	"github.com/1broseidon/splittile/internal/config"
)

// Rect is an axis-aligned region: horizontal span (X, Width) and vertical
// span (Y, Height), in root window pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Orientation is the axis along which a separator splits its rectangle.
type Orientation int

const (
	// Horizontal stacks the halves top and bottom.
	Horizontal Orientation = iota
	// Vertical places the halves side by side.
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Toggle returns the other orientation.
func (o Orientation) Toggle() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "horizontal":
		*o = Horizontal
	case "vertical":
		*o = Vertical
	default:
		return fmt.Errorf("unknown orientation %q", text)
	}
	return nil
}

// SplitHorizontal divides the vertical span in half. The bottom half starts
// one pixel below the end of the top half, leaving a 1px seam.
func SplitHorizontal(r Rect) (top, bottom Rect) {
	half := r.Height / 2
	top = Rect{X: r.X, Y: r.Y, Width: r.Width, Height: half}
	bottom = Rect{X: r.X, Y: r.Y + half + 1, Width: r.Width, Height: half}
	return top, bottom
}

// SplitVertical divides the horizontal span in half with the same 1px seam.
func SplitVertical(r Rect) (left, right Rect) {
	half := r.Width / 2
	left = Rect{X: r.X, Y: r.Y, Width: half, Height: r.Height}
	right = Rect{X: r.X + half + 1, Y: r.Y, Width: half, Height: r.Height}
	return left, right
}

// Split dispatches to SplitHorizontal or SplitVertical.
func Split(r Rect, o Orientation) (first, second Rect) {
	if o == Vertical {
		return SplitVertical(r)
	}
	return SplitHorizontal(r)
}

// ApplyPadding shrinks the canvas by the configured screen padding.
func ApplyPadding(canvas Rect, padding config.Margins) (Rect, error) {
	adjusted := Rect{
		X:      canvas.X + padding.Left,
		Y:      canvas.Y + padding.Top,
		Width:  canvas.Width - padding.Left - padding.Right,
		Height: canvas.Height - padding.Top - padding.Bottom,
	}
	if adjusted.Width < 1 || adjusted.Height < 1 {
		return Rect{}, fmt.Errorf(
			"screen_padding leaves no usable space: %dx%d at %d,%d",
			adjusted.Width, adjusted.Height, adjusted.X, adjusted.Y,
		)
	}
	return adjusted, nil
}
