package platform

import "github.com/1broseidon/splittile/internal/tiling"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect = tiling.Rect

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// WindowEvents receives lifecycle and focus notifications for tiled windows.
type WindowEvents struct {
	Created   func(WindowID)
	Destroyed func(WindowID)
	Focused   func(WindowID)
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	// Canvas returns the usable area of the active monitor.
	Canvas() (Rect, error)
	// Windows lists the windows to tile, in the order they should be seeded.
	Windows() ([]Window, error)
	// ClientIDs lists every managed client, tiled or not.
	ClientIDs() ([]WindowID, error)
	ActiveWindow() (WindowID, error)
	MoveResize(windowID WindowID, bounds Rect) error
	Show(windowID WindowID) error
}
